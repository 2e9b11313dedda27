package tui

import "strings"

const (
	cmdGroup   = "group"
	cmdGroups  = "groups"
	cmdHelp    = "help"
	cmdInfo    = "info"
	cmdLogout  = "logout"
	cmdNew     = "new"
	cmdQuit    = "quit"
	cmdRefresh = "refresh"
)

// Commands lists the ":" commands offered for completion.
var Commands = []string{cmdGroup, cmdGroups, cmdHelp, cmdInfo, cmdLogout, cmdNew, cmdQuit, cmdRefresh}

var aliases = map[string]string{
	"g": cmdGroup,
	"h": cmdHelp,
	"q": cmdQuit,
	"r": cmdRefresh,
}

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
// Aliases are expanded to the full command name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if full, ok := aliases[cmd.Name]; ok {
		cmd.Name = full
	}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}
