package directory

import "github.com/matheus3301/tsched/internal/backend"

// PlaceholderID identifies the built-in offline group.
const PlaceholderID = "telebot-support"

// Placeholder is the group shown when the backend cannot list groups.
func Placeholder() Group {
	return Group{
		ID:          PlaceholderID,
		Name:        "Telebot Support",
		LastMessage: "Welcome to Telebot! How can we help?",
		Time:        "09:00",
		Placeholder: true,
	}
}

// PlaceholderMessages is the canned history of the placeholder group.
func PlaceholderMessages() []backend.Message {
	return []backend.Message{
		{ID: PlaceholderID + "-1", Text: "Welcome to Telebot! How can we help?", Time: "09:00"},
		{ID: PlaceholderID + "-2", Text: "Hi, just testing!", Time: "09:01", Sent: true},
	}
}
