package bus

import "time"

// Event kinds published by the client.
const (
	KindMessagesReplaced = "messages.replaced"
	KindMessagesAnnotate = "messages.annotated"
	KindGroupsRefreshed  = "groups.refreshed"
	KindStatusChanged    = "session.status_changed"
	KindSignedIn         = "auth.signed_in"
	KindSignedOut        = "auth.signed_out"
)

// Event is a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// GroupPayload identifies the group an event is about.
type GroupPayload struct {
	GroupID string
	Count   int
}

// DirectoryPayload describes a completed directory refresh.
type DirectoryPayload struct {
	Groups  int
	Offline bool
	Failed  []string
}
