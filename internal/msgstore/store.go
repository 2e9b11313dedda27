// Package msgstore holds the per-group message cache and reconciles fetched
// histories into it.
package msgstore

import (
	"slices"
	"sync"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/bus"
)

// Ticket orders the fetches of one group. A response is applied only if its
// ticket is newer than the last one applied for that group. Sequence
// numbers come from one store-wide counter so they stay monotonic per group
// even after the group's cache was dropped by Retain.
type Ticket struct {
	GroupID string
	Seq     uint64
}

type entry struct {
	messages []backend.Message
	applied  uint64
}

// Store maps group id to that group's message list. Every write touches a
// single key under the lock, so concurrent fetches for different groups
// never overwrite each other.
type Store struct {
	mu     sync.RWMutex
	groups map[string]*entry
	seq    uint64
	bus    *bus.Bus
}

// New creates an empty store. b may be nil.
func New(b *bus.Bus) *Store {
	return &Store{
		groups: make(map[string]*entry),
		bus:    b,
	}
}

func (s *Store) entryLocked(groupID string) *entry {
	e, ok := s.groups[groupID]
	if !ok {
		e = &entry{}
		s.groups[groupID] = e
	}
	return e
}

// Begin issues the next ticket for a fetch of groupID. Call it before the
// request goes out.
func (s *Store) Begin(groupID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Ticket{GroupID: groupID, Seq: s.seq}
}

// Apply replaces the group's list with msgs unless a response with a newer
// ticket was already applied. It reports whether msgs were stored.
func (s *Store) Apply(t Ticket, msgs []backend.Message) bool {
	s.mu.Lock()
	e := s.entryLocked(t.GroupID)
	if t.Seq <= e.applied {
		s.mu.Unlock()
		return false
	}
	e.applied = t.Seq
	e.messages = slices.Clone(msgs)
	if e.messages == nil {
		e.messages = []backend.Message{}
	}
	n := len(e.messages)
	s.mu.Unlock()

	s.bus.Emit(bus.KindMessagesReplaced, bus.GroupPayload{GroupID: t.GroupID, Count: n})
	return true
}

// Replace stores msgs as the current list of groupID.
func (s *Store) Replace(groupID string, msgs []backend.Message) {
	s.Apply(s.Begin(groupID), msgs)
}

// Messages returns a copy of the group's list. Unknown groups yield an
// empty list.
func (s *Store) Messages(groupID string) []backend.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.groups[groupID]
	if !ok || len(e.messages) == 0 {
		return []backend.Message{}
	}
	return slices.Clone(e.messages)
}

// LastText returns the text of the newest message in the group.
func (s *Store) LastText(groupID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.groups[groupID]
	if !ok || len(e.messages) == 0 {
		return ""
	}
	return e.messages[len(e.messages)-1].Text
}

// AnnotateLastOutgoing marks the newest message of the group as a
// scheduled, running send carrying summary. It does nothing when the group
// has no messages.
func (s *Store) AnnotateLastOutgoing(groupID, summary string) {
	s.mu.Lock()
	e, ok := s.groups[groupID]
	if !ok || len(e.messages) == 0 {
		s.mu.Unlock()
		return
	}
	last := &e.messages[len(e.messages)-1]
	last.IsScheduled = true
	last.Paused = false
	last.ScheduleSummary = summary
	s.mu.Unlock()

	s.bus.Emit(bus.KindMessagesAnnotate, bus.GroupPayload{GroupID: groupID, Count: 1})
}

// Owner returns the group holding the message with the given id.
func (s *Store) Owner(messageID string) (string, bool) {
	if messageID == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for groupID, e := range s.groups {
		for _, m := range e.messages {
			if m.ID == messageID {
				return groupID, true
			}
		}
	}
	return "", false
}

// Retain drops the cache of every group not listed in keep.
func (s *Store) Retain(keep []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for groupID := range s.groups {
		if !slices.Contains(keep, groupID) {
			delete(s.groups, groupID)
		}
	}
}

// Groups returns the ids with a cached list, in no particular order.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	return ids
}
