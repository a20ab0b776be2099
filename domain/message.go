// Package domain contains core concepts of the messaging system.
// Messages are immutable once committed and validated by the domain.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTextLength caps the payload size, counted in code points.
const MaxTextLength = 1000

type Kind string

const (
	KindDirect Kind = "direct"
	KindGroup  Kind = "group"
)

// Message represents one delivered text, direct or group.
// ID and CreatedAt are assigned by the store at commit time and are
// never trusted from the caller.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	From      string    `json:"from"`
	To        string    `json:"to,omitempty"`
	GroupID   string    `json:"groupId,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDirect builds an uncommitted direct message candidate.
func NewDirect(from, to, text string) Message {
	return Message{Kind: KindDirect, From: from, To: to, Text: text}
}

// NewGroup builds an uncommitted group message candidate.
func NewGroup(groupID, from, text string) Message {
	return Message{Kind: KindGroup, From: from, GroupID: groupID, Text: text}
}

// Conversation returns the storage identity this message belongs to.
func (m Message) Conversation() Conversation {
	if m.Kind == KindGroup {
		return GroupConversation{GroupID: m.GroupID}
	}
	return DirectConversation{U1: m.From, U2: m.To}
}

// Validate enforces the kind/target invariant and the payload bounds.
// Exactly one of To/GroupID must be set, matching Kind.
func (m Message) Validate() bool {
	switch m.Kind {
	case KindDirect:
		if m.From == "" || m.To == "" || m.GroupID != "" {
			return false
		}
	case KindGroup:
		if m.From == "" || m.GroupID == "" || m.To != "" {
			return false
		}
	default:
		return false
	}
	if strings.TrimSpace(m.Text) == "" {
		return false
	}
	return utf8.RuneCountInString(m.Text) <= MaxTextLength
}
