package domain

import "strings"

// Conversation is the derived identity a message is stored and looked up under.
// Direct conversations are keyed by the unordered user pair, so history for
// (u1, u2) and (u2, u1) resolves to the same key.
type Conversation interface {
	Kind() Kind
	Key() string
}

// keyEscaper makes identities safe inside storage keys. The key grammar
// reserves ':' (segment separator) and '|' (pair separator); escaping keeps
// the identity-to-key mapping injective, so an identity like "b|c" can never
// collide with the pair ("b", "c") and "bob:x" never bleeds into bob's log.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A", "|", "%7C")

type DirectConversation struct {
	U1, U2 string
}

func (c DirectConversation) Kind() Kind { return KindDirect }

func (c DirectConversation) Key() string {
	lo, hi := c.U1, c.U2
	if lo > hi {
		lo, hi = hi, lo
	}
	return "dm:" + keyEscaper.Replace(lo) + "|" + keyEscaper.Replace(hi)
}

type GroupConversation struct {
	GroupID string
}

func (c GroupConversation) Kind() Kind  { return KindGroup }
func (c GroupConversation) Key() string { return "gm:" + keyEscaper.Replace(c.GroupID) }
