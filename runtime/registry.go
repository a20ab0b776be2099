// Package runtime hosts the delivery engine: the subscription registry,
// the fan-out logic and the supervised background workers.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"sync"

	"sms-relay/contract"
)

type sessionSet map[contract.Session]struct{}

// Registry maps topics (user or group identities) to the live sessions
// currently interested in them. Fan-out reads are topic-keyed and far more
// frequent than mutation, hence per-topic sets guarded by one RWMutex.
//
// A reverse index per session makes disconnect cleanup total: dropping a
// connection removes it from every topic in one critical section, so no
// dangling handles survive.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]sessionSet
	conns  map[contract.Session]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		topics: make(map[string]sessionSet),
		conns:  make(map[contract.Session]map[string]struct{}),
	}
}

// Subscribe registers a session's interest in a topic.
// Subscribing the same session twice is a no-op.
func (r *Registry) Subscribe(topic string, s contract.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topics[topic]
	if !ok {
		set = make(sessionSet)
		r.topics[topic] = set
	}
	set[s] = struct{}{}

	joined, ok := r.conns[s]
	if !ok {
		joined = make(map[string]struct{})
		r.conns[s] = joined
	}
	joined[topic] = struct{}{}
}

// Unsubscribe removes a session from a topic.
// Removing an absent session is a no-op, not an error.
func (r *Registry) Unsubscribe(topic string, s contract.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(topic, s)
}

// DropConnection removes a session from every topic it joined.
// Called once on disconnect; cleanup is total.
func (r *Registry) DropConnection(s contract.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topic := range r.conns[s] {
		if set, ok := r.topics[topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(r.topics, topic)
			}
		}
	}
	delete(r.conns, s)
}

// DropTopic forgets a topic entirely, detaching every subscriber.
// Used when a group is deleted so no stale group traffic is delivered.
func (r *Registry) DropTopic(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for s := range r.topics[topic] {
		if joined, ok := r.conns[s]; ok {
			delete(joined, topic)
			if len(joined) == 0 {
				delete(r.conns, s)
			}
		}
	}
	delete(r.topics, topic)
}

// SubscribersOf returns a snapshot of the sessions subscribed to a topic.
// Delivery is best-effort against the snapshot; callers must tolerate
// concurrent joins and leaves after it is taken.
func (r *Registry) SubscribersOf(topic string) []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.topics[topic]
	if !ok {
		return nil
	}
	sessions := make([]contract.Session, 0, len(set))
	for s := range set {
		sessions = append(sessions, s)
	}
	return sessions
}

func (r *Registry) removeLocked(topic string, s contract.Session) {
	if set, ok := r.topics[topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(r.topics, topic)
		}
	}
	if joined, ok := r.conns[s]; ok {
		delete(joined, topic)
		if len(joined) == 0 {
			delete(r.conns, s)
		}
	}
}
