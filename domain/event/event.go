// Package event defines the events pushed to live connections.
package event

import (
	"time"

	"sms-relay/domain"
)

// DomainEvent is anything the fan-out can hand to a session sink.
// Topic names the logical channel the event was delivered under: a user
// identity for direct traffic, a group identity for group traffic.
type DomainEvent interface {
	Topic() string
}

// MessageCommitted carries a durably persisted message to a live subscriber.
type MessageCommitted struct {
	DeliveryTopic string
	Message       domain.Message
}

func (e MessageCommitted) Topic() string { return e.DeliveryTopic }

// Typing is an ephemeral signal. It is never persisted and may be lost.
type Typing struct {
	DeliveryTopic string
	From          string
	GroupID       string
	IsTyping      bool
	At            time.Time
}

func (e Typing) Topic() string { return e.DeliveryTopic }
