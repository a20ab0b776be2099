package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"sms-relay/contract"
	"sms-relay/domain"
	"sms-relay/domain/event"
	"sms-relay/errors"
	"sms-relay/repositories"
)

// Receipt is what a successful submission returns: the durably committed
// message plus the sessions the live push actually reached. A submission
// with zero live subscribers is still a success.
type Receipt struct {
	Message     domain.Message
	DeliveredTo []string
}

// Engine is the single entry point the transport layer depends on.
// Submissions persist first, then fan out to the current subscriber
// snapshot; push failures are counted, never surfaced to the sender.
type Engine struct {
	log        *slog.Logger
	store      repositories.IMessageStore
	groups     repositories.IGroupRepository
	registry   contract.IRegistry
	pushBudget time.Duration

	delivered atomic.Uint64
	dropped   atomic.Uint64
	signals   atomic.Uint64
}

func NewEngine(log *slog.Logger, store repositories.IMessageStore,
	groups repositories.IGroupRepository, registry contract.IRegistry,
	pushBudget time.Duration) *Engine {
	return &Engine{
		log:        log,
		store:      store,
		groups:     groups,
		registry:   registry,
		pushBudget: pushBudget,
	}
}

// SubmitDirect persists a direct message and pushes it to every live session
// of the recipient and of the sender. The sender echo keeps all of the
// sender's devices in sync.
func (e *Engine) SubmitDirect(ctx context.Context, from, to, text string) (Receipt, error) {
	if err := validateSubmission(text, from, to); err != nil {
		return Receipt{}, err
	}

	committed, err := e.store.Append(domain.NewDirect(from, to, text))
	if err != nil {
		return Receipt{}, err
	}

	targets := e.targetsFor(to, from)
	delivered := e.push(ctx, targets, committed)
	return Receipt{Message: committed, DeliveredTo: delivered}, nil
}

// SubmitGroup persists a group message and pushes it to the sessions
// subscribed to the group topic. Membership gates the submission, not the
// delivery: a member whose session never joined the topic catches up
// through history on its next join.
func (e *Engine) SubmitGroup(ctx context.Context, groupID, from, text string) (Receipt, error) {
	if err := validateSubmission(text, from, groupID); err != nil {
		return Receipt{}, err
	}
	if _, err := e.groups.MembersOf(groupID); err != nil {
		return Receipt{}, err
	}

	committed, err := e.store.Append(domain.NewGroup(groupID, from, text))
	if err != nil {
		return Receipt{}, err
	}

	targets := e.targetsFor(groupID)
	delivered := e.push(ctx, targets, committed)
	return Receipt{Message: committed, DeliveredTo: delivered}, nil
}

// History is a pure read over the store. Sessions call it right after a join,
// bounded by the join cursor, to reconcile the backlog without duplicating
// anything the live push will deliver.
func (e *Engine) History(conv domain.Conversation, window domain.Window) ([]domain.Message, error) {
	switch c := conv.(type) {
	case domain.DirectConversation:
		return e.store.ListDirect(c.U1, c.U2, window)
	case domain.GroupConversation:
		return e.store.ListGroup(c.GroupID, window)
	default:
		return nil, fmt.Errorf("%w: unknown conversation", errors.ErrInvalidArgument)
	}
}

// Join subscribes the session to a topic and returns the backlog cursor.
// The subscription is made visible before the cursor is snapshotted, so a
// commit racing the join is either covered by the cursor (and read as
// history) or delivered live past it — never lost, never doubled. Messages
// at or before the cursor belong to history; everything after it arrives live.
func (e *Engine) Join(topic string, s contract.Session) time.Time {
	e.registry.Subscribe(topic, s)
	return e.store.HighWaterMark()
}

func (e *Engine) Leave(topic string, s contract.Session) {
	e.registry.Unsubscribe(topic, s)
}

// OnDisconnect removes the session from every topic it joined. An in-flight
// push to the dropped session is simply lost.
func (e *Engine) OnDisconnect(s contract.Session) {
	e.registry.DropConnection(s)
}

// CloseTopic detaches every live subscriber from a topic. The group write
// path calls it on deletion so no session keeps receiving traffic for a
// group that no longer exists.
func (e *Engine) CloseTopic(topic string) {
	e.registry.DropTopic(topic)
}

// SyncMembership propagates a membership change into live subscription
// state: every connected session of the affected user starts or stops
// receiving the group's traffic without reconnecting.
func (e *Engine) SyncMembership(groupID, identity string, joined bool) {
	for _, s := range e.registry.SubscribersOf(identity) {
		if joined {
			e.registry.Subscribe(groupID, s)
		} else {
			e.registry.Unsubscribe(groupID, s)
		}
	}
}

// Signal forwards an ephemeral event (typing indicator) to the current
// subscriber snapshot. Fire-and-forget: no persistence, no retry, losses
// are silent.
func (e *Engine) Signal(ctx context.Context, evt event.DomainEvent) {
	for _, s := range e.registry.SubscribersOf(evt.Topic()) {
		if err := s.Consume(ctx, evt); err == nil {
			e.signals.Add(1)
		}
	}
}

// Stats returns the running delivery counters: live pushes that landed,
// pushes lost to slow or gone sessions, and ephemeral signals forwarded.
func (e *Engine) Stats() (delivered, dropped, signals uint64) {
	return e.delivered.Load(), e.dropped.Load(), e.signals.Load()
}

// targetsFor unions the subscriber snapshots of the given topics, keeping
// the first topic a session was found under. A session subscribed to both
// sides of a conversation still receives the message once.
func (e *Engine) targetsFor(topics ...string) map[contract.Session]string {
	targets := make(map[contract.Session]string)
	for _, topic := range topics {
		for _, s := range e.registry.SubscribersOf(topic) {
			if _, seen := targets[s]; !seen {
				targets[s] = topic
			}
		}
	}
	return targets
}

// push fans the committed message out to each target in its own goroutine,
// bounded by the push budget. One stalled session delays nobody else; the
// join is only for the observability of the returned set.
func (e *Engine) push(ctx context.Context, targets map[contract.Session]string, m domain.Message) []string {
	if len(targets) == 0 {
		return nil
	}

	var (
		mu        sync.Mutex
		delivered []string
		wg        sync.WaitGroup
	)
	for s, topic := range targets {
		wg.Add(1)
		go func(s contract.Session, topic string) {
			defer wg.Done()

			pushCtx, cancel := context.WithTimeout(ctx, e.pushBudget)
			defer cancel()

			evt := event.MessageCommitted{DeliveryTopic: topic, Message: m}
			if err := s.Consume(pushCtx, evt); err != nil {
				e.dropped.Add(1)
				e.log.Warn("live push lost",
					"session_id", s.SessionID(),
					"topic", topic,
					"message_id", m.ID,
					"error", err)
				return
			}
			e.delivered.Add(1)
			mu.Lock()
			delivered = append(delivered, s.SessionID())
			mu.Unlock()
		}(s, topic)
	}
	wg.Wait()
	return delivered
}

func validateSubmission(text string, identities ...string) error {
	for _, id := range identities {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: sender and target required", errors.ErrInvalidArgument)
		}
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text required", errors.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(text) > domain.MaxTextLength {
		return fmt.Errorf("%w: text exceeds %d code points", errors.ErrInvalidArgument, domain.MaxTextLength)
	}
	return nil
}
