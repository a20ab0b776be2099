package runtime

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"sms-relay/domain"
	"sms-relay/domain/event"
	"sms-relay/errors"
	"sms-relay/repositories"
	"sms-relay/sink"
)

// recordingSession captures every event pushed to it.
type recordingSession struct {
	*fakeSession
	mu     sync.Mutex
	events []event.DomainEvent
}

func newRecordingSession(identity string) *recordingSession {
	return &recordingSession{fakeSession: newFakeSession(identity)}
}

func (s *recordingSession) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSession) received() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func newTestEngine(t *testing.T) (*Engine, *repositories.GroupRepository) {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	store := repositories.NewMessageStore(db, slog.Default())
	groups := repositories.NewGroupRepository(db)
	engine := NewEngine(slog.Default(), store, groups, NewRegistry(), time.Second)
	return engine, groups
}

func TestEngine_SubmitDirect_No_Live_Subscribers(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	// When alice messages bob while nobody is connected
	receipt, err := engine.SubmitDirect(context.Background(), "alice", "bob", "hi")

	// Then the message is committed with assigned id and time
	req.NoError(err)
	req.NotEqual(uuid.Nil, receipt.Message.ID)
	req.False(receipt.Message.CreatedAt.IsZero())
	req.Empty(receipt.DeliveredTo)

	// And history is symmetric in its arguments
	forward, err := engine.History(domain.DirectConversation{U1: "alice", U2: "bob"}, domain.Window{})
	req.NoError(err)
	backward, err := engine.History(domain.DirectConversation{U1: "bob", U2: "alice"}, domain.Window{})
	req.NoError(err)
	req.Len(forward, 1)
	req.Equal(forward, backward)
	req.Equal("hi", forward[0].Text)
}

func TestEngine_SubmitDirect_Pushes_To_Recipient_And_Sender_Echo(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	bobPhone := newRecordingSession("bob")
	aliceLaptop := newRecordingSession("alice")
	engine.Join("bob", bobPhone)
	engine.Join("alice", aliceLaptop)

	receipt, err := engine.SubmitDirect(context.Background(), "alice", "bob", "hi")
	req.NoError(err)
	req.ElementsMatch([]string{bobPhone.SessionID(), aliceLaptop.SessionID()}, receipt.DeliveredTo)

	// The recipient sees the message under its own topic
	req.Len(bobPhone.received(), 1)
	committed := bobPhone.received()[0].(event.MessageCommitted)
	req.Equal("bob", committed.DeliveryTopic)

	// The sender's other device receives the echo
	req.Len(aliceLaptop.received(), 1)
	echo := aliceLaptop.received()[0].(event.MessageCommitted)
	req.Equal("alice", echo.DeliveryTopic)
	req.Equal(committed.Message.ID, echo.Message.ID)
}

func TestEngine_SubmitDirect_Invalid_Argument_Has_No_Side_Effect(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	cases := []struct{ from, to, text string }{
		{"", "bob", "hi"},
		{"alice", "", "hi"},
		{"alice", "bob", ""},
		{"alice", "bob", "   "},
	}
	for _, c := range cases {
		_, err := engine.SubmitDirect(context.Background(), c.from, c.to, c.text)
		req.ErrorIs(err, errors.ErrInvalidArgument)
	}

	messages, err := engine.History(domain.DirectConversation{U1: "alice", U2: "bob"}, domain.Window{})
	req.NoError(err)
	req.Empty(messages)
}

func TestEngine_SubmitGroup_Unknown_Group_Rejected_Before_Persistence(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	_, err := engine.SubmitGroup(context.Background(), "nope", "alice", "hello")
	req.ErrorIs(err, errors.ErrGroupNotFound)

	messages, err := engine.History(domain.GroupConversation{GroupID: "nope"}, domain.Window{})
	req.NoError(err)
	req.Empty(messages)
}

func TestEngine_SubmitGroup_Targets_Topic_Subscribers_Not_Members(t *testing.T) {
	req := require.New(t)
	engine, groups := newTestEngine(t)

	// Given group g1 with members alice and bob
	group, err := groups.Create("g1", "alice", []string{"alice", "bob"})
	req.NoError(err)

	// And only alice's session has joined the group topic
	aliceSession := newRecordingSession("alice")
	bobSession := newRecordingSession("bob")
	engine.Join(group.ID, aliceSession)
	engine.Join("bob", bobSession) // bob is online, but never joined the topic

	// When bob posts to the group
	receipt, err := engine.SubmitGroup(context.Background(), group.ID, "bob", "hello")
	req.NoError(err)

	// Then alice's session receives the push
	req.Equal([]string{aliceSession.SessionID()}, receipt.DeliveredTo)
	req.Len(aliceSession.received(), 1)

	// And bob's own session does not, member or not: history covers his next join
	req.Empty(bobSession.received())
}

func TestEngine_Concurrent_Direct_Submissions_Keep_Store_Order(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	const racers = 20
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitDirect(context.Background(), "alice", "bob", "racing")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	messages, err := engine.History(domain.DirectConversation{U1: "alice", U2: "bob"}, domain.Window{})
	req.NoError(err)
	req.Len(messages, racers)

	// Store-assigned order is authoritative and strictly ascending
	for i := 1; i < len(messages); i++ {
		req.True(messages[i].CreatedAt.After(messages[i-1].CreatedAt))
	}
}

func TestEngine_Join_History_Live_Delivers_Exactly_Once(t *testing.T) {
	req := require.New(t)
	engine, groups := newTestEngine(t)

	group, err := groups.Create("g1", "alice", []string{"alice", "bob"})
	req.NoError(err)

	// Given one message already in the backlog
	_, err = engine.SubmitGroup(context.Background(), group.ID, "alice", "before join")
	req.NoError(err)

	// When a session joins, reads history up to the cursor, then a new
	// message is submitted
	session := sink.NewSessionSink(slog.Default(), "bob", 16)
	session.BeginJoin(group.ID)
	cursor := engine.Join(group.ID, session)

	backlog, err := engine.History(domain.GroupConversation{GroupID: group.ID}, domain.Window{Until: &cursor})
	req.NoError(err)
	req.Len(backlog, 1)
	req.Equal("before join", backlog[0].Text)

	session.CompleteJoin(group.ID, cursor)

	_, err = engine.SubmitGroup(context.Background(), group.ID, "alice", "after join")
	req.NoError(err)

	// Then the new message arrives live, exactly once, and the backlog
	// message never repeats through the live channel
	select {
	case evt := <-session.Events:
		committed := evt.(event.MessageCommitted)
		req.Equal("after join", committed.Message.Text)
	case <-time.After(time.Second):
		req.Fail("expected a live push")
	}
	select {
	case evt := <-session.Events:
		req.Failf("unexpected extra event", "%+v", evt)
	default:
	}
}

func TestEngine_OnDisconnect_Stops_All_Delivery(t *testing.T) {
	req := require.New(t)
	engine, groups := newTestEngine(t)

	group, err := groups.Create("g1", "alice", []string{"alice"})
	req.NoError(err)

	session := newRecordingSession("alice")
	engine.Join("alice", session)
	engine.Join(group.ID, session)

	engine.OnDisconnect(session)

	_, err = engine.SubmitDirect(context.Background(), "bob", "alice", "anyone there?")
	req.NoError(err)
	_, err = engine.SubmitGroup(context.Background(), group.ID, "alice", "ping")
	req.NoError(err)

	req.Empty(session.received())
}

func TestEngine_Signal_Is_Ephemeral(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	bobSession := newRecordingSession("bob")
	engine.Join("bob", bobSession)

	engine.Signal(context.Background(), event.Typing{
		DeliveryTopic: "bob",
		From:          "alice",
		IsTyping:      true,
		At:            time.Now().UTC(),
	})

	// The signal reaches the live snapshot
	req.Len(bobSession.received(), 1)
	typing := bobSession.received()[0].(event.Typing)
	req.Equal("alice", typing.From)

	// But nothing was persisted anywhere near the pair
	messages, err := engine.History(domain.DirectConversation{U1: "alice", U2: "bob"}, domain.Window{})
	req.NoError(err)
	req.Empty(messages)
}

func TestEngine_SyncMembership_Attaches_And_Detaches_Live_Sessions(t *testing.T) {
	req := require.New(t)
	engine, groups := newTestEngine(t)

	group, err := groups.Create("g1", "alice", []string{"alice"})
	req.NoError(err)

	// Given bob is connected but not a subscriber of the group topic
	bobSession := newRecordingSession("bob")
	engine.Join("bob", bobSession)

	// When bob is added as a member
	engine.SyncMembership(group.ID, "bob", true)
	_, err = engine.SubmitGroup(context.Background(), group.ID, "alice", "welcome")
	req.NoError(err)
	req.Len(bobSession.received(), 1)

	// And when bob is removed again
	engine.SyncMembership(group.ID, "bob", false)
	_, err = engine.SubmitGroup(context.Background(), group.ID, "alice", "bye")
	req.NoError(err)
	req.Len(bobSession.received(), 1)
}

func TestEngine_Slow_Session_Does_Not_Fail_Submission(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	// A sink with no capacity loses every push
	full := sink.NewSessionSink(slog.Default(), "bob", 0)
	engine.Join("bob", full)

	receipt, err := engine.SubmitDirect(context.Background(), "alice", "bob", "hi")

	// Persistence already succeeded, so the submission is a success even
	// though the only subscriber dropped the push
	req.NoError(err)
	req.Empty(receipt.DeliveredTo)

	_, dropped, _ := engine.Stats()
	req.Equal(uint64(1), dropped)
}

func TestEngine_Oversized_Text_Is_Rejected(t *testing.T) {
	req := require.New(t)
	engine, _ := newTestEngine(t)

	long := strings.Repeat("x", domain.MaxTextLength+1)
	_, err := engine.SubmitDirect(context.Background(), "alice", "bob", long)
	req.ErrorIs(err, errors.ErrInvalidArgument)
}
