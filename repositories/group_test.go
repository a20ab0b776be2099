package repositories

import (
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"sms-relay/domain"
	"sms-relay/errors"
)

func newTestGroups(t *testing.T) *GroupRepository {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	return NewGroupRepository(db)
}

func TestGroupRepository_Create_Normalizes_The_Member_List(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	// Duplicates, padding and blanks are cleaned out
	group, err := groups.Create("friends", "alice", []string{"alice", " bob ", "bob", "", "carol"})
	req.NoError(err)

	req.NotEmpty(group.ID)
	req.Equal("friends", group.Name)
	req.Equal("alice", group.CreatedBy)
	req.Equal([]string{"alice", "bob", "carol"}, group.Members)
	req.False(group.CreatedAt.IsZero())
}

func TestGroupRepository_Create_Caps_Membership(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	members := make([]string, 0, domain.MaxGroupMembers+5)
	for i := 0; i < domain.MaxGroupMembers+5; i++ {
		members = append(members, fmt.Sprintf("user-%d", i))
	}

	group, err := groups.Create("crowded", "user-0", members)
	req.NoError(err)
	req.Len(group.Members, domain.MaxGroupMembers)
}

func TestGroupRepository_Create_Rejects_Empty_Name_Or_Members(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	_, err := groups.Create("  ", "alice", []string{"alice"})
	req.ErrorIs(err, errors.ErrInvalidArgument)

	_, err = groups.Create("friends", "alice", []string{" ", ""})
	req.ErrorIs(err, errors.ErrInvalidArgument)
}

func TestGroupRepository_Get_Unknown_Group(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	_, err := groups.Get("missing")
	req.ErrorIs(err, errors.ErrGroupNotFound)

	_, err = groups.MembersOf("missing")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func TestGroupRepository_List_Filters_By_Member(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	_, err := groups.Create("with-bob", "alice", []string{"alice", "bob"})
	req.NoError(err)
	_, err = groups.Create("without-bob", "alice", []string{"alice", "carol"})
	req.NoError(err)

	all, err := groups.List("")
	req.NoError(err)
	req.Len(all, 2)

	bobs, err := groups.List("bob")
	req.NoError(err)
	req.Len(bobs, 1)
	req.Equal("with-bob", bobs[0].Name)
}

func TestGroupRepository_AddMember_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	group, err := groups.Create("friends", "alice", []string{"alice"})
	req.NoError(err)

	grown, err := groups.AddMember(group.ID, "bob")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, grown.Members)

	// Adding bob again changes nothing
	again, err := groups.AddMember(group.ID, "bob")
	req.NoError(err)
	req.Equal(grown.Members, again.Members)
}

func TestGroupRepository_RemoveMember(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	group, err := groups.Create("friends", "alice", []string{"alice", "bob"})
	req.NoError(err)

	shrunk, err := groups.RemoveMember(group.ID, "bob")
	req.NoError(err)
	req.Equal([]string{"alice"}, shrunk.Members)

	// Removing an absent member is a no-op
	same, err := groups.RemoveMember(group.ID, "bob")
	req.NoError(err)
	req.Equal(shrunk.Members, same.Members)
}

func TestGroupRepository_Delete(t *testing.T) {
	req := require.New(t)
	groups := newTestGroups(t)

	group, err := groups.Create("friends", "alice", []string{"alice"})
	req.NoError(err)

	req.NoError(groups.Delete(group.ID))

	_, err = groups.Get(group.ID)
	req.ErrorIs(err, errors.ErrGroupNotFound)

	req.ErrorIs(groups.Delete(group.ID), errors.ErrGroupNotFound)
}
