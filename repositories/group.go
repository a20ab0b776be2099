//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"sms-relay/domain"
	"sms-relay/errors"
)

type IGroupRepository interface {
	Create(name, createdBy string, members []string) (domain.Group, error)
	Get(groupID string) (domain.Group, error)
	MembersOf(groupID string) ([]string, error)
	List(member string) ([]domain.Group, error)
	Delete(groupID string) error
	AddMember(groupID, identity string) (domain.Group, error)
	RemoveMember(groupID, identity string) (domain.Group, error)
}

// GroupRepository is the authoritative membership record, persisted in
// BadgerDB under "group:{id}" keys.
type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func groupKey(groupID string) []byte {
	return []byte("group:" + groupID)
}

// Create trims, deduplicates and caps the member list, then persists the
// group under a fresh id.
func (r *GroupRepository) Create(name, createdBy string, members []string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, fmt.Errorf("%w: group name required", errors.ErrInvalidArgument)
	}

	cleaned := lo.Uniq(lo.FilterMap(members, func(m string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(m)
		return trimmed, trimmed != ""
	}))
	if len(cleaned) == 0 {
		return domain.Group{}, fmt.Errorf("%w: at least 1 member required", errors.ErrInvalidArgument)
	}
	if len(cleaned) > domain.MaxGroupMembers {
		cleaned = cleaned[:domain.MaxGroupMembers]
	}

	group := domain.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Members:   cleaned,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.put(group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (r *GroupRepository) Get(groupID string) (domain.Group, error) {
	var group domain.Group
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(groupKey(groupID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &group)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, fmt.Errorf("%w: %s", errors.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// MembersOf returns a read-only membership snapshot for delivery-time use.
func (r *GroupRepository) MembersOf(groupID string) ([]string, error) {
	group, err := r.Get(groupID)
	if err != nil {
		return nil, err
	}
	return group.Members, nil
}

// List returns all groups, or only those the given member belongs to,
// newest first.
func (r *GroupRepository) List(member string) ([]domain.Group, error) {
	var groups []domain.Group
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("group:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group domain.Group
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &group)
			})
			if err != nil {
				return err
			}
			if member == "" || group.HasMember(member) {
				groups = append(groups, group)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Key order is by id, not by age
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

func (r *GroupRepository) Delete(groupID string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(groupKey(groupID)); err != nil {
			return err
		}
		return txn.Delete(groupKey(groupID))
	})
	if err == badger.ErrKeyNotFound {
		return fmt.Errorf("%w: %s", errors.ErrGroupNotFound, groupID)
	}
	return err
}

// AddMember grows the membership set, ignoring duplicates.
func (r *GroupRepository) AddMember(groupID, identity string) (domain.Group, error) {
	group, err := r.Get(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.HasMember(identity) {
		return group, nil
	}
	group.Members = append(group.Members, identity)
	if err := r.put(group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// RemoveMember shrinks the membership set; removing an absent member is a no-op.
func (r *GroupRepository) RemoveMember(groupID, identity string) (domain.Group, error) {
	group, err := r.Get(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	group.Members = lo.Without(group.Members, identity)
	if err := r.put(group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (r *GroupRepository) put(group domain.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(groupKey(group.ID), data)
	})
}
