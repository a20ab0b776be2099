package services

import (
	"sms-relay/domain"
	"sms-relay/repositories"
	"sms-relay/runtime"
)

type IGroupService interface {
	Create(name, createdBy string, members []string) (domain.Group, error)
	Get(groupID string) (domain.Group, error)
	List(member string) ([]domain.Group, error)
	Delete(groupID string) error
	AddMember(groupID, identity string) (domain.Group, error)
	RemoveMember(groupID, identity string) (domain.Group, error)
}

// GroupService is the group lifecycle write path. The delivery engine only
// reads membership; every mutation here is mirrored into live subscription
// state so connected sessions start or stop receiving the group's traffic
// without a reconnect.
type GroupService struct {
	groups repositories.IGroupRepository
	engine *runtime.Engine
}

func NewGroupService(groups repositories.IGroupRepository, engine *runtime.Engine) *GroupService {
	return &GroupService{groups: groups, engine: engine}
}

// Create persists a new group. Initial members are not auto-subscribed to
// the topic: a session is only "present" in a group once it joins.
func (s *GroupService) Create(name, createdBy string, members []string) (domain.Group, error) {
	return s.groups.Create(name, createdBy, members)
}

func (s *GroupService) Get(groupID string) (domain.Group, error) {
	return s.groups.Get(groupID)
}

func (s *GroupService) List(member string) ([]domain.Group, error) {
	return s.groups.List(member)
}

// Delete removes the group record and closes its live topic, so no session
// keeps a stale subscription to a deleted group.
func (s *GroupService) Delete(groupID string) error {
	if err := s.groups.Delete(groupID); err != nil {
		return err
	}
	s.engine.CloseTopic(groupID)
	return nil
}

func (s *GroupService) AddMember(groupID, identity string) (domain.Group, error) {
	group, err := s.groups.AddMember(groupID, identity)
	if err != nil {
		return domain.Group{}, err
	}
	s.engine.SyncMembership(groupID, identity, true)
	return group, nil
}

func (s *GroupService) RemoveMember(groupID, identity string) (domain.Group, error) {
	group, err := s.groups.RemoveMember(groupID, identity)
	if err != nil {
		return domain.Group{}, err
	}
	s.engine.SyncMembership(groupID, identity, false)
	return group, nil
}
