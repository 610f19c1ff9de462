package group

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// Common errors
var (
	ErrGroupNotFound       = apperr.NotFound("group not found")
	ErrMemberNotFound      = apperr.NotFound("member not found")
	ErrMemberAlreadyExists = apperr.Constraint("user is already a member of this group")
)

// Service handles group business logic and answers the membership checks the
// expense and balance features rely on.
type Service struct {
	repo *Repository
}

// NewService creates a new group service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new group and enrolls the creator plus any listed members
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	if req.Name == "" || req.CreatedBy == 0 {
		return nil, apperr.Validation("name and created_by are required")
	}

	group, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	// The creator is always a member; dedupe the requested list against it.
	if _, err := s.repo.AddMember(ctx, group.ID, req.CreatedBy); err != nil {
		return nil, err
	}
	added := map[int64]bool{req.CreatedBy: true}
	for _, id := range req.Members {
		if added[id] {
			continue
		}
		added[id] = true
		if _, err := s.repo.AddMember(ctx, group.ID, id); err != nil {
			return nil, err
		}
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// List retrieves all groups
func (s *Service) List(ctx context.Context) ([]*Group, error) {
	return s.repo.List(ctx)
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID int64, req *AddMemberRequest) (*Member, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	return s.repo.AddMember(ctx, groupID, req.UserID)
}

// RemoveMember removes a user from a group
func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	err := s.repo.RemoveMember(ctx, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMemberNotFound
	}
	return err
}

// Exists reports whether a group exists
func (s *Service) Exists(ctx context.Context, groupID int64) (bool, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return false, err
	}
	return group != nil, nil
}

// MemberIDs returns the user IDs of all group members
func (s *Service) MemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

// IsMember reports whether a user belongs to a group
func (s *Service) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}
