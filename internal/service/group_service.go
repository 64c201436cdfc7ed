package service

import (
	"context"

	"capstonehub/internal/models"
	"capstonehub/internal/repository"
	"capstonehub/internal/validation"
)

// CreateGroupInput carries a new group registration.
type CreateGroupInput struct {
	Name      string `json:"name"`
	MemberIDs []uint `json:"member_ids"`
}

// UpdateGroupInput carries group edits. A nil MemberIDs leaves the roster
// untouched; an empty slice clears it.
type UpdateGroupInput struct {
	Name      string  `json:"name"`
	MemberIDs *[]uint `json:"member_ids"`
}

// GroupService manages student teams.
type GroupService struct {
	groups   repository.GroupRepository
	requests repository.RequestRepository
	users    repository.UserRepository
}

// NewGroupService creates a GroupService.
func NewGroupService(
	groups repository.GroupRepository,
	requests repository.RequestRepository,
	users repository.UserRepository,
) *GroupService {
	return &GroupService{groups: groups, requests: requests, users: users}
}

// Create registers a group with the caller as leader. Leaders must be
// students, belong to no other group, and the roster including the leader is
// capped at the maximum team size.
func (s *GroupService) Create(ctx context.Context, leaderID uint, input CreateGroupInput) (*models.Group, error) {
	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if leader.Role != models.RoleMahasiswa {
		return nil, models.NewForbiddenError("Only mahasiswa can form capstone groups")
	}
	if input.Name == "" {
		return nil, models.NewValidationError("Group name is required")
	}

	existing, err := s.groups.GetByMember(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already belongs to a group")
	}

	if err := validation.ValidateGroupSize(1 + len(input.MemberIDs)); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	members, err := s.resolveMembers(ctx, leaderID, input.MemberIDs)
	if err != nil {
		return nil, err
	}

	group := &models.Group{Name: input.Name, LeaderID: leaderID}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	if len(members) > 0 {
		if err := s.groups.ReplaceMembers(ctx, group, members); err != nil {
			return nil, err
		}
	}
	return s.groups.GetByID(ctx, group.ID)
}

// resolveMembers validates a roster: every member exists, is a student, is
// not the leader, and belongs to no other group.
func (s *GroupService) resolveMembers(ctx context.Context, leaderID uint, memberIDs []uint) ([]models.User, error) {
	members := make([]models.User, 0, len(memberIDs))
	seen := map[uint]bool{leaderID: true}
	for _, id := range memberIDs {
		if seen[id] {
			return nil, models.NewValidationError("Duplicate member in roster")
		}
		seen[id] = true

		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user.Role != models.RoleMahasiswa {
			return nil, models.NewValidationError("Group members must be mahasiswa")
		}

		other, err := s.groups.GetByMember(ctx, id)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, models.NewConflictError("A listed member already belongs to a group")
		}
		members = append(members, *user)
	}
	return members, nil
}

// Get returns a group by ID.
func (s *GroupService) Get(ctx context.Context, id uint) (*models.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// GetMine returns the caller's group, or nil when they have none.
func (s *GroupService) GetMine(ctx context.Context, userID uint) (*models.Group, error) {
	return s.groups.GetByMember(ctx, userID)
}

// List returns a page of groups.
func (s *GroupService) List(ctx context.Context, limit, offset int) ([]models.Group, error) {
	return s.groups.List(ctx, limit, offset)
}

// Update renames the group and/or replaces its roster. Leader or admin only.
func (s *GroupService) Update(ctx context.Context, callerID uint, callerRole models.Role, id uint, input UpdateGroupInput) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.LeaderID != callerID && callerRole != models.RoleAdmin {
		return nil, models.NewForbiddenError("Only the group leader can modify the group")
	}

	if input.Name != "" && input.Name != group.Name {
		group.Name = input.Name
		if err := s.groups.Update(ctx, group); err != nil {
			return nil, err
		}
	}

	if input.MemberIDs != nil {
		if err := validation.ValidateGroupSize(1 + len(*input.MemberIDs)); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		members := make([]models.User, 0, len(*input.MemberIDs))
		seen := map[uint]bool{group.LeaderID: true}
		for _, memberID := range *input.MemberIDs {
			if seen[memberID] {
				return nil, models.NewValidationError("Duplicate member in roster")
			}
			seen[memberID] = true

			user, err := s.users.GetByID(ctx, memberID)
			if err != nil {
				return nil, err
			}
			if user.Role != models.RoleMahasiswa {
				return nil, models.NewValidationError("Group members must be mahasiswa")
			}

			other, err := s.groups.GetByMember(ctx, memberID)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != group.ID {
				return nil, models.NewConflictError("A listed member already belongs to another group")
			}
			members = append(members, *user)
		}
		if err := s.groups.ReplaceMembers(ctx, group, members); err != nil {
			return nil, err
		}
	}

	return s.groups.GetByID(ctx, id)
}

// Delete disbands a group with no active requests. Leader or admin only.
func (s *GroupService) Delete(ctx context.Context, callerID uint, callerRole models.Role, id uint) error {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if group.LeaderID != callerID && callerRole != models.RoleAdmin {
		return models.NewForbiddenError("Only the group leader can disband the group")
	}

	active, err := s.requests.CountActiveByGroup(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return models.NewConflictError("Group still has active capstone requests")
	}

	return s.groups.Delete(ctx, id)
}
