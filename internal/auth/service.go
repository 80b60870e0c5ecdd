package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// LoadActor builds the per-request actor snapshot: account, role and current
// unit assignments. Called on every request, so setup completion is visible
// without any cache invalidation. Unit assignments are loaded for every
// unit-holding role; tenants get theirs from invite acceptance rather than
// the setup flow.
func (s *Service) LoadActor(ctx context.Context, userID int64) (*access.Actor, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrNotFound
	}
	actor := &access.Actor{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		CommunityID: user.CommunityID,
	}
	if user.Role == access.RoleCommunityAdmin || user.Role == access.RoleResident || user.Role == access.RoleTenant {
		units, err := s.repo.ListUnitAssignments(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		actor.Units = units
	}
	return actor, nil
}

// InviteByToken fetches a pending invite for the acceptance page.
func (s *Service) InviteByToken(ctx context.Context, token string) (*Invite, error) {
	return s.repo.FindInviteByToken(ctx, token)
}

// AcceptInvite turns a pending invite into an active account.
func (s *Service) AcceptInvite(ctx context.Context, token, password string) error {
	inv, err := s.repo.FindInviteByToken(ctx, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.repo.AcceptInvite(ctx, inv, string(hash))
	return err
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
