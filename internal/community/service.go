package community

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/communityhub/communityhub/internal/shared"
)

// Service wraps community tenancy rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a new Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateCommunity registers a new community with a generated join code.
func (s *Service) CreateCommunity(ctx context.Context, name, address string) (Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Community{}, shared.ErrValidation
	}
	c := Community{
		Name:     name,
		Address:  strings.TrimSpace(address),
		JoinCode: newJoinCode(),
	}
	return s.repo.CreateCommunity(ctx, c)
}

// JoinByCode resolves a community from its join code.
func (s *Service) JoinByCode(ctx context.Context, code string) (Community, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Community{}, ErrJoinCodeInvalid
	}
	return s.repo.FindByJoinCode(ctx, code)
}

// AddUnit registers a residence unit in a community.
func (s *Service) AddUnit(ctx context.Context, communityID int64, tower, number string) (Unit, error) {
	tower = strings.ToUpper(strings.TrimSpace(tower))
	number = strings.TrimSpace(number)
	if tower == "" || number == "" {
		return Unit{}, shared.ErrValidation
	}
	return s.repo.CreateUnit(ctx, Unit{CommunityID: communityID, Tower: tower, Number: number})
}

// ListUnits returns the units of a community in tower/number order.
func (s *Service) ListUnits(ctx context.Context, communityID int64) ([]Unit, error) {
	return s.repo.ListUnits(ctx, communityID)
}

// AssignUnit records a user's unit assignment, completing setup for that
// user. A second setup run is rejected: units transition empty→non-empty
// exactly once.
func (s *Service) AssignUnit(ctx context.Context, userID, unitID int64, occupancy Occupancy) (Assignment, error) {
	existing, err := s.repo.CountAssignmentsByUser(ctx, userID)
	if err != nil {
		return Assignment{}, err
	}
	if existing > 0 {
		return Assignment{}, ErrAlreadySetUp
	}

	unit, err := s.repo.GetUnit(ctx, unitID)
	if err != nil {
		return Assignment{}, err
	}
	if occupancy == OccupancyOwner {
		owners, err := s.repo.CountOwnerAssignmentsByUnit(ctx, unitID)
		if err != nil {
			return Assignment{}, err
		}
		if owners > 0 {
			return Assignment{}, ErrUnitTaken
		}
	}

	assignment, err := s.repo.CreateAssignment(ctx, Assignment{
		UnitID:    unitID,
		UserID:    userID,
		Occupancy: occupancy,
	})
	if err != nil {
		return Assignment{}, err
	}
	if err := s.repo.SetUserCommunity(ctx, userID, unit.CommunityID); err != nil {
		return Assignment{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  userID,
			Action:   "assign_unit",
			Entity:   "unit",
			EntityID: unit.Label(),
			Meta:     map[string]any{"occupancy": string(occupancy)},
		})
	}
	return assignment, nil
}

// CommunityName resolves a community's display name.
func (s *Service) CommunityName(ctx context.Context, id int64) (string, error) {
	c, err := s.repo.GetCommunity(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Membership reports whether the user already completed setup.
func (s *Service) Membership(ctx context.Context, userID int64) (bool, error) {
	count, err := s.repo.CountAssignmentsByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func newJoinCode() string {
	// Join codes are short enough to relay verbally at the gate.
	id := uuid.NewString()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
