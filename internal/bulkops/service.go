package bulkops

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/jobs"
)

// Locker serializes bulk runs per community.
type Locker interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// Enqueuer hands invite mail to the background queue.
type Enqueuer interface {
	EnqueueInviteMail(ctx context.Context, payload jobs.InviteMailPayload) (*asynq.TaskInfo, error)
}

// invitableRoles lists the roles the admin may hand out in bulk. Platform
// and community admin accounts are provisioned individually.
var invitableRoles = map[access.Role]bool{
	access.RoleResident:      true,
	access.RoleTenant:        true,
	access.RoleSecurityGuard: true,
	access.RoleSecurityAdmin: true,
	access.RoleHelpdeskAgent: true,
	access.RoleHelpdeskAdmin: true,
}

// unitBoundRoles must name a unit on their row.
var unitBoundRoles = map[access.Role]bool{
	access.RoleResident: true,
	access.RoleTenant:   true,
}

// Service runs bulk member registration. One run per community at a time;
// duplicate emails are skipped rather than failing the whole batch.
type Service struct {
	repo     Repository
	lock     Locker
	queue    Enqueuer
	validate *validator.Validate
	baseURL  string
}

// NewService constructs a new Service.
func NewService(repo Repository, lock Locker, queue Enqueuer, baseURL string) *Service {
	return &Service{
		repo:     repo,
		lock:     lock,
		queue:    queue,
		validate: validator.New(),
		baseURL:  baseURL,
	}
}

// Run processes a batch of rows for the actor's community.
func (s *Service) Run(ctx context.Context, actor *access.Actor, communityName string, rows []Row) (Summary, error) {
	if actor == nil || actor.Role != access.RoleCommunityAdmin {
		return Summary{}, shared.ErrForbidden
	}
	if len(rows) == 0 {
		return Summary{}, ErrEmptyBatch
	}

	key := shared.OnboardingLockKey(actor.CommunityID)
	if err := s.lock.Acquire(ctx, key); err != nil {
		if errors.Is(err, shared.ErrLockHeld) {
			return Summary{}, ErrRunInProgress
		}
		return Summary{}, err
	}
	defer func() {
		_ = s.lock.Release(ctx, key)
	}()

	units, err := s.repo.UnitIDs(ctx, actor.CommunityID)
	if err != nil {
		return Summary{}, err
	}

	emails := make([]string, 0, len(rows))
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		rows[i].Email = strings.ToLower(strings.TrimSpace(rows[i].Email))
		rows[i].Role = strings.TrimSpace(rows[i].Role)
		emails = append(emails, rows[i].Email)
	}
	existing, err := s.repo.ExistingEmails(ctx, actor.CommunityID, emails)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		result := s.process(ctx, actor, communityName, units, existing, seen, row)
		switch result.Outcome {
		case OutcomeInvited:
			summary.Invited++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeInvalid:
			summary.Invalid++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary, nil
}

func (s *Service) process(ctx context.Context, actor *access.Actor, communityName string, units map[int64]bool, existing, seen map[string]bool, row Row) RowResult {
	if err := s.validate.Struct(row); err != nil {
		return RowResult{Row: row, Outcome: OutcomeInvalid, Reason: "Nama atau email tidak valid"}
	}
	role, err := access.ParseRole(row.Role)
	if err != nil || !invitableRoles[role] {
		return RowResult{Row: row, Outcome: OutcomeInvalid, Reason: "Peran tidak dikenal"}
	}
	if unitBoundRoles[role] {
		if !units[row.UnitID] {
			return RowResult{Row: row, Outcome: OutcomeInvalid, Reason: "Unit tidak ditemukan"}
		}
	} else {
		row.UnitID = 0
	}
	if seen[row.Email] || existing[row.Email] {
		return RowResult{Row: row, Outcome: OutcomeSkipped, Reason: "Email sudah terdaftar"}
	}
	seen[row.Email] = true

	invite, err := s.repo.CreateInvite(ctx, Invite{
		CommunityID: actor.CommunityID,
		Email:       row.Email,
		Name:        row.Name,
		Role:        string(role),
		UnitID:      row.UnitID,
		Token:       uuid.NewString(),
	})
	if err != nil {
		return RowResult{Row: row, Outcome: OutcomeInvalid, Reason: "Gagal menyimpan undangan"}
	}

	if _, err := s.queue.EnqueueInviteMail(ctx, jobs.InviteMailPayload{
		Email:     invite.Email,
		Name:      invite.Name,
		Community: communityName,
		Role:      role.Label(),
		Token:     invite.Token,
		BaseURL:   s.baseURL,
	}); err != nil {
		// The invite row stands; mail can be resent by rerunning the row.
		return RowResult{Row: row, Outcome: OutcomeInvited, Reason: "Email undangan tertunda"}
	}
	return RowResult{Row: row, Outcome: OutcomeInvited}
}
