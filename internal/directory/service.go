package directory

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/communityhub/communityhub/internal/access"
)

// Service produces the member directory an actor is allowed to see. The
// visibility partition runs before search, so a query can never surface a
// row the viewer's role would not otherwise receive.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var fold = cases.Fold()

// matches reports whether the entry matches the query under Unicode case
// folding. Name, email, and unit labels are searched.
func matches(e Entry, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(fold.String(e.Name), query) ||
		strings.Contains(fold.String(e.Email), query) {
		return true
	}
	for _, unit := range e.Units {
		if strings.Contains(fold.String(unit), query) {
			return true
		}
	}
	return false
}

// List returns the directory rows visible to the actor, optionally filtered
// by a case-insensitive substring query.
func (s *Service) List(ctx context.Context, actor *access.Actor, query string) ([]Entry, error) {
	if actor == nil {
		return nil, nil
	}
	roles := access.DirectoryVisibleRoles(actor.Role)
	if len(roles) == 0 {
		return nil, nil
	}
	entries, err := s.repo.ListMembers(ctx, actor.CommunityID, roles)
	if err != nil {
		return nil, err
	}

	query = fold.String(strings.TrimSpace(query))
	filtered := entries[:0]
	for _, e := range entries {
		if matches(e, query) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
