package directory

import (
	"github.com/communityhub/communityhub/internal/access"
)

// Entry is one row in the community member directory.
type Entry struct {
	UserID int64
	Name   string
	Email  string
	Phone  string
	Role   access.Role
	Units  []string
}
