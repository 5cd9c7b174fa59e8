// Package repository defines storage for the dictionary API server. Two
// implementations exist: an in-memory store for tests and DSN-less runs, and
// a Postgres store used in deployments.
package repository

import (
	"context"

	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

// User is a stored account.
type User struct {
	ID           string
	Email        string
	FullName     *string
	Role         domain.UserRole
	PasswordHash string
}

// Profile converts the stored account to its wire profile.
func (u *User) Profile() domain.UserProfile {
	return domain.UserProfile{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

// UserRepository manages accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// Vendor is a stored catering or accommodation company. Which one it is
// depends on the repository instance, not the record.
type Vendor struct {
	ID    string
	TaxID string
	Name  string
}

// VendorRepository manages one vendor dictionary. Tax ids are unique within
// a dictionary; violations surface as conflict errors.
type VendorRepository interface {
	List(ctx context.Context) ([]Vendor, error)
	Create(ctx context.Context, taxID, name string) (*Vendor, error)
	Update(ctx context.Context, id, taxID, name string) (*Vendor, error)
	Delete(ctx context.Context, id string) error
}

// TeamRepository manages teams. Listed and returned teams embed their full
// member list.
type TeamRepository interface {
	ListWithMembers(ctx context.Context) ([]domain.Team, error)
	Create(ctx context.Context, name string) (*domain.Team, error)
	Update(ctx context.Context, id, name string) (*domain.Team, error)
}

// MemberRepository manages team members. Member names are unique; a member
// belongs to at most one team and moves teams by update.
type MemberRepository interface {
	Create(ctx context.Context, name string, role domain.MemberRole, teamID *string) (*domain.TeamMember, error)
	Update(ctx context.Context, id, name string, role domain.MemberRole, teamID *string) (*domain.TeamMember, error)
	Delete(ctx context.Context, id string) error
}
