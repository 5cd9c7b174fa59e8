package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/pkg/util"
)

// MemoryStore backs the API server without a database. All ids are
// server-assigned uuids; the store enforces the same uniqueness rules as the
// Postgres schema.
type MemoryStore struct {
	mu      sync.Mutex
	users   []User
	vendors map[string][]Vendor // keyed by dictionary kind
	teams   []domain.Team
	members []domain.TeamMember
}

// NewMemoryStore returns an empty in-memory backing store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vendors: map[string][]Vendor{}}
}

// Users returns the account repository view of the store.
func (s *MemoryStore) Users() UserRepository { return (*memoryUsers)(s) }

// Vendors returns a vendor repository over the named dictionary.
func (s *MemoryStore) Vendors(kind string) VendorRepository {
	return &memoryVendors{store: s, kind: kind}
}

// Teams returns the team repository view of the store.
func (s *MemoryStore) Teams() TeamRepository { return (*memoryTeams)(s) }

// Members returns the member repository view of the store.
func (s *MemoryStore) Members() MemberRepository { return (*memoryMembers)(s) }

type memoryUsers MemoryStore

func (r *memoryUsers) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Email == user.Email {
			return util.NewConflict("email already registered", nil)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, util.NewNotFound("user", nil)
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, util.NewNotFound("user", nil)
}

type memoryVendors struct {
	store *MemoryStore
	kind  string
}

func (r *memoryVendors) List(_ context.Context) ([]Vendor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]Vendor(nil), r.store.vendors[r.kind]...), nil
}

func (r *memoryVendors) Create(_ context.Context, taxID, name string) (*Vendor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, v := range r.store.vendors[r.kind] {
		if v.TaxID == taxID {
			return nil, util.NewConflict("vendor with this tax id already exists", nil)
		}
	}
	vendor := Vendor{ID: uuid.NewString(), TaxID: taxID, Name: name}
	r.store.vendors[r.kind] = append(r.store.vendors[r.kind], vendor)
	return &vendor, nil
}

func (r *memoryVendors) Update(_ context.Context, id, taxID, name string) (*Vendor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	vendors := r.store.vendors[r.kind]
	for i := range vendors {
		if vendors[i].TaxID == taxID && vendors[i].ID != id {
			return nil, util.NewConflict("vendor with this tax id already exists", nil)
		}
	}
	for i := range vendors {
		if vendors[i].ID == id {
			vendors[i].TaxID = taxID
			vendors[i].Name = name
			vendor := vendors[i]
			return &vendor, nil
		}
	}
	return nil, util.NewNotFound("vendor", nil)
}

func (r *memoryVendors) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	vendors := r.store.vendors[r.kind]
	for i := range vendors {
		if vendors[i].ID == id {
			r.store.vendors[r.kind] = append(vendors[:i:i], vendors[i+1:]...)
			return nil
		}
	}
	return util.NewNotFound("vendor", nil)
}

type memoryTeams MemoryStore

func (r *memoryTeams) ListWithMembers(_ context.Context) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*MemoryStore)(r).teamsWithMembersLocked(), nil
}

func (r *memoryTeams) Create(_ context.Context, name string) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.teams {
		if r.teams[i].Name == name {
			return nil, util.NewConflict("team name already exists", nil)
		}
	}
	team := domain.Team{ID: uuid.NewString(), Name: name, Members: []domain.TeamMember{}}
	r.teams = append(r.teams, team)
	return &team, nil
}

func (r *memoryTeams) Update(_ context.Context, id, name string) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.teams {
		if r.teams[i].Name == name && r.teams[i].ID != id {
			return nil, util.NewConflict("team name already exists", nil)
		}
	}
	for i := range r.teams {
		if r.teams[i].ID == id {
			r.teams[i].Name = name
			team := r.teams[i]
			team.Members = (*MemoryStore)(r).membersOfLocked(id)
			return &team, nil
		}
	}
	return nil, util.NewNotFound("team", nil)
}

type memoryMembers MemoryStore

func (r *memoryMembers) Create(_ context.Context, name string, role domain.MemberRole, teamID *string) (*domain.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.members {
		if r.members[i].Name == name {
			return nil, util.NewConflict("member name already exists", nil)
		}
	}
	if err := (*MemoryStore)(r).checkTeamLocked(teamID); err != nil {
		return nil, err
	}
	member := domain.TeamMember{ID: uuid.NewString(), Name: name, Role: role, TeamID: teamID}
	r.members = append(r.members, member)
	return &member, nil
}

func (r *memoryMembers) Update(_ context.Context, id, name string, role domain.MemberRole, teamID *string) (*domain.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.members {
		if r.members[i].Name == name && r.members[i].ID != id {
			return nil, util.NewConflict("member name already exists", nil)
		}
	}
	if err := (*MemoryStore)(r).checkTeamLocked(teamID); err != nil {
		return nil, err
	}
	for i := range r.members {
		if r.members[i].ID == id {
			r.members[i].Name = name
			r.members[i].Role = role
			r.members[i].TeamID = teamID
			member := r.members[i]
			return &member, nil
		}
	}
	return nil, util.NewNotFound("member", nil)
}

func (r *memoryMembers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.members {
		if r.members[i].ID == id {
			r.members = append(r.members[:i:i], r.members[i+1:]...)
			return nil
		}
	}
	return util.NewNotFound("member", nil)
}

func (s *MemoryStore) teamsWithMembersLocked() []domain.Team {
	out := make([]domain.Team, len(s.teams))
	for i, team := range s.teams {
		team.Members = s.membersOfLocked(team.ID)
		out[i] = team
	}
	return out
}

func (s *MemoryStore) membersOfLocked(teamID string) []domain.TeamMember {
	members := []domain.TeamMember{}
	for _, m := range s.members {
		if m.TeamID != nil && *m.TeamID == teamID {
			members = append(members, m)
		}
	}
	return members
}

func (s *MemoryStore) checkTeamLocked(teamID *string) error {
	if teamID == nil {
		return nil
	}
	for i := range s.teams {
		if s.teams[i].ID == *teamID {
			return nil
		}
	}
	return util.NewNotFound("team", nil)
}
