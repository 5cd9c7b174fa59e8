package domain

import "github.com/spec-kit/worklog-dictionaries/pkg/util"

// MemberRole enumerates team member roles.
type MemberRole string

const (
	MemberRoleWorker     MemberRole = "WORKER"
	MemberRoleSupervisor MemberRole = "SUPERVISOR"
)

// Valid reports whether the role is a known value.
func (r MemberRole) Valid() bool {
	return r == MemberRoleWorker || r == MemberRoleSupervisor
}

// TeamMember belongs to at most one team; a nil TeamID means unassigned.
type TeamMember struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Role   MemberRole `json:"role"`
	TeamID *string    `json:"teamId"`
}

// Validate checks the decoded member shape.
func (m *TeamMember) Validate() error {
	if m.ID == "" {
		return util.NewDecodeError("team member missing id", nil)
	}
	if m.Name == "" {
		return util.NewDecodeError("team member missing name", nil)
	}
	if !m.Role.Valid() {
		return util.NewDecodeError("team member has unknown role "+string(m.Role), nil)
	}
	return nil
}

// Team owns an embedded copy of its members. After any team-scoped fetch the
// embedded list is the authoritative membership source.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}

// Validate checks the decoded team shape. Placeholder teams carry an empty
// name, so only the id and member shapes are enforced.
func (t *Team) Validate() error {
	if t.ID == "" {
		return util.NewDecodeError("team missing id", nil)
	}
	for i := range t.Members {
		if err := t.Members[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Teams validates element-wise.
type Teams []Team

func (ts Teams) Validate() error {
	for i := range ts {
		if err := ts[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TeamMemberPayload is the request body for member create/update calls.
type TeamMemberPayload struct {
	Name   string     `json:"name"`
	Role   MemberRole `json:"role"`
	TeamID *string    `json:"teamId"`
}

// TeamPayload is the request body for team create/update calls.
type TeamPayload struct {
	Name string `json:"name"`
}
