// Package dto holds request payloads accepted by the dictionary API server.
// Response bodies use the domain types directly; the store on the other side
// decodes them strictly.
package dto

import "github.com/spec-kit/worklog-dictionaries/internal/domain"

// VendorRequest is the create/update body for both vendor dictionaries.
type VendorRequest struct {
	TaxID string `json:"taxId"`
	Name  string `json:"name"`
}

// TeamRequest is the create/update body for teams.
type TeamRequest struct {
	Name string `json:"name"`
}

// MemberRequest is the create/update body for team members.
type MemberRequest struct {
	Name   string            `json:"name"`
	Role   domain.MemberRole `json:"role"`
	TeamID *string           `json:"teamId"`
}

// RegisterRequest is the body for account registration.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"fullName"`
}
