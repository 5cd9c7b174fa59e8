package domain

import "github.com/spec-kit/worklog-dictionaries/pkg/util"

// UserRole enumerates account roles.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// UserProfile is the authenticated account as returned by /auth/me.
type UserProfile struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName *string  `json:"fullName"`
	Role     UserRole `json:"role"`
}

// Validate checks the decoded profile shape.
func (p *UserProfile) Validate() error {
	if p.ID == "" {
		return util.NewDecodeError("profile missing id", nil)
	}
	if p.Email == "" {
		return util.NewDecodeError("profile missing email", nil)
	}
	if p.Role != UserRoleUser && p.Role != UserRoleAdmin {
		return util.NewDecodeError("profile has unknown role "+string(p.Role), nil)
	}
	return nil
}

// TokenResponse is the /auth/token response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Validate checks the decoded token shape.
func (t *TokenResponse) Validate() error {
	if t.AccessToken == "" {
		return util.NewDecodeError("token response missing access_token", nil)
	}
	return nil
}
