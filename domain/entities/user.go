package entities

import "strings"

// User is the public profile of an account
type User struct {
	ID        string `json:"id" validate:"required"`
	Username  string `json:"username" validate:"required,username"`
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// Validate checks the user against its schema
func (u *User) Validate() error {
	return validateStruct("user", u)
}

// UserAccount is a user plus private account data, only visible to its owner
type UserAccount struct {
	User
	Email   string `json:"email" validate:"required,email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Validate checks the account against its schema
func (a *UserAccount) Validate() error {
	return validateStruct("user account", a)
}

// PermissionAdmin is the stored permission granting administrative edits
const PermissionAdmin = "ADMIN"

// UserPatch is a partial update of a user profile. Nil fields are left untouched.
type UserPatch struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,username"`
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// Validate checks the present fields
func (p *UserPatch) Validate() error {
	return validateStruct("user", p)
}

// IsEmpty reports whether the patch changes nothing
func (p *UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Name == nil && p.AvatarURL == nil
}

// UserAccountPatch is a partial update of private account data
type UserAccountPatch struct {
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	IsAdmin *bool   `json:"isAdmin,omitempty"`
}

// Validate checks the present fields
func (p *UserAccountPatch) Validate() error {
	return validateStruct("user account", p)
}

// IsEmpty reports whether the patch changes nothing
func (p *UserAccountPatch) IsEmpty() bool {
	return p.Email == nil && p.IsAdmin == nil
}

// NewAccount carries what a verified identity knows about a first-time user
type NewAccount struct {
	ID                string
	Email             string
	Name              string
	AvatarURL         string
	PreferredUsername string
}

// UsernameCandidate derives a username from the identity. It is not guaranteed
// to be free.
func (n *NewAccount) UsernameCandidate() string {
	source := n.PreferredUsername
	if source == "" {
		source, _, _ = strings.Cut(n.Email, "@")
	}
	if source == "" {
		source = n.Name
	}
	return SanitizeUsername(source)
}

// SanitizeUsername maps s onto the username alphabet, replacing anything else with '_'
func SanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "player"
	}
	return out
}
