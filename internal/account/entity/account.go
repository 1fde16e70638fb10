// Package entity holds the account domain types shared by use cases and
// adapters.
package entity

import "time"

// User is a stored account. Password holds the credential record, never the
// plaintext; the refresh token itself is never stored, only its digest.
type User struct {
	ID                    int64
	Username              string
	Password              string
	Role                  Role
	RefreshTokenHash      string
	RefreshTokenExpiresAt time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// DTO returns the public projection of u.
func (u User) DTO() UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Role: u.Role}
}

// UserDTO is what read operations expose.
type UserDTO struct {
	ID       int64
	Username string
	Role     Role
}

// NewUser is the data needed to create an account.
type NewUser struct {
	ID                    int64
	Username              string
	Password              string
	Role                  Role
	RefreshTokenHash      string
	RefreshTokenExpiresAt time.Time
}

// PatchUser updates the non-empty fields of an account.
type PatchUser struct {
	ID       int64
	Username string
	Password string
}

// IsEmpty reports whether there is nothing to update.
func (p PatchUser) IsEmpty() bool {
	return p.Username == "" && p.Password == ""
}

// RefreshToken replaces the refresh token digest of an account. When
// PreviousHash is set the replacement only happens if the stored digest still
// equals it, so a token can be rotated at most once.
type RefreshToken struct {
	UserID       int64
	Hash         string
	PreviousHash string
	ExpiresAt    time.Time
}

// UserListFilter pages through accounts ordered by id.
type UserListFilter struct {
	Limit  int32
	Offset int64
}
