package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RoleUser, ParseRole(""))
	assert.Equal(t, RoleAdmin, ParseRole(" Admin "))
	assert.Equal(t, Role("root"), ParseRole("root"))

	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("root").IsValid())
	assert.Equal(t, "admin", RoleAdmin.String())
}

func TestUser_DTO(t *testing.T) {
	t.Parallel()

	u := User{ID: 9, Username: "alice", Password: "k:s", Role: RoleAdmin, RefreshTokenHash: "h"}
	assert.Equal(t, UserDTO{ID: 9, Username: "alice", Role: RoleAdmin}, u.DTO())
}

func TestPatchUser_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, PatchUser{ID: 1}.IsEmpty())
	assert.False(t, PatchUser{ID: 1, Username: "bob"}.IsEmpty())
	assert.False(t, PatchUser{ID: 1, Password: "k:s"}.IsEmpty())
}
