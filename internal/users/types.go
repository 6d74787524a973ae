// Package users is the demo domain served by rpcd: a small user directory
// exposed as the "users" router.
package users

import (
	"fmt"
	"net/http"

	"github.com/morezero/typed-rpc/pkg/rpc"
	"github.com/morezero/typed-rpc/pkg/schema"
)

// Error codes returned in a call's err field.
const (
	CodeNotFound     = "USERS_NOT_FOUND"
	CodeInvalidInput = "USERS_INVALID_INPUT"
)

// Role is a user's access level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// EnumMembers implements schema.Enum.
func (Role) EnumMembers() []schema.EnumMember {
	return []schema.EnumMember{{Name: string(RoleAdmin)}, {Name: string(RoleMember)}, {Name: string(RoleGuest)}}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// User is a directory entry. Manager is resolved one level deep.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Manager *User  `json:"manager,omitempty"`
}

// GetUserInput selects a user by id.
type GetUserInput struct {
	ID int64 `json:"id"`
}

// ListUsersInput filters a listing. Zero values mean no filter.
type ListUsersInput struct {
	Role  *Role `json:"role,omitempty"`
	Limit int   `json:"limit,omitempty"`
}

// CreateUserInput describes a new user. Role defaults to member.
type CreateUserInput struct {
	Name      string `json:"name"`
	Role      Role   `json:"role,omitempty"`
	ManagerID *int64 `json:"managerId,omitempty"`
}

func notFound(id int64) *rpc.Error {
	return rpc.NewError(CodeNotFound, fmt.Sprintf("user %d not found", id)).
		WithDetails(map[string]int64{"id": id}).
		WithStatus(http.StatusNotFound)
}

func invalidInput(message string) *rpc.Error {
	return rpc.NewError(CodeInvalidInput, message).WithStatus(http.StatusBadRequest)
}

// normalize validates in and fills defaults.
func (in CreateUserInput) normalize() (CreateUserInput, error) {
	if in.Name == "" {
		return in, invalidInput("name is required")
	}
	if in.Role == "" {
		in.Role = RoleMember
	}
	if !in.Role.Valid() {
		return in, invalidInput(fmt.Sprintf("unknown role %q", in.Role))
	}
	return in, nil
}
