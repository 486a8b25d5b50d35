package model

// Role is a platform role name as used on the wire
type Role string

const (
	RolePlayer        Role = "PLAYER"
	RoleModerator     Role = "MODERATOR"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// roleRank fixes the total order PLAYER < MODERATOR < ADMINISTRATOR.
// Unknown roles rank 0 and satisfy nothing.
var roleRank = map[Role]int{
	RolePlayer:        1,
	RoleModerator:     2,
	RoleAdministrator: 3,
}

// Rank returns the role's position in the hierarchy, 0 for unknown roles
func (r Role) Rank() int {
	return roleRank[r]
}

// Valid reports whether r is one of the known platform roles
func (r Role) Valid() bool {
	return roleRank[r] != 0
}
