package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quizhub/quizctl/internal/model"
)

func TestHasRoleHierarchyTable(t *testing.T) {
	cases := []struct {
		user     model.Role
		required model.Role
		want     bool
	}{
		{model.RoleAdministrator, model.RolePlayer, true},
		{model.RoleAdministrator, model.RoleModerator, true},
		{model.RoleAdministrator, model.RoleAdministrator, true},
		{model.RoleModerator, model.RolePlayer, true},
		{model.RoleModerator, model.RoleModerator, true},
		{model.RoleModerator, model.RoleAdministrator, false},
		{model.RolePlayer, model.RolePlayer, true},
		{model.RolePlayer, model.RoleModerator, false},
		{model.RolePlayer, model.RoleAdministrator, false},
	}

	for _, c := range cases {
		got := HasRoleHierarchy(c.user, c.required)
		assert.Equal(t, c.want, got, "%s satisfies %s", c.user, c.required)
	}
}

func TestHasRoleHierarchyUnknownRoles(t *testing.T) {
	assert.False(t, HasRoleHierarchy("GUEST", model.RolePlayer))
	assert.False(t, HasRoleHierarchy(model.RolePlayer, "SUPERUSER"))
}

func TestEvaluateLoading(t *testing.T) {
	d := Evaluate(true, nil, model.RolePlayer)
	assert.Equal(t, OutcomeLoading, d.Outcome)
}

func TestEvaluateUnauthenticated(t *testing.T) {
	d := Evaluate(false, nil, "")
	assert.Equal(t, OutcomeRedirectToLogin, d.Outcome)
}

func TestEvaluateGrantedNoRequiredRole(t *testing.T) {
	user := &model.User{Role: model.RolePlayer}
	d := Evaluate(false, user, "")
	assert.Equal(t, OutcomeGranted, d.Outcome)
}

func TestEvaluateDeniedRoleCarriesBothRoles(t *testing.T) {
	user := &model.User{Role: model.RolePlayer}
	d := Evaluate(false, user, model.RoleAdministrator)
	assert.Equal(t, OutcomeDeniedRole, d.Outcome)
	assert.Equal(t, model.RoleAdministrator, d.RequiredRole)
	assert.Equal(t, model.RolePlayer, d.ActualRole)
}

func TestEvaluateModeratorReachesPlayerSurface(t *testing.T) {
	user := &model.User{Role: model.RoleModerator}
	d := Evaluate(false, user, model.RolePlayer)
	assert.Equal(t, OutcomeGranted, d.Outcome)
}

func TestEvaluateBlockedUser(t *testing.T) {
	until := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{Role: model.RolePlayer, IsBlocked: true, BlockedUntil: &until}
	d := Evaluate(false, user, model.RolePlayer)
	assert.Equal(t, OutcomeDeniedBlocked, d.Outcome)
	assert.Equal(t, "2025-03-01T12:00:00Z", d.BlockedUntil)
}

func TestEvaluateRoleCheckedBeforeBlock(t *testing.T) {
	// A blocked player asked for a moderator surface sees the role
	// denial, not the block denial
	user := &model.User{Role: model.RolePlayer, IsBlocked: true}
	d := Evaluate(false, user, model.RoleModerator)
	assert.Equal(t, OutcomeDeniedRole, d.Outcome)
}

func TestEvaluateBlockedAdministrator(t *testing.T) {
	// Administrators pass every role check, so the block denial is what
	// a blocked administrator gets
	user := &model.User{Role: model.RoleAdministrator, IsBlocked: true}
	d := Evaluate(false, user, model.RoleModerator)
	assert.Equal(t, OutcomeDeniedBlocked, d.Outcome)
}
