// Package authz decides whether the current session may reach a gated
// surface. It is a pure decision function so every branch is testable
// without a session or a network.
package authz

import (
	"github.com/quizhub/quizctl/internal/model"
)

// Outcome is the gate's verdict
type Outcome int

const (
	// OutcomeLoading means the session is still restoring; no decision yet
	OutcomeLoading Outcome = iota
	// OutcomeRedirectToLogin means the caller is unauthenticated
	OutcomeRedirectToLogin
	// OutcomeDeniedRole means the role requirement is not met
	OutcomeDeniedRole
	// OutcomeDeniedBlocked means the account is blocked
	OutcomeDeniedBlocked
	// OutcomeGranted means access is allowed
	OutcomeGranted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRedirectToLogin:
		return "redirect_to_login"
	case OutcomeDeniedRole:
		return "denied_role"
	case OutcomeDeniedBlocked:
		return "denied_blocked"
	case OutcomeGranted:
		return "granted"
	}
	return "unknown"
}

// Decision is the gate's full verdict, carrying what a caller needs to
// render it: the roles involved for a role denial, the block expiry for
// a block denial.
type Decision struct {
	Outcome      Outcome
	RequiredRole model.Role
	ActualRole   model.Role
	BlockedUntil string
}

// HasRoleHierarchy is the hierarchy role policy used for gating:
// a role satisfies any requirement at or below its own rank.
// This intentionally differs from the session manager's strict HasRole,
// which only lets administrators cross role lines; the two policies are
// kept separate because callers rely on each behavior.
func HasRoleHierarchy(userRole, required model.Role) bool {
	if userRole == model.RoleAdministrator {
		return true
	}
	userRank := userRole.Rank()
	requiredRank := required.Rank()
	if userRank == 0 || requiredRank == 0 {
		return false
	}
	return requiredRank <= userRank
}

// Evaluate decides access for a session state and an optional required
// role (empty means any authenticated user).
//
// The role check runs before the block check, matching the platform's
// established behavior; a blocked user failing a role requirement sees
// the role denial.
func Evaluate(loading bool, user *model.User, required model.Role) Decision {
	if loading {
		return Decision{Outcome: OutcomeLoading}
	}

	if user == nil {
		return Decision{Outcome: OutcomeRedirectToLogin}
	}

	if required != "" && !HasRoleHierarchy(user.Role, required) {
		return Decision{
			Outcome:      OutcomeDeniedRole,
			RequiredRole: required,
			ActualRole:   user.Role,
		}
	}

	if user.IsBlocked {
		d := Decision{Outcome: OutcomeDeniedBlocked, ActualRole: user.Role}
		if user.BlockedUntil != nil {
			d.BlockedUntil = user.BlockedUntil.Format("2006-01-02T15:04:05Z07:00")
		}
		return d
	}

	return Decision{Outcome: OutcomeGranted, ActualRole: user.Role}
}
