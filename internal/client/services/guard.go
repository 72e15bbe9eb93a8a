package services

import "github.com/dmitrijs2005/onboarding/internal/client/models"

const (
	AdminDashboardPath  = "/admin/dashboard"
	ClientDashboardPath = "/client/dashboard"
)

type Decision int

const (
	// Wait means the session is still being verified.
	Wait Decision = iota
	RedirectLogin
	RedirectDashboard
	Allow
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Verdict is a guard decision plus where to go for the redirects.
type Verdict struct {
	Decision Decision
	Target   string
}

// Guard decides whether a session may enter an area reserved for required.
// An empty required role admits any signed-in user.
func Guard(s State, required models.Role, loginPath string) Verdict {
	if !s.IsInitialized || s.IsLoading {
		return Verdict{Decision: Wait}
	}
	if !s.IsAuthenticated || s.User == nil {
		return Verdict{Decision: RedirectLogin, Target: loginPath}
	}
	if required != "" && s.User.Role != required {
		return Verdict{Decision: RedirectDashboard, Target: DashboardFor(s.User.Role)}
	}
	return Verdict{Decision: Allow}
}

// DashboardFor is the landing page for role.
func DashboardFor(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminDashboardPath
	}
	return ClientDashboardPath
}
