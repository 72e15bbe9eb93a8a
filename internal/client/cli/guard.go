package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/dmitrijs2005/onboarding/internal/client/services"
)

// errDenied is returned by commands the guard turned away. The guard has
// already told the user why.
var errDenied = errors.New("access denied")

// allow runs the route guard for a command reserved to role. An empty role
// admits any signed-in user.
func (a *App) allow(role models.Role) error {
	v := services.Guard(a.session.State(), role, a.config.LoginPath)
	switch v.Decision {
	case services.Allow:
		return nil
	case services.Wait:
		fmt.Fprintln(a.out, "Session is still being verified, try again in a moment.")
	case services.RedirectLogin:
		fmt.Fprintf(a.out, "Please log in first (%s).\n", v.Target)
	case services.RedirectDashboard:
		fmt.Fprintf(a.out, "Not available for your role, your dashboard is %s.\n", v.Target)
	}
	return errDenied
}
