package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/client"
	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/client/services"
	"github.com/dmitrijs2005/onboarding/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for the sign-up profile and hands it to the session
// store, which reports the outcome (including per-field errors) itself.
//
// Both password slices are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Enter username", &req.Username},
		{"Enter email", &req.Email},
		{"Enter first name", &req.FirstName},
		{"Enter last name", &req.LastName},
		{"Enter phone (optional)", &req.Phone},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	role, err := getSimpleText(a.reader, "Account type: client or admin [client]", a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(role) {
	case "", string(models.RoleClient):
		req.Role = models.RoleClient
	case string(models.RoleAdmin):
		req.Role = models.RoleAdmin
	default:
		fmt.Fprintf(a.out, "Unknown account type %q\n", role)
		return fmt.Errorf("unknown role %q", role)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		fmt.Fprintln(a.out, "Passwords do not match")
		return errPasswordMismatch
	}
	req.Password, req.Password2 = string(password), string(confirm)

	return a.session.Register(ctx, req)
}

// Login prompts the user for credentials and authenticates through the
// session store. Success and failure are reported by the store's notifier.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.session.Login(ctx, userName, string(password))
}

// Logout clears the stored tokens and the user snapshot. It never fails.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// WhoAmI re-validates the profile against the backend and prints it along
// with the access token expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.allow(""); err != nil {
		return err
	}
	if err := a.session.FetchUser(ctx); err != nil {
		return err
	}

	u := a.session.State().User
	if u == nil {
		return errDenied
	}

	fmt.Fprintf(a.out, "%s (%s)\n", u.DisplayName(), u.Username)
	fmt.Fprintf(a.out, "  email:     %s\n", u.Email)
	if u.Phone != "" {
		fmt.Fprintf(a.out, "  phone:     %s\n", u.Phone)
	}
	fmt.Fprintf(a.out, "  role:      %s\n", u.Role)
	fmt.Fprintf(a.out, "  dashboard: %s\n", services.DashboardFor(u.Role))

	token, err := metadata.GetString(ctx, a.store, common.AccessTokenKey)
	if err != nil {
		return err
	}
	if exp, err := client.TokenExpiry(token); err == nil {
		fmt.Fprintf(a.out, "  token:     expires %s (in %s)\n",
			exp.Local().Format(time.DateTime), time.Until(exp).Round(time.Second))
	}
	return nil
}
