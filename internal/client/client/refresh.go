package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/common"
)

var errNoAccessInRefresh = errors.New("refresh response has no access token")

// refresh mints a new access token. Concurrent callers share one in-flight
// refresh and see the same result. On failure the session is purged and
// the invalidation callback fires once per failed refresh.
func (c *Client) refresh(ctx context.Context) error {
	ch := c.refreshOnce.DoChan("refresh", func() (any, error) {
		// the flight must not die with whichever caller started it
		fctx := context.WithoutCancel(ctx)
		err := c.refreshTokens(fctx)
		if err != nil {
			c.invalidate(fctx, err)
		}
		return nil, err
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Client) refreshTokens(ctx context.Context) error {
	token, err := metadata.GetString(ctx, c.store, common.RefreshTokenKey)
	if err != nil {
		return fmt.Errorf("refresh error: %w", err)
	}
	if token == "" {
		return fmt.Errorf("refresh error: %w", ErrUnauthorized)
	}

	var resp models.RefreshResponse
	ex, err := jsonExecution(http.MethodPost, common.RefreshPath, models.RefreshRequest{Refresh: token}, &resp)
	if err != nil {
		return err
	}
	if err := c.send(ctx, ex, false); err != nil {
		return fmt.Errorf("refresh error: %w", err)
	}
	if resp.Access == "" {
		return fmt.Errorf("refresh error: %w", errNoAccessInRefresh)
	}

	values := map[string][]byte{common.AccessTokenKey: []byte(resp.Access)}
	if resp.Refresh != "" {
		values[common.RefreshTokenKey] = []byte(resp.Refresh)
	}
	if err := metadata.SetAll(ctx, c.store, values); err != nil {
		return fmt.Errorf("refresh error: %w", err)
	}

	if exp, err := TokenExpiry(resp.Access); err == nil {
		c.log.Debug(ctx, "access token refreshed", "expires", exp, "rotated", resp.Refresh != "")
	}
	return nil
}

// invalidate purges the credential pair and the user snapshot, then tells
// the subscriber where to send the user.
func (c *Client) invalidate(ctx context.Context, cause error) {
	c.log.Warn(ctx, "session invalidated", "error", cause)

	err := metadata.DeleteAll(ctx, c.store,
		common.AccessTokenKey, common.RefreshTokenKey, common.UserSnapshotKey)
	if err != nil {
		c.log.Error(ctx, "purging credentials", "error", err)
	}
	if c.onInvalid != nil {
		c.onInvalid(ctx, c.loginPath)
	}
}
