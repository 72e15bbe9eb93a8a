package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
)

// AuthService wraps /auth/. It returns tokens to the caller and does not
// persist them; storing the pair is the session store's job.
type AuthService struct {
	c *Client
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := s.c.call(ctx, http.MethodPost, "/auth/login/", nil,
		models.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.c.call(ctx, http.MethodPost, "/auth/register/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.c.call(ctx, http.MethodGet, "/auth/profile/", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := s.c.call(ctx, http.MethodPatch, "/auth/profile/", nil, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Refresh forces a token refresh with the stored refresh token. A failure
// ends the session exactly as an automatic refresh would.
func (s *AuthService) Refresh(ctx context.Context) error {
	return s.c.refresh(ctx)
}
