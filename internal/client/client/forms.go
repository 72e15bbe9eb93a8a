package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
)

// FormsService wraps the admin form endpoints and the public catalogue.
type FormsService struct {
	c *Client
}

func adminFormPath(id string, action ...string) string {
	p := "/forms/admin/" + url.PathEscape(id) + "/"
	for _, a := range action {
		p += a + "/"
	}
	return p
}

func (s *FormsService) List(ctx context.Context, f models.ListFilter) (*models.Page[models.Form], error) {
	var page models.Page[models.Form]
	if err := s.c.call(ctx, http.MethodGet, "/forms/admin/", f.Values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *FormsService) Get(ctx context.Context, id string) (*models.Form, error) {
	return s.form(ctx, http.MethodGet, adminFormPath(id), nil)
}

func (s *FormsService) Create(ctx context.Context, f *models.Form) (*models.Form, error) {
	return s.form(ctx, http.MethodPost, "/forms/admin/", f)
}

// Update sends a partial update; only the members present in changes are
// modified.
func (s *FormsService) Update(ctx context.Context, id string, changes map[string]any) (*models.Form, error) {
	return s.form(ctx, http.MethodPatch, adminFormPath(id), changes)
}

func (s *FormsService) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, http.MethodDelete, adminFormPath(id), nil, nil, nil)
}

func (s *FormsService) Activate(ctx context.Context, id string) (*models.Form, error) {
	return s.form(ctx, http.MethodPost, adminFormPath(id, "activate"), nil)
}

func (s *FormsService) Archive(ctx context.Context, id string) (*models.Form, error) {
	return s.form(ctx, http.MethodPost, adminFormPath(id, "archive"), nil)
}

func (s *FormsService) Duplicate(ctx context.Context, id string) (*models.Form, error) {
	return s.form(ctx, http.MethodPost, adminFormPath(id, "duplicate"), nil)
}

func (s *FormsService) ListPublic(ctx context.Context, f models.ListFilter) (*models.Page[models.Form], error) {
	var page models.Page[models.Form]
	if err := s.c.call(ctx, http.MethodGet, "/forms/public/", f.Values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *FormsService) GetPublic(ctx context.Context, id string) (*models.Form, error) {
	return s.form(ctx, http.MethodGet, "/forms/public/"+url.PathEscape(id)+"/", nil)
}

func (s *FormsService) form(ctx context.Context, method, path string, in any) (*models.Form, error) {
	var f models.Form
	if err := s.c.call(ctx, method, path, nil, in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
