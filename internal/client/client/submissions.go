package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
)

// SubmissionsService wraps the client and admin submission endpoints.
type SubmissionsService struct {
	c *Client
}

// Create uploads a submission as multipart/form-data: the form id, the
// answers as JSON and one part per attached file.
func (s *SubmissionsService) Create(ctx context.Context, n models.NewSubmission) (*models.Submission, error) {
	body, contentType, err := encodeSubmission(n)
	if err != nil {
		return nil, err
	}
	var out models.Submission
	ex := execution{
		method:      http.MethodPost,
		path:        "/submissions/",
		body:        body,
		contentType: contentType,
		out:         &out,
	}
	if err := s.c.do(ctx, ex); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SubmissionsService) ListMine(ctx context.Context, f models.ListFilter) (*models.Page[models.Submission], error) {
	return s.list(ctx, "/submissions/", f)
}

func (s *SubmissionsService) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.one(ctx, http.MethodGet, "/submissions/"+url.PathEscape(id)+"/", nil)
}

func (s *SubmissionsService) ListAll(ctx context.Context, f models.ListFilter) (*models.Page[models.Submission], error) {
	return s.list(ctx, "/submissions/admin/", f)
}

func (s *SubmissionsService) GetAdmin(ctx context.Context, id string) (*models.Submission, error) {
	return s.one(ctx, http.MethodGet, "/submissions/admin/"+url.PathEscape(id)+"/", nil)
}

func (s *SubmissionsService) UpdateStatus(ctx context.Context, id string, upd models.StatusUpdate) (*models.Submission, error) {
	return s.one(ctx, http.MethodPatch, "/submissions/admin/"+url.PathEscape(id)+"/", upd)
}

func (s *SubmissionsService) Stats(ctx context.Context) (*models.SubmissionStats, error) {
	var st models.SubmissionStats
	if err := s.c.call(ctx, http.MethodGet, "/submissions/admin/stats/", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SubmissionsService) list(ctx context.Context, path string, f models.ListFilter) (*models.Page[models.Submission], error) {
	var page models.Page[models.Submission]
	if err := s.c.call(ctx, http.MethodGet, path, f.Values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *SubmissionsService) one(ctx context.Context, method, path string, in any) (*models.Submission, error) {
	var sub models.Submission
	if err := s.c.call(ctx, method, path, nil, in, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
