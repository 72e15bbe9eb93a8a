package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"gopkg.in/yaml.v3"
)

// AdminForms lists every form regardless of status, or only those in status.
func (a *App) AdminForms(ctx context.Context, status string) error {
	if err := a.allow(models.RoleAdmin); err != nil {
		return err
	}
	switch models.FormStatus(status) {
	case "", "all", models.FormDraft, models.FormActive, models.FormArchived:
	default:
		return fmt.Errorf("%w: unknown form status %q", models.ErrInvalidForm, status)
	}

	page, err := a.forms.List(ctx, models.ListFilter{Status: status})
	if err != nil {
		return err
	}
	if len(page.Results) == 0 {
		fmt.Fprintln(a.out, "No forms found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tFIELDS\tSUBMISSIONS")
	for _, f := range page.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", f.ID, f.Title, f.Status, fieldCount(f), f.SubmissionCount)
	}
	return tw.Flush()
}

// loadForm reads a form definition from a JSON or YAML file.
func loadForm(path string) (*models.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f models.Form
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateForm uploads the definition in path. New forms start as drafts
// unless the file says otherwise.
func (a *App) CreateForm(ctx context.Context, path string) error {
	if err := a.allow(models.RoleAdmin); err != nil {
		return err
	}
	f, err := loadForm(path)
	if err != nil {
		return err
	}
	created, err := a.forms.Create(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created form %q (id %s, status %s).\n", created.Title, created.ID, created.Status)
	return nil
}

// FormAction applies a lifecycle action to form id: activate, archive,
// duplicate or delete-form.
func (a *App) FormAction(ctx context.Context, action, id string) error {
	if err := a.allow(models.RoleAdmin); err != nil {
		return err
	}

	var (
		f   *models.Form
		err error
	)
	switch action {
	case "activate":
		f, err = a.forms.Activate(ctx, id)
	case "archive":
		f, err = a.forms.Archive(ctx, id)
	case "duplicate":
		f, err = a.forms.Duplicate(ctx, id)
	case "delete-form":
		if err := a.forms.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted form %s.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown form action %q", action)
	}
	if err != nil {
		return err
	}

	if action == "duplicate" {
		fmt.Fprintf(a.out, "Duplicated form %s as %q (id %s).\n", id, f.Title, f.ID)
		return nil
	}
	fmt.Fprintf(a.out, "Form %q is now %s.\n", f.Title, f.Status)
	return nil
}

func (a *App) AdminSubmissions(ctx context.Context, status string) error {
	if err := a.allow(models.RoleAdmin); err != nil {
		return err
	}
	if err := checkStatus(status); err != nil {
		return err
	}
	page, err := a.submissions.ListAll(ctx, models.ListFilter{Status: status})
	if err != nil {
		return err
	}
	return printSubmissions(a.out, page, true)
}

// Review sets a submission's status with optional notes and prints the
// updated record.
func (a *App) Review(ctx context.Context, id, status, notes string) error {
	if err := a.allow(models.RoleAdmin); err != nil {
		return err
	}
	st, err := models.ParseSubmissionStatus(status)
	if err != nil {
		return err
	}
	s, err := a.submissions.UpdateStatus(ctx, id, models.StatusUpdate{Status: st, AdminNotes: notes})
	if err != nil {
		return err
	}
	printSubmission(a.out, s)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	if err := a.allow(models.RoleAdmin); err != nil {
		return err
	}
	s, err := a.submissions.Stats(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "total\t%d\n", s.Total)
	fmt.Fprintf(tw, "pending\t%d\n", s.Pending)
	fmt.Fprintf(tw, "under review\t%d\n", s.UnderReview)
	fmt.Fprintf(tw, "reviewed\t%d\n", s.Reviewed)
	fmt.Fprintf(tw, "approved\t%d\n", s.Approved)
	fmt.Fprintf(tw, "rejected\t%d\n", s.Rejected)
	fmt.Fprintf(tw, "approval rate\t%d%%\n", s.ApprovalRate())
	return tw.Flush()
}
