package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
)

// ListSubmissions prints the signed-in client's submissions, optionally
// filtered by status ("all" or empty shows everything).
func (a *App) ListSubmissions(ctx context.Context, status string) error {
	if err := a.allow(models.RoleClient); err != nil {
		return err
	}
	if err := checkStatus(status); err != nil {
		return err
	}
	page, err := a.submissions.ListMine(ctx, models.ListFilter{Status: status})
	if err != nil {
		return err
	}
	return printSubmissions(a.out, page, false)
}

func (a *App) ShowSubmission(ctx context.Context, id string) error {
	if err := a.allow(models.RoleClient); err != nil {
		return err
	}
	s, err := a.submissions.Get(ctx, id)
	if err != nil {
		return err
	}
	printSubmission(a.out, s)
	return nil
}

func checkStatus(status string) error {
	if status == "" || status == "all" {
		return nil
	}
	_, err := models.ParseSubmissionStatus(status)
	return err
}

func printSubmissions(w io.Writer, page *models.Page[models.Submission], withSubmitter bool) error {
	if len(page.Results) == 0 {
		fmt.Fprintln(w, "No submissions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withSubmitter {
		fmt.Fprintln(tw, "ID\tFORM\tSUBMITTER\tSTATUS\tCREATED")
	} else {
		fmt.Fprintln(tw, "ID\tFORM\tSTATUS\tCREATED")
	}
	for _, s := range page.Results {
		created := formatTime(s.CreatedAt)
		if withSubmitter {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Title(), s.Submitter(), s.Status, created)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Title(), s.Status, created)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.HasNext() {
		fmt.Fprintf(w, "Showing %d of %d.\n", len(page.Results), page.Count)
	}
	return nil
}

func printSubmission(w io.Writer, s *models.Submission) {
	fmt.Fprintf(w, "%s [%s]\n", s.Title(), s.ID)
	fmt.Fprintf(w, "  submitted by: %s\n", s.Submitter())
	fmt.Fprintf(w, "  status:       %s\n", s.Status)
	fmt.Fprintf(w, "  created:      %s\n", formatTime(s.CreatedAt))
	if s.ReviewedAt != nil {
		by := ""
		if s.ReviewedBy != nil {
			by = " by " + s.ReviewedBy.DisplayName()
		}
		fmt.Fprintf(w, "  reviewed:     %s%s\n", formatTime(*s.ReviewedAt), by)
	}
	if s.AdminNotes != "" {
		fmt.Fprintf(w, "  notes:        %s\n", s.AdminNotes)
	}

	if len(s.Data) > 0 {
		fmt.Fprintln(w, "  answers:")
		keys := make([]string, 0, len(s.Data))
		for k := range s.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "    %s: %s\n", k, formatValue(s.Data[k]))
		}
	}
	if len(s.Files) > 0 {
		fmt.Fprintln(w, "  files:")
		for _, f := range s.Files {
			fmt.Fprintf(w, "    %s (%.2f MB) %s\n", f.OriginalFilename, f.FileSizeMB, f.File)
		}
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ", ")
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case nil:
		return "-"
	}
	return fmt.Sprint(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
