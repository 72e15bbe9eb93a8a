package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var errBadAnswer = errors.New("invalid answer")

// ListForms prints the active forms a client can fill in.
func (a *App) ListForms(ctx context.Context, search string) error {
	if err := a.allow(models.RoleClient); err != nil {
		return err
	}
	page, err := a.forms.ListPublic(ctx, models.ListFilter{Search: search})
	if err != nil {
		return err
	}
	if len(page.Results) == 0 {
		fmt.Fprintln(a.out, "No forms available.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tFIELDS")
	for _, f := range page.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", f.ID, f.Title, f.Category, fieldCount(f))
	}
	return tw.Flush()
}

// ShowForm prints a form and its fields in order.
func (a *App) ShowForm(ctx context.Context, id string) error {
	if err := a.allow(models.RoleClient); err != nil {
		return err
	}
	f, err := a.forms.GetPublic(ctx, id)
	if err != nil {
		return err
	}
	printForm(a.out, f)
	return nil
}

// Submit walks the user through every field of a form and sends the answers,
// uploading file fields as multipart parts.
func (a *App) Submit(ctx context.Context, formID string) error {
	if err := a.allow(models.RoleClient); err != nil {
		return err
	}
	f, err := a.forms.GetPublic(ctx, formID)
	if err != nil {
		return err
	}

	fields := f.FieldList()
	n := models.NewSubmission{FormID: f.ID, Data: map[string]any{}}
	if n.FormID == "" {
		n.FormID = formID
	}

	fmt.Fprintf(a.out, "Filling in %q. Leave an answer empty to skip it.\n", f.Title)

	if len(fields) == 0 {
		pairs, err := GetPairs(a.reader, a.out)
		if err != nil {
			return err
		}
		if n.Data, err = models.DataFromPairs(pairs); err != nil {
			return err
		}
	}

	for _, fld := range fields {
		if fld.FieldType == models.FieldFile {
			path, err := getSimpleText(a.reader, fieldPrompt(fld)+" (path to file)", a.out)
			if err != nil {
				return err
			}
			if path == "" {
				continue
			}
			att, file, err := models.OpenAttachment(fld.Name, path)
			if err != nil {
				return err
			}
			defer file.Close()
			n.Files = append(n.Files, att)
			continue
		}

		v, err := a.askField(fld)
		if err != nil {
			return err
		}
		if v != nil {
			n.Data[fld.Name] = v
		}
	}

	if missing := n.MissingRequired(fields); len(missing) > 0 {
		return fmt.Errorf("%w: %s", models.ErrMissingRequired, strings.Join(missing, ", "))
	}

	s, err := a.submissions.Create(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Submitted %q (id %s, status %s).\n", f.Title, s.ID, s.Status)
	return nil
}

// askField prompts until the answer parses or is left empty.
func (a *App) askField(fld models.FormField) (any, error) {
	for {
		raw, err := getSimpleText(a.reader, fieldPrompt(fld), a.out)
		if err != nil {
			return nil, err
		}
		v, err := parseAnswer(fld, raw)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(a.out, err)
	}
}

func fieldPrompt(f models.FormField) string {
	var b strings.Builder
	b.WriteString(f.Label)
	if f.Required {
		b.WriteString(" *")
	}
	if len(f.Options) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(f.Options, ", "))
	}
	if f.FieldType == models.FieldCheckbox && len(f.Options) > 0 {
		b.WriteString(" (comma separated)")
	}
	if f.Placeholder != "" {
		fmt.Fprintf(&b, " e.g. %s", f.Placeholder)
	}
	return b.String()
}

// parseAnswer converts raw input to the value sent for f. An empty answer
// yields nil.
func parseAnswer(f models.FormField, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch f.FieldType {
	case models.FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", errBadAnswer, f.Label)
		}
		return n, nil

	case models.FieldEmail:
		if err := validate.Var(raw, "email"); err != nil {
			return nil, fmt.Errorf("%w: %s must be an email address", errBadAnswer, f.Label)
		}
		return raw, nil

	case models.FieldDate:
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			return nil, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", errBadAnswer, f.Label)
		}
		return raw, nil

	case models.FieldSelect, models.FieldRadio:
		if !slices.Contains(f.Options, raw) {
			return nil, fmt.Errorf("%w: %s must be one of %s", errBadAnswer, f.Label, strings.Join(f.Options, ", "))
		}
		return raw, nil

	case models.FieldCheckbox:
		if len(f.Options) == 0 {
			b, err := strconv.ParseBool(yesNo(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be yes or no", errBadAnswer, f.Label)
			}
			return b, nil
		}
		var picked []string
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !slices.Contains(f.Options, p) {
				return nil, fmt.Errorf("%w: %q is not an option of %s", errBadAnswer, p, f.Label)
			}
			picked = append(picked, p)
		}
		return picked, nil
	}

	return raw, nil
}

func yesNo(s string) string {
	switch strings.ToLower(s) {
	case "y", "yes":
		return "true"
	case "n", "no":
		return "false"
	}
	return s
}

func fieldCount(f models.Form) int {
	if f.FieldCount > 0 {
		return f.FieldCount
	}
	return len(f.FieldList())
}

func printForm(w io.Writer, f *models.Form) {
	fmt.Fprintf(w, "%s [%s]\n", f.Title, f.ID)
	if f.Description != "" {
		fmt.Fprintf(w, "%s\n", f.Description)
	}
	meta := "category: " + f.Category
	if f.Status != "" {
		meta += ", status: " + string(f.Status)
	}
	fmt.Fprintln(w, meta)
	for i, fld := range f.FieldList() {
		req := ""
		if fld.Required {
			req = " *"
		}
		fmt.Fprintf(w, "  %d. %s%s (%s)", i+1, fld.Label, req, fld.FieldType)
		if len(fld.Options) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(fld.Options, ", "))
		}
		fmt.Fprintln(w)
	}
}
