package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrInvalidForm     = errors.New("invalid form")
	ErrInvalidStatus   = errors.New("invalid submission status")
	ErrIncorrectPair   = errors.New("value must be name=value")
	ErrMissingRequired = errors.New("required fields missing")
)

type SubmissionStatus string

const (
	StatusPending     SubmissionStatus = "pending"
	StatusUnderReview SubmissionStatus = "under_review"
	StatusReviewed    SubmissionStatus = "reviewed"
	StatusApproved    SubmissionStatus = "approved"
	StatusRejected    SubmissionStatus = "rejected"
)

// SubmissionStatuses lists every status in review order.
var SubmissionStatuses = []SubmissionStatus{
	StatusPending, StatusUnderReview, StatusReviewed, StatusApproved, StatusRejected,
}

func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	for _, st := range SubmissionStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type SubmissionFile struct {
	ID               string  `json:"id"`
	FieldName        string  `json:"field_name,omitempty"`
	File             string  `json:"file"`
	OriginalFilename string  `json:"original_filename"`
	FileSizeMB       float64 `json:"file_size_mb"`
}

type Submission struct {
	ID         string           `json:"id"`
	Form       FormRef          `json:"form"`
	FormTitle  string           `json:"form_title,omitempty"`
	User       *User            `json:"user,omitempty"`
	UserName   string           `json:"user_name,omitempty"`
	UserEmail  string           `json:"user_email,omitempty"`
	Status     SubmissionStatus `json:"status"`
	Data       map[string]any   `json:"data"`
	AdminNotes string           `json:"admin_notes,omitempty"`
	ReviewedBy *User            `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	Files      []SubmissionFile `json:"files,omitempty"`
}

// Title prefers the flattened list field, then the embedded form.
func (s Submission) Title() string {
	if s.FormTitle != "" {
		return s.FormTitle
	}
	if s.Form.Title != "" {
		return s.Form.Title
	}
	return "Form Submission"
}

// Submitter names whoever filed the submission.
func (s Submission) Submitter() string {
	switch {
	case s.UserName != "":
		return s.UserName
	case s.UserEmail != "":
		return s.UserEmail
	case s.User != nil && s.User.Username != "":
		return s.User.Username
	case s.User != nil:
		return s.User.Email
	}
	return "Unknown User"
}

// StatusUpdate is the admin review payload.
type StatusUpdate struct {
	Status     SubmissionStatus `json:"status"`
	AdminNotes string           `json:"admin_notes"`
}

type SubmissionStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Reviewed    int `json:"reviewed"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}

// ApprovalRate is approved/total as a whole percentage.
func (s SubmissionStats) ApprovalRate() int {
	if s.Total == 0 {
		return 0
	}
	return s.Approved * 100 / s.Total
}

// Attachment is one file part of a new submission. The field name is the
// form field the file answers.
type Attachment struct {
	Field    string
	Filename string
	Content  io.Reader
}

// OpenAttachment opens path for upload under field. The caller closes the
// returned file once the submission is sent.
func OpenAttachment(field, path string) (Attachment, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, nil, fmt.Errorf("error opening attachment: %w", err)
	}
	return Attachment{Field: field, Filename: filepath.Base(path), Content: f}, f, nil
}

// NewSubmission is what a client sends to create a submission.
type NewSubmission struct {
	FormID string
	Data   map[string]any
	Files  []Attachment
}

// MissingRequired returns the labels of required fields with no answer.
func (n NewSubmission) MissingRequired(fields []FormField) []string {
	var missing []string
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if f.FieldType == FieldFile {
			if !n.hasFile(f.Name) {
				missing = append(missing, f.Label)
			}
			continue
		}
		v, ok := n.Data[f.Name]
		if !ok || v == nil || v == "" || v == false {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

func (n NewSubmission) hasFile(field string) bool {
	for _, a := range n.Files {
		if a.Field == field {
			return true
		}
	}
	return false
}

// DataFromPairs turns ["name=value", ...] into submission data. Only the
// first '=' separates name from value.
func DataFromPairs(s []string) (map[string]any, error) {
	data := make(map[string]any, len(s))
	for _, item := range s {
		name, value, ok := strings.Cut(item, "=")
		if !ok || name == "" {
			return nil, ErrIncorrectPair
		}
		data[name] = value
	}
	return data, nil
}
