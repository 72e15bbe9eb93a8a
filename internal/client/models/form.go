package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type FormStatus string

const (
	FormDraft    FormStatus = "draft"
	FormActive   FormStatus = "active"
	FormArchived FormStatus = "archived"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
)

var fieldTypes = map[FieldType]struct{}{
	FieldText: {}, FieldTextarea: {}, FieldEmail: {}, FieldPhone: {}, FieldNumber: {},
	FieldDate: {}, FieldSelect: {}, FieldRadio: {}, FieldCheckbox: {}, FieldFile: {},
}

func (t FieldType) Valid() bool {
	_, ok := fieldTypes[t]
	return ok
}

// HasOptions reports whether the field picks from a fixed option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckbox
}

type FormField struct {
	Name        string    `json:"name,omitempty" yaml:"name"`
	Label       string    `json:"label" yaml:"label"`
	FieldType   FieldType `json:"field_type" yaml:"field_type"`
	Required    bool      `json:"required" yaml:"required"`
	Options     []string  `json:"options,omitempty" yaml:"options"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder"`
	Order       int       `json:"order" yaml:"order"`
}

// Form is a form definition. The admin endpoints call the field list
// "fields", the public ones "schema"; FieldList returns whichever is set.
type Form struct {
	ID              string      `json:"id,omitempty" yaml:"-"`
	Title           string      `json:"title" yaml:"title"`
	Description     string      `json:"description" yaml:"description"`
	Category        string      `json:"category" yaml:"category"`
	Status          FormStatus  `json:"status,omitempty" yaml:"status"`
	Fields          []FormField `json:"fields,omitempty" yaml:"fields"`
	Schema          []FormField `json:"schema,omitempty" yaml:"-"`
	FieldCount      int         `json:"field_count,omitempty" yaml:"-"`
	SubmissionCount int         `json:"submission_count,omitempty" yaml:"-"`
	CreatedAt       *time.Time  `json:"created_at,omitempty" yaml:"-"`
}

// FieldList returns the fields sorted by Order.
func (f Form) FieldList() []FormField {
	src := f.Fields
	if len(src) == 0 {
		src = f.Schema
	}
	out := append([]FormField(nil), src...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Validate runs the checks the backend would reject anyway, so a bad
// definition fails before a round trip.
func (f *Form) Validate() error {
	if f.Title == "" {
		return fmt.Errorf("%w: form title is required", ErrInvalidForm)
	}
	if len(f.Fields) == 0 {
		return fmt.Errorf("%w: at least one field is required", ErrInvalidForm)
	}
	for i := range f.Fields {
		fld := &f.Fields[i]
		if fld.Label == "" {
			return fmt.Errorf("%w: field %d has no label", ErrInvalidForm, i)
		}
		if fld.FieldType == "" {
			fld.FieldType = FieldText
		}
		if !fld.FieldType.Valid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidForm, fld.Label, fld.FieldType)
		}
		if fld.FieldType.HasOptions() && len(fld.Options) == 0 {
			return fmt.Errorf("%w: field %q needs options", ErrInvalidForm, fld.Label)
		}
		fld.Order = i
	}
	if f.Category == "" {
		f.Category = "general"
	}
	if f.Status == "" {
		f.Status = FormDraft
	}
	return nil
}

// FormRef is a submission's form: an id in list views, an object in details.
type FormRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

func (r *FormRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*r = FormRef{ID: id}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*r = FormRef{ID: n.String()}
		return nil
	}
	type plain FormRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("form reference: %w", err)
	}
	*r = FormRef(p)
	return nil
}
