package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

type FormKind string

const (
	FormLead    FormKind = "lead"
	FormProject FormKind = "project"
)

// MaxSubmissionFields bounds how many fields a single submission may carry.
const MaxSubmissionFields = 64

// FieldSpec is a declared field of a form, in display order.
type FieldSpec struct {
	Key   string
	Label string
}

// Form describes what a submission endpoint accepts.
type Form struct {
	Kind      FormKind
	Title     string
	Required  []string
	Fields    []FieldSpec
	HasStatus bool
}

var LeadForm = Form{
	Kind:     FormLead,
	Title:    "Lead",
	Required: []string{"name", "phone", "email"},
	Fields: []FieldSpec{
		{Key: "name", Label: "Name"},
		{Key: "phone", Label: "Phone"},
		{Key: "email", Label: "Email"},
		{Key: "projectType", Label: "Project Type"},
		{Key: "idea", Label: "Idea"},
		{Key: "heardAbout", Label: "Heard About Us"},
		{Key: "studyField", Label: "Field of Study"},
		{Key: "gender", Label: "Gender"},
	},
}

var ProjectForm = Form{
	Kind:     FormProject,
	Title:    "Project Request",
	Required: []string{"name", "startDate"},
	Fields: []FieldSpec{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone"},
		{Key: "projectType", Label: "Project Type"},
		{Key: "description", Label: "Description"},
		{Key: "startDate", Label: "Start Date"},
		{Key: "endDate", Label: "End Date"},
		{Key: "budget", Label: "Budget"},
	},
	HasStatus: true,
}

// FormByKind resolves a form by its kind.
func FormByKind(kind FormKind) (Form, bool) {
	switch kind {
	case FormLead:
		return LeadForm, true
	case FormProject:
		return ProjectForm, true
	}
	return Form{}, false
}

// Missing returns the required fields that are absent or blank, in
// declaration order.
func (f Form) Missing(fields map[string]string) []string {
	var missing []string
	for _, key := range f.Required {
		if strings.TrimSpace(fields[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Extra returns the submitted keys the form does not declare, sorted.
func (f Form) Extra(fields map[string]string) []string {
	declared := make(map[string]struct{}, len(f.Fields))
	for _, fs := range f.Fields {
		declared[fs.Key] = struct{}{}
	}
	var extra []string
	for k := range fields {
		if _, ok := declared[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// NormalizePayload converts a decoded JSON object into text fields.
// Strings are kept verbatim, numbers and booleans become their text form,
// nulls are dropped. Nested values and text containing NUL are rejected.
func NormalizePayload(payload map[string]any) (map[string]string, error) {
	if len(payload) > MaxSubmissionFields {
		return nil, NewValidationError("too many fields")
	}

	out := make(map[string]string, len(payload))
	var invalid, withNUL []string
	for k, v := range payload {
		if strings.ContainsRune(k, 0) {
			withNUL = append(withNUL, k)
			continue
		}
		switch val := v.(type) {
		case nil:
		case string:
			if strings.ContainsRune(val, 0) {
				withNUL = append(withNUL, k)
				continue
			}
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case json.Number:
			out[k] = val.String()
		default:
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, NewValidationError("fields must be text", invalid...)
	}
	if len(withNUL) > 0 {
		sort.Strings(withNUL)
		return nil, NewValidationError("fields must not contain NUL characters", withNUL...)
	}
	return out, nil
}
