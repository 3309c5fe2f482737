package validator

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestIssue_Error(t *testing.T) {
	tests := map[string]struct {
		issue Issue
		want  string
	}{
		"field and value": {
			issue: Issue{Severity: SeverityError, Field: "name", Message: "is required", Value: ""},
			want:  `error: field "name": is required (got )`,
		},
		"no field": {
			issue: Issue{Severity: SeverityWarning, Message: "has no long doc"},
			want:  "warning: has no long doc",
		},
		"unknown severity": {
			issue: Issue{Severity: Severity(9), Field: "options[0]", Message: "odd", Value: 'x'},
			want:  `unknown: field "options[0]": odd (got 120)`,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.Error())
		})
	}
}

func TestResult_Severities(t *testing.T) {
	r := &Result{}
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasWarnings())

	r.AddInfo("version", "defaulted", 1)
	r.AddWarning("short_doc", "is empty", "")
	r.AddError("name", "is required", nil)
	r.AddError("function", "is not registered", "nope")

	assert.True(t, r.HasErrors())
	assert.True(t, r.HasWarnings())
	assert.Len(t, r.Issues, 4)
	errs := r.Errors()
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "name", errs[0].Field)
		assert.Equal(t, "function", errs[1].Field)
	}
	assert.Len(t, r.Warnings(), 1)

	var none *Result
	assert.False(t, none.HasErrors())
	assert.False(t, none.HasWarnings())
	assert.Nil(t, none.Errors())
	assert.Nil(t, none.Warnings())
}

func TestResult_Err(t *testing.T) {
	r := &Result{Source: "counter.toml"}
	r.AddWarning("long_doc", "is empty", nil)
	if err := r.Err(); err != nil {
		t.Fatalf("warnings must not fail: %v", err)
	}

	r.AddError("name", "is required", "")
	err := r.Err()
	if err == nil {
		t.Fatal("Err() = nil, want error")
	}
	if !errors.Is(err, ErrFailed) {
		t.Errorf("Err() should wrap ErrFailed: %v", err)
	}
	want := `counter.toml: error: field "name": is required (got ): validation failed`
	if err.Error() != want {
		t.Errorf("Err() = %q, want %q", err.Error(), want)
	}
}

func TestResult_Merge(t *testing.T) {
	inner := &Result{}
	inner.AddError("letter", "is duplicated", "r")
	inner.AddWarning("", "has no help", nil)

	outer := &Result{}
	outer.Merge("options[1]", inner)
	outer.Merge("", &Result{Issues: []Issue{{Severity: SeverityInfo, Field: "name"}}})
	outer.Merge("ignored", nil)

	fields := make([]string, len(outer.Issues))
	for i, issue := range outer.Issues {
		fields[i] = issue.Field
	}
	want := []string{"options[1].letter", "options[1]", "name"}
	if strings.Join(fields, ",") != strings.Join(want, ",") {
		t.Errorf("fields = %v, want %v", fields, want)
	}
}

func TestSeverity_Text(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error: %v", err)
		}
		var got Severity
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error: %v", text, err)
		}
		if got != s {
			t.Errorf("round trip of %v = %v", s, got)
		}
	}
	var s Severity
	if err := s.UnmarshalText([]byte("fatal")); err == nil {
		t.Error("UnmarshalText(fatal) should fail")
	}
}
