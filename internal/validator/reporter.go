package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format selects how a Reporter renders results.
type Format string

const (
	// FormatText renders colored text for a terminal.
	FormatText Format = "text"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
)

// maxValueLen bounds the offending value printed after an issue.
const maxValueLen = 50

var (
	boldText  = color.New(color.Bold)
	dimText   = color.New(color.FgHiBlack)
	errText   = color.New(color.FgRed)
	warnText  = color.New(color.FgYellow)
	passText  = color.New(color.FgGreen)
	issueText = map[Severity]*color.Color{SeverityError: errText, SeverityWarning: warnText}
)

// Reporter writes validation results to out.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter returns a Reporter writing format to out.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{out: out, format: format}
}

// Report writes one result. A nil result writes nothing.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}
	if r.format == FormatJSON {
		return r.writeJSON(result)
	}
	r.writeText(result)
	return nil
}

// ReportAll writes several results. JSON output is a single array; text
// output prints each result under its source.
func (r *Reporter) ReportAll(results []*Result) error {
	if r.format == FormatJSON {
		return r.writeJSON(results)
	}
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.Source != "" {
			boldText.Fprintln(r.out, result.Source)
		}
		r.writeText(result)
	}
	return nil
}

func (r *Reporter) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding JSON report")
}

func (r *Reporter) writeText(result *Result) {
	errs, warns := result.Errors(), result.Warnings()
	switch {
	case len(errs) > 0:
		parts := []string{errText.Sprintf("%d error(s)", len(errs))}
		if len(warns) > 0 {
			parts = append(parts, warnText.Sprintf("%d warning(s)", len(warns)))
		}
		fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(parts, ", "))
	case len(warns) > 0:
		passText.Fprintln(r.out, "✓ Validation passed with warnings")
	default:
		passText.Fprintln(r.out, "✓ Validation passed")
		return
	}
	r.writeSection("Errors:", errs)
	r.writeSection("Warnings:", warns)
}

func (r *Reporter) writeSection(title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(r.out, title)
	for _, issue := range issues {
		fmt.Fprintln(r.out, formatIssue(issue))
	}
	fmt.Fprintln(r.out)
}

// formatIssue renders "  • field: message (k=v, ...) [value]".
func formatIssue(issue Issue) string {
	var sb strings.Builder
	sb.WriteString("  • ")
	if issue.Field != "" {
		c := issueText[issue.Severity]
		if c == nil {
			c = dimText
		}
		sb.WriteString(c.Sprint(issue.Field))
		sb.WriteString(": ")
	}
	sb.WriteString(issue.Message)

	if len(issue.Context) > 0 {
		pairs := make([]string, 0, len(issue.Context))
		for _, k := range slices.Sorted(maps.Keys(issue.Context)) {
			pairs = append(pairs, k+"="+issue.Context[k])
		}
		sb.WriteString(" ")
		sb.WriteString(dimText.Sprintf("(%s)", strings.Join(pairs, ", ")))
	}
	if issue.Value != nil {
		val := fmt.Sprint(issue.Value)
		if len(val) > maxValueLen {
			val = val[:maxValueLen-3] + "..."
		}
		sb.WriteString(dimText.Sprintf(" [%s]", val))
	}
	return sb.String()
}
