package workshop

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// SeverityWarning marks a problem that left the affected mod usable.
	SeverityWarning Severity = "warning"
	// SeveritySkipped marks a mod that was excluded from the result.
	SeveritySkipped Severity = "skipped"
)

// Diagnostic codes.
const (
	CodeUnreadableDir      = "unreadable_dir"
	CodeNoModInfo          = "no_mod_info"
	CodeUnreadableModInfo  = "unreadable_mod_info"
	CodeInvalidEncoding    = "invalid_encoding"
	CodeMissingName        = "missing_name"
	CodeMissingDescription = "missing_description"
	CodeMissingID          = "missing_id"
	CodeDuplicateName      = "duplicate_name"
	CodeStaleSelection     = "stale_selection"
)

type (
	// Severity classifies a Diagnostic.
	Severity string

	// Diagnostic is a non-fatal problem found while scanning or resolving.
	// Diagnostics are returned to callers instead of aborting the pass.
	Diagnostic struct {
		Severity   Severity
		Code       string
		Message    string
		WorkshopID string
		Path       string
		Cause      error
	}
)

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Severity))
	b.WriteString(": ")
	if d.WorkshopID != "" {
		fmt.Fprintf(&b, "[%s] ", d.WorkshopID)
	}
	b.WriteString(d.Message)
	if d.Path != "" {
		fmt.Fprintf(&b, " (%s)", d.Path)
	}
	if d.Cause != nil {
		fmt.Fprintf(&b, ": %v", d.Cause)
	}
	return b.String()
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// Skipped counts diagnostics that excluded a mod.
func (ds Diagnostics) Skipped() int {
	n := 0
	for _, d := range ds {
		if d.Severity == SeveritySkipped {
			n++
		}
	}
	return n
}

// CountByCode groups diagnostics by code.
func (ds Diagnostics) CountByCode() map[string]int {
	counts := make(map[string]int)
	for _, d := range ds {
		counts[d.Code]++
	}
	return counts
}

// Reasons renders the code counts as "code xN, ..." sorted by code.
func (ds Diagnostics) Reasons() string {
	counts := ds.CountByCode()
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s x%d", code, counts[code]))
	}
	return strings.Join(parts, ", ")
}
