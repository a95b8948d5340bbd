package compliance

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Engine evaluates documents against the static rule set. It never mutates
// record state and is safe for concurrent use.
type Engine struct {
	rules RuleSet
	clock func() time.Time
}

// NewEngine constructs an Engine over the given rule set.
func NewEngine(rules RuleSet) *Engine {
	return &Engine{
		rules: rules,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the time source. Test hook.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// RequiredDocuments returns the ordered requirement list for a category.
// Unknown categories require nothing.
func (e *Engine) RequiredDocuments(category Category) []DocumentType {
	required := e.rules.Requirements[category]
	out := make([]DocumentType, len(required))
	copy(out, required)
	return out
}

// Validate checks a record against its type's validity rule. Every violation
// is accumulated; the caller gets the complete list in one pass.
func (e *Engine) Validate(record DocumentRecord) (bool, []string) {
	rule, ok := e.rules.Rules[record.Type]
	if !ok {
		return false, []string{fmt.Sprintf("unknown document type %q", record.Type)}
	}

	var violations []string
	ext := strings.ToLower(filepath.Ext(record.FileName))
	if !containsExtension(rule.AllowedExtensions, ext) {
		violations = append(violations, fmt.Sprintf("extension %q not allowed for %s (allowed: %s)",
			ext, record.Type, strings.Join(rule.AllowedExtensions, ", ")))
	}
	if rule.MaxSizeBytes > 0 && record.SizeBytes > rule.MaxSizeBytes {
		violations = append(violations, fmt.Sprintf("file size %d exceeds limit %d bytes", record.SizeBytes, rule.MaxSizeBytes))
	}
	if rule.Expires {
		cutoff := e.clock().AddDate(0, -rule.MaxAgeMonths, 0)
		if record.UploadedAt.Before(cutoff) {
			violations = append(violations, fmt.Sprintf("document older than %d months", rule.MaxAgeMonths))
		}
	}
	return len(violations) == 0, violations
}

// CheckCompleteness verifies that every required document type for the
// category has exactly one approved record passing Validate. Types with no
// record at all land in Missing; types whose records exist but are not
// approved-and-valid land in Invalid.
func (e *Engine) CheckCompleteness(category Category, records []DocumentRecord) CompletenessResult {
	byType := make(map[DocumentType][]DocumentRecord)
	for _, record := range records {
		byType[record.Type] = append(byType[record.Type], record)
	}

	result := CompletenessResult{
		Missing: []DocumentType{},
		Invalid: []DocumentType{},
	}
	for _, required := range e.RequiredDocuments(category) {
		candidates := byType[required]
		if len(candidates) == 0 {
			result.Missing = append(result.Missing, required)
			continue
		}
		satisfied := 0
		for _, candidate := range candidates {
			if candidate.Status != StatusApproved {
				continue
			}
			if ok, _ := e.Validate(candidate); ok {
				satisfied++
			}
		}
		if satisfied != 1 {
			result.Invalid = append(result.Invalid, required)
		}
	}
	result.Complete = len(result.Missing) == 0 && len(result.Invalid) == 0
	return result
}

func containsExtension(allowed []string, ext string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}
