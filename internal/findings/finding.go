package findings

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Severity of a single occurrence. An empty Severity means "unset"; every reporter
// decides on its own default for it.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// MetadataKey is the reserved Report entry that carries scan metadata instead of a rule.
const MetadataKey = "metadata"

// Rank orders severities: error > warning > note > unset.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityNote:
		return 1
	default:
		return 0
	}
}

// Or returns s, or fallback when s is unset.
func (s Severity) Or(fallback Severity) Severity {
	if s == "" {
		return fallback
	}
	return s
}

// Highest returns the most severe of the given severities, or "" for none.
func Highest(severities ...Severity) Severity {
	var top Severity
	for _, s := range severities {
		if s.Rank() > top.Rank() {
			top = s
		}
	}
	return top
}

// Occurrence is one concrete rule violation at a file/line.
type Occurrence struct {
	File      string                 `json:"file"`
	StartLine int                    `json:"startLine"`
	EndLine   int                    `json:"endLine"`
	Message   string                 `json:"message"`
	Severity  Severity               `json:"severity,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Normalize fills EndLine from StartLine when it was left empty.
func (o Occurrence) Normalize() Occurrence {
	if o.EndLine < o.StartLine {
		o.EndLine = o.StartLine
	}
	return o
}

// Finding is a rule's aggregated occurrences plus its descriptive metadata.
type Finding struct {
	RuleID           string       `json:"ruleId"`
	Name             string       `json:"name"`
	ShortDescription string       `json:"shortDescription"`
	LongDescription  string       `json:"longDescription"`
	Occurrences      []Occurrence `json:"files"`
}

// SeverityCounts tallies occurrences per severity.
type SeverityCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Notes    int `json:"notes"`
}

// Total returns the number of counted occurrences.
func (c SeverityCounts) Total() int {
	return c.Errors + c.Warnings + c.Notes
}

// Highest returns the most severe bucket with at least one occurrence.
func (c SeverityCounts) Highest() Severity {
	switch {
	case c.Errors > 0:
		return SeverityError
	case c.Warnings > 0:
		return SeverityWarning
	case c.Notes > 0:
		return SeverityNote
	default:
		return ""
	}
}

// Add merges other into c.
func (c SeverityCounts) Add(other SeverityCounts) SeverityCounts {
	return SeverityCounts{
		Errors:   c.Errors + other.Errors,
		Warnings: c.Warnings + other.Warnings,
		Notes:    c.Notes + other.Notes,
	}
}

// CountBySeverity tallies occurrences, treating unset severities as fallback.
func CountBySeverity(occurrences []Occurrence, fallback Severity) SeverityCounts {
	var counts SeverityCounts
	for _, o := range occurrences {
		switch o.Severity.Or(fallback) {
		case SeverityError:
			counts.Errors++
		case SeverityWarning:
			counts.Warnings++
		case SeverityNote:
			counts.Notes++
		}
	}
	return counts
}

// Metadata is the reserved report entry describing the scan itself.
type Metadata struct {
	ScanID      string    `json:"scanId,omitempty"`
	Path        string    `json:"path"`
	GeneratedAt time.Time `json:"generatedAt"`
	ToolVersion string    `json:"toolVersion,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	Commit      string    `json:"commit,omitempty"`
}

// Report maps rule ids to findings and carries the reserved metadata entry.
type Report struct {
	Findings map[string]*Finding
	Metadata Metadata
}

// NewReport creates an empty report for the given scan root.
func NewReport(rootPath string, generatedAt time.Time) *Report {
	return &Report{
		Findings: make(map[string]*Finding),
		Metadata: Metadata{
			Path:        rootPath,
			GeneratedAt: generatedAt,
		},
	}
}

// Add merges a finding into the report. Occurrences of an already known rule id are
// appended; descriptive fields of the first finding win.
func (r *Report) Add(f Finding) {
	if f.RuleID == "" || f.RuleID == MetadataKey {
		return
	}
	occurrences := make([]Occurrence, 0, len(f.Occurrences))
	for _, o := range f.Occurrences {
		occurrences = append(occurrences, o.Normalize())
	}

	existing, ok := r.Findings[f.RuleID]
	if !ok {
		f.Occurrences = occurrences
		r.Findings[f.RuleID] = &f
		return
	}
	existing.Occurrences = append(existing.Occurrences, occurrences...)
}

// RuleIDs returns every rule id in the report in lexical order; the metadata entry is
// never part of it.
func (r *Report) RuleIDs() []string {
	ids := make([]string, 0, len(r.Findings))
	for id := range r.Findings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rules returns findings ordered by rule id.
func (r *Report) Rules() []*Finding {
	out := make([]*Finding, 0, len(r.Findings))
	for _, id := range r.RuleIDs() {
		out = append(out, r.Findings[id])
	}
	return out
}

// Counts tallies every occurrence of every rule with the given fallback severity.
func (r *Report) Counts(fallback Severity) SeverityCounts {
	var total SeverityCounts
	for _, f := range r.Findings {
		total = total.Add(CountBySeverity(f.Occurrences, fallback))
	}
	return total
}

// MarshalJSON flattens the report into a single object keyed by rule id plus the
// reserved "metadata" entry.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Findings)+1)
	for id, f := range r.Findings {
		out[id] = f
	}
	out[MetadataKey] = r.Metadata
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Findings = make(map[string]*Finding, len(raw))
	for key, value := range raw {
		if key == MetadataKey {
			if err := json.Unmarshal(value, &r.Metadata); err != nil {
				return fmt.Errorf("failed to decode report metadata: %w", err)
			}
			continue
		}
		var f Finding
		if err := json.Unmarshal(value, &f); err != nil {
			return fmt.Errorf("failed to decode finding %q: %w", key, err)
		}
		r.Findings[key] = &f
	}
	return nil
}
