package rules

import (
	"stlcat/internal/field"
	"stlcat/internal/tokenize"
)

// Finding is one derived field value with its provenance.
type Finding struct {
	Value field.Value
	// Delta is the confidence contribution this finding made.
	Delta float64
	// Rules lists the rule identifiers that produced the value.
	Rules []string
	// Warnings are the diagnostics attached to this field.
	Warnings []Warning
}

// Result is the classification output for one Variant record.
type Result struct {
	// Fields maps each derived field to its finding. Absent keys were not
	// touched by any pass; an explicit Unknown value records a conflict.
	Fields map[field.Key]Finding
	// Warnings holds record-level diagnostics not tied to a single field.
	Warnings []Warning
	// Residual lists tokens that matched no vocabulary entry and no
	// structural pattern, in stream order.
	Residual []string
	// Leftover holds every token the passes did not consume, including
	// those that resolve only in matcher domains (unit, franchise,
	// character, collection). Context matchers score against these.
	Leftover []tokenize.Token
	// Confidence is the per-record accumulator value.
	Confidence float64
	// VocabVersion is the vocabulary snapshot version the result was
	// computed against.
	VocabVersion int
}

// Values flattens the findings into a plain field map, dropping provenance.
func (r Result) Values() field.Values {
	out := make(field.Values, len(r.Fields))
	for key, finding := range r.Fields {
		out[key] = finding.Value
	}
	return out
}

// AllWarnings returns field and record warnings together, field warnings
// first in field key order.
func (r Result) AllWarnings() []Warning {
	var out []Warning
	for _, key := range field.AllKeys() {
		if finding, ok := r.Fields[key]; ok {
			out = append(out, finding.Warnings...)
		}
	}
	return append(out, r.Warnings...)
}

func (r *Result) setField(key field.Key, value field.Value, delta float64, rules ...string) {
	finding := r.Fields[key]
	finding.Value = value
	finding.Delta += delta
	finding.Rules = append(finding.Rules, rules...)
	r.Fields[key] = finding
}

func (r *Result) warnField(key field.Key, warning Warning) {
	finding := r.Fields[key]
	finding.Warnings = append(finding.Warnings, warning)
	r.Fields[key] = finding
}

func (r *Result) warnRecord(warning Warning) {
	r.Warnings = append(r.Warnings, warning)
}
