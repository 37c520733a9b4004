// Package input normalises a raw labelled record (as posted by a form or read
// from a JSON file) into typed values. Each accessor applies one field policy;
// the first failure is kept and every later call becomes a no-op, so a
// calculator either gets a fully valid input or a single ValidationError.
package input

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/astrobsm/criticalcare/internal/platform/clinical"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Record is a flat map of labelled raw values.
type Record map[string]interface{}

// Reader reads fields from a Record with fail-fast error capture.
type Reader struct {
	rec Record
	err error
}

func NewReader(rec Record) *Reader {
	if rec == nil {
		rec = Record{}
	}
	return &Reader{rec: rec}
}

// Err returns the first validation failure, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(field, format string, args ...interface{}) {
	if r.err == nil {
		r.err = result.Invalid(field, format, args...)
	}
}

// Has reports whether the field is present and non-empty.
func (r *Reader) Has(field string) bool {
	v, ok := r.rec[field]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Required reads a number that must be present, parsable and within [min,max].
func (r *Reader) Required(field string, min, max float64) float64 {
	if r.err != nil {
		return 0
	}
	if !r.Has(field) {
		r.fail(field, "is required")
		return 0
	}
	v, ok := number(r.rec[field])
	if !ok {
		r.fail(field, "must be a number")
		return 0
	}
	if v < min || v > max {
		r.fail(field, "must be between %s and %s", fmtNum(min), fmtNum(max))
		return 0
	}
	return v
}

// Coerced reads an optional number. Missing or unparsable values become 0;
// a parsed value outside [min,max] is rejected.
func (r *Reader) Coerced(field string, min, max float64) float64 {
	if r.err != nil || !r.Has(field) {
		return 0
	}
	v, ok := number(r.rec[field])
	if !ok {
		return 0
	}
	if v < min || v > max {
		r.fail(field, "must be between %s and %s", fmtNum(min), fmtNum(max))
		return 0
	}
	return v
}

// CoercedInt reads an optional whole number with the same coercion as
// Coerced. A parsed fractional value is rejected.
func (r *Reader) CoercedInt(field string, min, max int) int {
	v := r.Coerced(field, float64(min), float64(max))
	if r.err != nil {
		return 0
	}
	if v != math.Trunc(v) {
		r.fail(field, "must be a whole number")
		return 0
	}
	return int(v)
}

// Int reads a required whole number within [min,max].
func (r *Reader) Int(field string, min, max int) int {
	v := r.Required(field, float64(min), float64(max))
	if r.err != nil {
		return 0
	}
	if v != math.Trunc(v) {
		r.fail(field, "must be a whole number")
		return 0
	}
	return int(v)
}

// Bool reads a flag; anything unrecognised is false.
func (r *Reader) Bool(field string) bool {
	switch v := r.rec[field].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "on", "1":
			return true
		}
	}
	return false
}

// Enum reads one of the allowed values (case-insensitive). Missing yields def.
func (r *Reader) Enum(field, def string, allowed ...string) string {
	if r.err != nil {
		return def
	}
	if !r.Has(field) {
		return def
	}
	s, ok := r.rec[field].(string)
	if !ok {
		r.fail(field, "must be one of %s", strings.Join(allowed, ", "))
		return def
	}
	s = clinical.Normalize(s)
	for _, a := range allowed {
		if s == a {
			return a
		}
	}
	r.fail(field, "must be one of %s", strings.Join(allowed, ", "))
	return def
}

// RequiredEnum is Enum without a default.
func (r *Reader) RequiredEnum(field string, allowed ...string) string {
	if r.err == nil && !r.Has(field) {
		r.fail(field, "is required")
		return ""
	}
	return r.Enum(field, "", allowed...)
}

// Set reads a list of identifiers given as an array or a comma separated string.
func (r *Reader) Set(field string) clinical.Set {
	switch v := r.rec[field].(type) {
	case []string:
		return clinical.NewSet(v...)
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
		return clinical.NewSet(items...)
	case string:
		return clinical.NewSet(strings.Split(v, ",")...)
	}
	return clinical.Set{}
}

// Amount is one named quantity of an Amounts field.
type Amount struct {
	Name  string
	Value float64
}

// Amounts reads a map of name to non-negative number, sorted by name so that
// downstream arithmetic and output are deterministic.
func (r *Reader) Amounts(field string, max float64) []Amount {
	if r.err != nil || !r.Has(field) {
		return nil
	}
	m, ok := r.rec[field].(map[string]interface{})
	if !ok {
		r.fail(field, "must be an object of name to number")
		return nil
	}
	out := make([]Amount, 0, len(m))
	seen := make(map[string]string, len(m))
	for name, raw := range m {
		key := clinical.Normalize(name)
		if prev, dup := seen[key]; dup {
			r.fail(field+"."+key, "is given more than once (%q and %q)", prev, name)
			return nil
		}
		seen[key] = name
		v, ok := number(raw)
		if !ok {
			r.fail(field+"."+name, "must be a number")
			return nil
		}
		if v < 0 || v > max {
			r.fail(field+"."+name, "must be between 0 and %s", fmtNum(max))
			return nil
		}
		out = append(out, Amount{Name: key, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func number(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func fmtNum(f float64) string {
	if math.IsInf(f, 1) {
		return "infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
