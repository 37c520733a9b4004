// Package clinical holds the vocabulary shared by every calculator: sex,
// consciousness level and the comorbidity set carried in the input vector.
package clinical

import (
	"sort"
	"strings"
)

type Sex string

const (
	SexUnknown Sex = ""
	Male       Sex = "male"
	Female     Sex = "female"
)

// AVPU consciousness scale.
type AVPU string

const (
	Alert        AVPU = "alert"
	Voice        AVPU = "voice"
	Pain         AVPU = "pain"
	Unresponsive AVPU = "unresponsive"
)

// Comorbidities recognised by the warning rules.
const (
	Diabetes      = "diabetes"
	HeartFailure  = "heart_failure"
	CKD           = "ckd"
	LiverDisease  = "liver_disease"
	COPD          = "copd"
	Hypertension  = "hypertension"
	Pregnancy     = "pregnancy"
	Immunosupp    = "immunosuppressed"
	Anticoagulant = "anticoagulated"
)

// Set is an immutable-by-convention set of normalised identifiers.
type Set map[string]struct{}

// NewSet normalises each item (trimmed, lower case, spaces and dashes as
// underscores) and drops empty ones.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		if k := Normalize(it); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// Normalize is the key form used for every set member.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// Has reports membership; a nil set has no members.
func (s Set) Has(id string) bool {
	_, ok := s[Normalize(id)]
	return ok
}

// Any reports whether at least one of ids is present.
func (s Set) Any(ids ...string) bool {
	for _, id := range ids {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// With returns a copy of s with extra members.
func (s Set) With(ids ...string) Set {
	out := make(Set, len(s)+len(ids))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, id := range ids {
		if k := Normalize(id); k != "" {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
