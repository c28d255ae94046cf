// Package course contains the course record model, its shallow-merge rule and
// the request schemas used to accept records from clients.
package course

import (
	"encoding/json"
	"math"
)

// Field names shared by the schemas and the store.
const (
	FieldCourseID    = "courseId"
	FieldName        = "name"
	FieldCredits     = "credits"
	FieldInstructors = "instructors"
)

// Course is a single course record. Only courseId is structurally required;
// every other field is kept exactly as accepted.
type Course map[string]any

// ID returns the record's courseId. ok is false when the field is missing or
// not an integral number.
func (c Course) ID() (id int, ok bool) {
	return toInt(c[FieldCourseID])
}

// Clone returns a shallow copy of c.
func (c Course) Clone() Course {
	out := make(Course, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a new record holding base's fields overwritten by patch's.
// Nested values are not merged; a patch value always replaces the original,
// including zero values such as 0 or "".
func Merge(base, patch Course) Course {
	out := make(Course, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		// float64(MaxInt) rounds up to -MinInt, so the upper bound is exclusive.
		if n != math.Trunc(n) || n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return toInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	default:
		return 0, false
	}
}
