package school

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

// Kinds
const (
	KindStudent    Kind = "student"
	KindTeacher    Kind = "teacher"
	KindAssignment Kind = "assignment"
	KindAttendance Kind = "attendance"
)

var Kinds = []Kind{KindStudent, KindTeacher, KindAssignment, KindAttendance}

var collections = map[Kind]string{
	KindStudent:    "students",
	KindTeacher:    "teachers",
	KindAssignment: "assignments",
	KindAttendance: "attendance",
}

// ParseKind accepts both the kind and its collection name, eg: "student" or "students".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if s == string(k) || s == collections[k] {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// Collection returns the plural name used for tables and URLs.
func (k Kind) Collection() string {
	return collections[k]
}

func (k Kind) String() string { return string(k) }

// Shared record fields
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// IsReserved reports whether field is owned by the store (identity & timestamps).
func IsReserved(field string) bool {
	return field == FieldID || field == FieldCreatedAt || field == FieldUpdatedAt
}

// Record is one Student, Teacher, ... as a plain field mapping.
// Domain fields are opaque: only id, createdAt and updatedAt are known.
type Record map[string]interface{}

func (r Record) ID() string {
	switch id := r[FieldID].(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func (r Record) CreatedAt() time.Time { return asTime(r[FieldCreatedAt]) }

func (r Record) UpdatedAt() time.Time { return asTime(r[FieldUpdatedAt]) }

// Clone returns a deep copy of r; nested maps and slices are copied too.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]interface{}(r)).(map[string]interface{})
}

// Fields returns a copy of r without the reserved fields.
func (r Record) Fields() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if !IsReserved(k) {
			out[k] = cloneValue(v)
		}
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Record:
		return val.Clone()
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, vv := range val {
			m[k] = cloneValue(vv)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, vv := range val {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

// CloneAll deep-copies a listing.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
