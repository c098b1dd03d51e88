package core

import "strings"

// DBOrdering describes how a listing is sorted, eg: "-createdAt" => {Field: "createdAt", Ascending: false}
type DBOrdering struct {
	Field     string
	Ascending bool
}

// ParseOrdering parses a "field" / "-field" query value.
func ParseOrdering(s string) (ord DBOrdering, ok bool) {
	s = CleanString(s)
	if s == "" {
		return ord, false
	}
	ord.Ascending = true
	if strings.HasPrefix(s, "-") {
		s = s[1:]
		ord.Ascending = false
	}
	if s == "" {
		return ord, false
	}
	ord.Field = s
	return ord, true
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
