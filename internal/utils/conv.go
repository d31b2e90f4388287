package utils

import (
	"strconv"
)

// ParseID parses a positive database id from a path or form value.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// OptionalID parses an id that may be left blank, e.g. a reply's parent.
func OptionalID(s string) (*uint, bool) {
	if s == "" {
		return nil, true
	}
	id, ok := ParseID(s)
	if !ok {
		return nil, false
	}
	return &id, true
}
