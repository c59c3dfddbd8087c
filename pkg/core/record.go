package core

import (
	"regexp"
	"strings"
)

// recordIDPattern matches a record id such as person:tobie.
var recordIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+:[a-zA-Z0-9_]+$`)

// IsRecordID reports whether s has the table:id shape of a record id.
func IsRecordID(s string) bool {
	return recordIDPattern.MatchString(s)
}

// RecordTable returns the table part of a record id, or false when s is
// not a record id.
func RecordTable(s string) (string, bool) {
	if !IsRecordID(s) {
		return "", false
	}
	table, _, _ := strings.Cut(s, ":")
	return table, true
}
