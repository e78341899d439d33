package logbook

import (
	"strconv"
	"strings"
)

// FieldDelimiter separates fields within a record line
const FieldDelimiter = ","

// Header is the first line of the record file, naming the six columns in
// the order they are written
const Header = "Agent,Time,Method,Resource,Version,Status"

// NumFields is the number of columns in a record line
const NumFields = 6

// TimeFormat is the timestamp layout for the Time field: ISO-8601 in UTC
// with millisecond precision, e.g. "2024-01-01T00:00:00.000Z"
const TimeFormat = "2006-01-02T15:04:05.000Z"

// LogEntry is one structured record of a completed HTTP request/response cycle
type LogEntry struct {
	Agent    string // User-Agent header, commas stripped; empty when the header is absent
	Time     string // response-completion time, TimeFormat
	Method   string // request method (GET, POST, ...)
	Resource string // raw request path including query string
	Version  string // protocol version, "HTTP/<major>.<minor>"
	Status   int    // final response status code
}

// SanitizeAgent strips the field delimiter from a User-Agent value so the
// value cannot break the record's column structure. This is the only
// sanitization applied to any field: the remaining fields are trusted to be
// delimiter-free, so a delimiter smuggled into the request target would skew
// that line's columns.
func SanitizeAgent(agent string) string {
	return strings.ReplaceAll(agent, FieldDelimiter, "")
}

// Line serializes the entry into a single record line, delimiter-joined in
// the fixed column order named by Header. The trailing newline is not
// included.
func (e LogEntry) Line() string {
	fields := [NumFields]string{
		e.Agent,
		e.Time,
		e.Method,
		e.Resource,
		e.Version,
		strconv.Itoa(e.Status),
	}
	return strings.Join(fields[:], FieldDelimiter)
}

// ParseLine reconstructs a LogEntry from a record line by positional
// splitting: field i of the line maps to column i of the schema.
//
// The parser is deliberately lenient, trusting the append-only writer's
// guarantee that every line carries six fields: short lines yield entries
// with empty fields, and a malformed status yields zero. No line ever
// produces an error.
func ParseLine(line string) LogEntry {
	fields := strings.Split(line, FieldDelimiter)

	var entry LogEntry
	for i, value := range fields {
		switch i {
		case 0:
			entry.Agent = value
		case 1:
			entry.Time = value
		case 2:
			entry.Method = value
		case 3:
			entry.Resource = value
		case 4:
			entry.Version = value
		case 5:
			entry.Status, _ = strconv.Atoi(value)
		}
	}
	return entry
}
