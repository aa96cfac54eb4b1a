// Package tabular parses delimited text (TSV and CSV) into header-keyed
// records. Parsing is deliberately lenient: short lines pad with empty
// strings, malformed quoting never fails, and an input without a header
// plus at least one data line yields no records.
package tabular

import "strings"

// Delimiter selects the field-splitting mode.
type Delimiter int

const (
	// Tab splits fields on tab characters with no quoting or escaping.
	Tab Delimiter = iota
	// Comma splits fields on commas, honoring double-quoted fields that
	// may contain embedded commas.
	Comma
)

// Record maps a header name to the raw field value for one data line.
type Record map[string]string

// Value returns the trimmed value for the named field, or "" when absent.
func (r Record) Value(name string) string {
	return strings.TrimSpace(r[name])
}

// Parse converts raw delimited text into one Record per non-header line.
// The first non-empty line supplies the field names. Lines with fewer
// fields than headers map the missing trailing fields to empty strings;
// surplus fields are dropped.
func Parse(text string, delim Delimiter) []Record {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil
	}

	headers := splitFields(lines[0], delim)
	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line, delim)
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				rec[h] = fields[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// Header returns the field names from the first non-empty line of text,
// in column order. Returns nil when the input has no non-empty lines.
func Header(text string, delim Delimiter) []string {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}
	return splitFields(lines[0], delim)
}

// splitLines breaks text into non-empty lines under any newline convention.
func splitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func splitFields(line string, delim Delimiter) []string {
	if delim == Tab {
		return strings.Split(line, "\t")
	}
	return splitCommaFields(line)
}

// splitCommaFields parses one CSV line. A double quote opens a field that
// runs to the next quote and may contain commas; unquoted fields run to
// the next comma or end of line. An unterminated quote consumes the rest
// of the line rather than failing.
func splitCommaFields(line string) []string {
	var fields []string
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes:
			if c == '"' {
				inQuotes = false
			} else {
				buf.WriteByte(c)
			}
		case c == '"':
			inQuotes = true
		case c == ',':
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	fields = append(fields, buf.String())
	return fields
}
