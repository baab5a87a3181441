// Package dateutil turns user-friendly date patterns into Go layouts. The
// journal and report use it to name their files.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 100

// Stamp is the pattern used for run file names: 20250131_142502.
const Stamp = "YYYYMMDD_HHmmss"

// dateTokens maps tokens to Go layout parts, longest first per letter.
// Tokens are case-sensitive: MM is the month, mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"stamp":    Stamp,
}

// ParseDateFormat converts a format string to a Go time layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss.
// Bracketed text is literal: [log_]YYYY gives "log_2006".
// Other characters outside brackets are kept as they are.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Format renders t with a user-friendly format or preset name.
func Format(format string, t time.Time) (string, error) {
	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// FileName renders a file-name pattern such as
// "[conversion_log_]YYYYMMDD_HHmmss[.csv]". The result must be a bare
// file name.
func FileName(pattern string, t time.Time) (string, error) {
	name, err := Format(pattern, t)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q is not a file name", ErrInvalidDateFormat, name)
	}
	return name, nil
}

// Glob turns a file-name pattern into a filepath.Match glob matching every
// name it can render: bracketed text is kept, date parts become "*".
func Glob(pattern string) (string, error) {
	if _, err := ParseDateFormat(pattern); err != nil {
		return "", err
	}
	var b strings.Builder
	star := false
	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.Index(pattern[i+1:], "]")
			for _, r := range pattern[i+1 : i+1+end] {
				if strings.ContainsRune(`*?[\`, r) {
					b.WriteByte('\\')
				}
				b.WriteRune(r)
			}
			i += end + 2
			star = false
			continue
		}
		if !star {
			b.WriteByte('*')
			star = true
		}
		i++
	}
	return b.String(), nil
}
