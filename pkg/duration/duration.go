// Package duration parses and renders the logbook's duration grammar.
//
// The accepted form is "<N>h", "<N>min" or "<N>h<M>min", e.g. "2h",
// "15min", "1h30min". Both parts of the pattern are optional, so the
// empty string validates as zero minutes; that quirk is load-bearing
// for compatibility with existing records and is covered by tests.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
)

var pattern = regexp.MustCompile(`^(\d+h)?(\d+min)?$`)

// Validate reports whether text matches the duration grammar.
func Validate(text string) bool {
	return pattern.MatchString(text)
}

// Minutes converts a duration string to a total minute count.
// Absent groups contribute zero. Returns an error when the text does
// not match the grammar.
func Minutes(text string) (int, error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q", text)
	}

	total := 0
	if m[1] != "" {
		h, err := strconv.Atoi(m[1][:len(m[1])-1]) // strip "h"
		if err != nil {
			return 0, fmt.Errorf("invalid hours in %q: %w", text, err)
		}
		total += h * 60
	}
	if m[2] != "" {
		min, err := strconv.Atoi(m[2][:len(m[2])-3]) // strip "min"
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in %q: %w", text, err)
		}
		total += min
	}
	return total, nil
}

// Format renders a minute count back to duration text.
// With a non-zero hour component the minutes are zero-padded to two
// digits ("2h00min"); otherwise the bare minute form is used ("45min").
func Format(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dmin", h, m)
	}
	return fmt.Sprintf("%dmin", m)
}
