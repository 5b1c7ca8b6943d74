package datemath

import (
	"fmt"
	"strings"
	"time"
)

// DayFormat is the literal layout accepted for date arguments.
const DayFormat = "2006-01-02"

// Parser resolves report date arguments in a fixed IANA timezone.
type Parser struct {
	location *time.Location
}

// NewParser creates a parser for the given IANA timezone string,
// e.g. "America/Bogota".
func NewParser(timezone string) (*Parser, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Parser{location: loc}, nil
}

// Location returns the parser's timezone.
func (p *Parser) Location() *time.Location {
	return p.location
}

// ParseDay resolves a date argument to the start of that calendar day.
// Accepted forms: "today" and a literal "YYYY-MM-DD".
func (p *Parser) ParseDay(arg string, now time.Time) (time.Time, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))

	if arg == "today" {
		return p.StartOfDay(now), nil
	}

	day, err := time.ParseInLocation(DayFormat, arg, p.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", arg, err)
	}
	return day, nil
}

// StartOfDay truncates t to midnight in the parser's timezone.
func (p *Parser) StartOfDay(t time.Time) time.Time {
	local := t.In(p.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.location)
}

// DayBounds returns the [from, to) interval covering the calendar day
// that contains t in the parser's timezone.
func (p *Parser) DayBounds(t time.Time) (time.Time, time.Time) {
	from := p.StartOfDay(t)
	return from, from.AddDate(0, 0, 1)
}
