package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxTicketSequence is the largest daily sequence a six-digit suffix can carry.
const MaxTicketSequence = 999999

const ticketDateLayout = "20060102"

// TicketNumber is the parsed form of YYYYMMDD-E{nn}-R{nn}-{nnnnnn}.
type TicketNumber struct {
	Date     time.Time
	Ordinals Ordinals
	Sequence int
}

// TicketPrefix returns the date+establishment+register prefix, trailing dash included.
func TicketPrefix(day time.Time, o Ordinals) string {
	return fmt.Sprintf("%s-E%02d-R%02d-", day.Format(ticketDateLayout), o.Establishment, o.Register)
}

// Prefix returns the shared prefix of every number issued for the same register and day.
func (n TicketNumber) Prefix() string {
	return TicketPrefix(n.Date, n.Ordinals)
}

func (n TicketNumber) String() string {
	return fmt.Sprintf("%s%06d", n.Prefix(), n.Sequence)
}

// ParseTicketNumber parses a persisted ticket number.
func ParseTicketNumber(s string) (TicketNumber, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 4 || !strings.HasPrefix(parts[1], "E") || !strings.HasPrefix(parts[2], "R") {
		return TicketNumber{}, fmt.Errorf("malformed ticket number %q", s)
	}

	day, err := time.Parse(ticketDateLayout, parts[0])
	if err != nil {
		return TicketNumber{}, fmt.Errorf("ticket number %q: date: %w", s, err)
	}
	est, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return TicketNumber{}, fmt.Errorf("ticket number %q: establishment ordinal: %w", s, err)
	}
	reg, err := strconv.Atoi(parts[2][1:])
	if err != nil {
		return TicketNumber{}, fmt.Errorf("ticket number %q: register ordinal: %w", s, err)
	}
	seq, err := ParseSequenceSuffix(parts[3])
	if err != nil {
		return TicketNumber{}, fmt.Errorf("ticket number %q: %w", s, err)
	}

	return TicketNumber{
		Date:     day,
		Ordinals: Ordinals{Establishment: est, Register: reg},
		Sequence: seq,
	}, nil
}

// ParseSequenceSuffix parses the zero-padded daily sequence.
func ParseSequenceSuffix(s string) (int, error) {
	if len(s) != 6 {
		return 0, fmt.Errorf("sequence %q must have 6 digits", s)
	}
	seq, err := strconv.Atoi(s)
	if err != nil || seq < 1 {
		return 0, fmt.Errorf("invalid sequence %q", s)
	}
	return seq, nil
}

// BusinessDay returns the calendar day of t in loc, as midnight UTC.
func BusinessDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the [start, end) instants of the calendar day in loc.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
