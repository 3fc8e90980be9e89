package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DatedLayout is the exact human-readable form dated events store their
// start and end dates in.
const DatedLayout = "January 2, 2006"

// DefaultWindow is how far ahead occurrences are expanded by default.
const DefaultWindow = 6 * 30 * 24 * time.Hour

// Span is an inclusive date range during which occurrences are suspended.
type Span struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// Contains reports whether the day of t falls inside the span, inclusive on
// both ends. Only the date component participates.
func (s Span) Contains(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(truncateToDay(s.Start)) && !day.After(truncateToDay(s.End))
}

// Occurrence is a concrete calendar entry produced by expansion. Suspended
// occurrences are retained and flagged rather than omitted so consumers can
// render them distinctly.
type Occurrence struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end,omitempty"`
	AllDay    bool      `json:"all_day"`
	Suspended bool      `json:"suspended"`
	Label     string    `json:"label,omitempty"`
}

// ExpandInput bundles a recurring event's schedule for expansion.
type ExpandInput struct {
	Rule        *Rule
	Description string
	TimeOfDay   string
	Suspensions []Span
}

// Expand produces concrete occurrences between from and to. Without a
// structured rule it degrades to a single placeholder on the first day of
// next month labeled with the free-text description, rather than failing.
// Suspension spans are additionally emitted as all-day entries covering
// their range.
func Expand(in ExpandInput, from, to time.Time) []Occurrence {
	if to.Before(from) {
		to = from.Add(DefaultWindow)
	}

	var out []Occurrence
	if in.Rule == nil {
		out = append(out, Occurrence{
			Start:  firstOfNextMonth(from),
			AllDay: true,
			Label:  in.Description,
		})
	} else if rule, err := in.Rule.rrule(from, in.TimeOfDay); err == nil {
		for _, start := range rule.Between(from, to, true) {
			out = append(out, Occurrence{
				Start:     start,
				Suspended: suspended(in.Suspensions, start),
			})
		}
	} else {
		out = append(out, Occurrence{
			Start:  firstOfNextMonth(from),
			AllDay: true,
			Label:  in.Description,
		})
	}

	for _, span := range in.Suspensions {
		label := span.Reason
		if label == "" {
			label = "Suspended"
		}
		out = append(out, Occurrence{
			Start:  truncateToDay(span.Start),
			End:    truncateToDay(span.End).AddDate(0, 0, 1),
			AllDay: true,
			Label:  label,
		})
	}
	return out
}

// ExpandDated parses a dated event's start/end strings and returns the
// calendar span. The returned end is exclusive: one day past the stored end
// date, so inclusive ranges render correctly on exclusive-end grids.
func ExpandDated(startDate, endDate string) (start, endExclusive time.Time, err error) {
	start, err = time.Parse(DatedLayout, strings.TrimSpace(startDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("recurrence: invalid start date %q: %w", startDate, err)
	}

	end := start
	if strings.TrimSpace(endDate) != "" {
		end, err = time.Parse(DatedLayout, strings.TrimSpace(endDate))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("recurrence: invalid end date %q: %w", endDate, err)
		}
	}
	return start, end.AddDate(0, 0, 1), nil
}

// rrule converts the structured specification into an rrule-go rule anchored
// at from with the event's time of day applied.
func (r *Rule) rrule(from time.Time, timeOfDay string) (*rrule.RRule, error) {
	hour, minute, err := ParseClock(timeOfDay)
	if err != nil {
		hour, minute = 0, 0
	}
	dtstart := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	option := rrule.ROption{Dtstart: dtstart}
	switch r.Freq {
	case Daily:
		option.Freq = rrule.DAILY
	case Weekly:
		option.Freq = rrule.WEEKLY
		for _, day := range r.Weekdays {
			weekday, ok := rruleWeekdays[day]
			if !ok {
				return nil, fmt.Errorf("recurrence: unknown weekday %q", day)
			}
			option.Byweekday = append(option.Byweekday, weekday)
		}
		if len(option.Byweekday) == 0 {
			return nil, fmt.Errorf("recurrence: weekly rule without weekdays")
		}
	case Monthly:
		weekday, ok := rruleWeekdays[r.Weekday]
		if !ok {
			return nil, fmt.Errorf("recurrence: unknown weekday %q", r.Weekday)
		}
		if len(r.Positions) == 0 {
			return nil, fmt.Errorf("recurrence: monthly rule without positions")
		}
		option.Freq = rrule.MONTHLY
		for _, pos := range r.Positions {
			option.Byweekday = append(option.Byweekday, weekday.Nth(pos))
		}
	default:
		return nil, fmt.Errorf("recurrence: unknown frequency %q", r.Freq)
	}

	return rrule.NewRRule(option)
}

var rruleWeekdays = map[Weekday]rrule.Weekday{
	Sunday:    rrule.SU,
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
}

func suspended(spans []Span, t time.Time) bool {
	for _, span := range spans {
		if span.Contains(t) {
			return true
		}
	}
	return false
}

func firstOfNextMonth(from time.Time) time.Time {
	return time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location()).AddDate(0, 1, 0)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
