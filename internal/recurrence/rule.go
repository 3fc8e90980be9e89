package recurrence

import (
	"sort"
	"strings"
)

// Frequency enumerates the repeat cadences the admin panel supports.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Weekday uses the two-letter iCalendar codes (SU..SA).
type Weekday string

const (
	Sunday    Weekday = "SU"
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
)

// PositionLast selects the last matching weekday of the month.
const PositionLast = -1

// Rule is the structured recurrence specification attached to recurring
// events. Weekly rules use Weekdays; monthly rules use Positions plus a
// single Weekday.
type Rule struct {
	Freq      Frequency `json:"freq"`
	Weekdays  []Weekday `json:"weekdays,omitempty"`
	Positions []int     `json:"positions,omitempty"`
	Weekday   Weekday   `json:"weekday,omitempty"`
}

var weekdayNames = map[Weekday]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

var weekdayOrder = map[Weekday]int{
	Sunday:    0,
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
}

var positionNames = map[int]string{
	1:            "First",
	2:            "Second",
	3:            "Third",
	4:            "Fourth",
	5:            "Fifth",
	PositionLast: "Last",
}

// RuleText renders the rule as a human sentence. Unparseable or incomplete
// rules yield an empty string; callers treat empty as "no description
// available".
func RuleText(rule *Rule) string {
	if rule == nil {
		return ""
	}

	switch rule.Freq {
	case Daily:
		return "Every Day"
	case Weekly:
		return weeklyText(rule.Weekdays)
	case Monthly:
		return monthlyText(rule.Positions, rule.Weekday)
	default:
		return ""
	}
}

func weeklyText(weekdays []Weekday) string {
	names := make([]string, 0, len(weekdays))
	seen := map[Weekday]struct{}{}
	for _, day := range weekdays {
		day = Weekday(strings.ToUpper(strings.TrimSpace(string(day))))
		name, ok := weekdayNames[day]
		if !ok {
			return ""
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	if len(seen) == len(weekdayNames) {
		return "Every Day"
	}

	sort.Slice(names, func(i, j int) bool {
		return weekdayOrder[codeForName(names[i])] < weekdayOrder[codeForName(names[j])]
	})
	return "Every " + joinWithAnd(names)
}

func monthlyText(positions []int, day Weekday) string {
	day = Weekday(strings.ToUpper(strings.TrimSpace(string(day))))
	dayName, ok := weekdayNames[day]
	if !ok || len(positions) == 0 {
		return ""
	}

	ordered := append([]int(nil), positions...)
	sort.Slice(ordered, func(i, j int) bool {
		// Last sorts after every numbered position.
		if ordered[i] == PositionLast {
			return false
		}
		if ordered[j] == PositionLast {
			return true
		}
		return ordered[i] < ordered[j]
	})

	names := make([]string, 0, len(ordered))
	for _, pos := range ordered {
		name, ok := positionNames[pos]
		if !ok {
			return ""
		}
		names = append(names, name)
	}

	return "Every " + joinWithAnd(names) + " " + dayName + " of the Month"
}

// joinWithAnd joins list items with commas and a final "and".
func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func codeForName(name string) Weekday {
	for code, candidate := range weekdayNames {
		if candidate == name {
			return code
		}
	}
	return ""
}
