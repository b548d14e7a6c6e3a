package dimension

import (
	"strconv"
	"time"
)

// DateKeyLayout is the natural key shape of the date dimension: the calendar
// date truncated from a record timestamp.
const DateKeyLayout = "2006-01-02"

// DateKey truncates a timestamp to its calendar-date natural key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DateAttrs holds the derived attributes of a date dimension entry.
// Every field is a pure function of the date: whichever raw record first
// triggers creation, the attributes come out identical.
type DateAttrs struct {
	DayOfWeek int    // Sunday=0 .. Saturday=6
	DayName   string // "Monday", ...
	MonthName string // "March", ...
	Year      int
	IsWeekend bool // day_of_week in {0, 6}
}

// DateAttributes derives the date dimension attributes for a timestamp.
// The weekend convention is Sunday=0: weekend means Sunday or Saturday.
func DateAttributes(t time.Time) DateAttrs {
	dow := int(t.Weekday()) // time.Sunday == 0
	return DateAttrs{
		DayOfWeek: dow,
		DayName:   t.Weekday().String(),
		MonthName: t.Month().String(),
		Year:      t.Year(),
		IsWeekend: dow == 0 || dow == 6,
	}
}

// Map renders the attributes as a dimension attribute mapping.
func (a DateAttrs) Map() map[string]string {
	weekend := "false"
	if a.IsWeekend {
		weekend = "true"
	}
	return map[string]string{
		"day_of_week": strconv.Itoa(a.DayOfWeek),
		"day_name":    a.DayName,
		"month_name":  a.MonthName,
		"year":        strconv.Itoa(a.Year),
		"is_weekend":  weekend,
	}
}
