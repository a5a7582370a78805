package rows

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDateFormat renders a date as Unix seconds.
const DefaultDateFormat = "%U"

// layouts maps format letters onto Go reference layouts.
var layouts = map[byte]string{
	'd': "02",
	'D': "Mon",
	'j': "2",
	'l': "Monday",
	'F': "January",
	'm': "01",
	'M': "Jan",
	'n': "1",
	'Y': "2006",
	'y': "06",
	'a': "pm",
	'A': "PM",
	'g': "3",
	'h': "03",
	'H': "15",
	'i': "04",
	's': "05",
	'T': "MST",
	'P': "-07:00",
	'O': "-0700",
	'c': "2006-01-02T15:04:05-07:00",
	'r': time.RFC1123Z,
}

// FormatDate renders t with a percent-directive format such as
// "%Y-%m-%d %H:%i". Directive letters follow the classic date() set.
// "%%" emits a percent sign; unknown directives are kept as written.
func FormatDate(t time.Time, format string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		d := format[i]
		if d == '%' {
			b.WriteByte('%')
			continue
		}
		if s, ok := directive(t, d); ok {
			b.WriteString(s)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(d)
	}
	return b.String()
}

func directive(t time.Time, d byte) (string, bool) {
	if layout, ok := layouts[d]; ok {
		return t.Format(layout), true
	}
	switch d {
	case 'U':
		return strconv.FormatInt(t.Unix(), 10), true
	case 'G':
		return strconv.Itoa(t.Hour()), true
	case 'N':
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd), true
	case 'w':
		return strconv.Itoa(int(t.Weekday())), true
	case 'z':
		return strconv.Itoa(t.YearDay() - 1), true
	case 'S':
		return ordinal(t.Day()), true
	case 't':
		return strconv.Itoa(daysIn(t)), true
	case 'L':
		if daysIn(time.Date(t.Year(), time.February, 1, 0, 0, 0, 0, time.UTC)) == 29 {
			return "1", true
		}
		return "0", true
	case 'W':
		_, w := t.ISOWeek()
		return pad2(w), true
	case 'o':
		y, _ := t.ISOWeek()
		return strconv.Itoa(y), true
	case 'u':
		return pad(t.Nanosecond()/1000, 6), true
	case 'v':
		return pad(t.Nanosecond()/1e6, 3), true
	case 'e':
		return t.Location().String(), true
	case 'Z':
		_, off := t.Zone()
		return strconv.Itoa(off), true
	}
	return "", false
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func ordinal(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func pad2(n int) string { return pad(n, 2) }

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}
