package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// Date holds the components of a parsed date as zero-padded strings.
// All three components are empty when the source text was unparseable.
type Date struct {
	Day   string
	Month string
	Year  string
}

// IsZero reports whether no component was parsed.
func (d Date) IsZero() bool {
	return d.Day == "" && d.Month == "" && d.Year == ""
}

// Slashed returns the date as "DD/MM/YYYY", or "" if any component is
// missing.
func (d Date) Slashed() string {
	if d.Day == "" || d.Month == "" || d.Year == "" {
		return ""
	}
	return d.Day + "/" + d.Month + "/" + d.Year
}

var (
	ordinalSuffixRE = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	digitRunRE      = regexp.MustCompile(`\d{1,4}`)
	separatorRepl   = strings.NewReplacer(".", "/", "-", "/")
)

var monthNames = map[string]bool{
	"jan": true, "january": true,
	"feb": true, "february": true,
	"mar": true, "march": true,
	"apr": true, "april": true,
	"may": true,
	"jun": true, "june": true,
	"jul": true, "july": true,
	"aug": true, "august": true,
	"sep": true, "sept": true, "september": true,
	"oct": true, "october": true,
	"nov": true, "november": true,
	"dec": true, "december": true,
}

// ParseDate parses loosely-formatted date text into day, month and year
// components. Strategies are tried in order, first success wins:
//
//  1. empty input returns the empty triple immediately;
//  2. ordinal suffixes after digits are stripped and '.'/'-' separators
//     normalized to '/';
//  3. a general-purpose parse with day-before-month preference, retried on
//     just the date-like tokens so surrounding prose is tolerated;
//  4. a digit-run fallback: the first three runs of 1-4 digits become day,
//     month and year. A two-digit year pivots at 30: values above 30 map
//     to the 1900s, the rest to the 2000s.
//
// Fewer than three digit runs means the text carries no usable date and
// the empty triple is returned. Data-quality issues never raise errors.
func ParseDate(text string) Date {
	t := Normalize(text)
	if t == "" {
		return Date{}
	}

	t = ordinalSuffixRE.ReplaceAllString(t, "$1")
	t = separatorRepl.Replace(t)

	if d, ok := parseGeneral(t); ok {
		return d
	}

	runs := digitRunRE.FindAllString(t, -1)
	if len(runs) < 3 {
		return Date{}
	}

	day, month, year := runs[0], runs[1], runs[2]
	if len(year) == 2 {
		y, _ := strconv.Atoi(year)
		if y > 30 {
			year = strconv.Itoa(1900 + y)
		} else {
			year = strconv.Itoa(2000 + y)
		}
	}
	return Date{Day: pad2(day), Month: pad2(month), Year: year}
}

// parseGeneral attempts a structured parse of the whole text, then of just
// its date-like tokens.
func parseGeneral(t string) (Date, bool) {
	for _, candidate := range []string{t, dateTokens(t)} {
		if candidate == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(candidate, dateparse.PreferMonthFirst(false))
		if err != nil {
			continue
		}
		return Date{
			Day:   fmt.Sprintf("%02d", parsed.Day()),
			Month: fmt.Sprintf("%02d", int(parsed.Month())),
			Year:  strconv.Itoa(parsed.Year()),
		}, true
	}
	return Date{}, false
}

// dateTokens drops tokens that cannot be part of a date so strings like
// "born on 3 May 1990 in Accra" still parse. Returns "" when filtering
// changes nothing, to avoid re-parsing the identical string.
func dateTokens(t string) string {
	var kept []string
	for _, tok := range strings.Fields(t) {
		trimmed := strings.Trim(tok, ",;:()")
		if trimmed == "" {
			continue
		}
		if digitRunRE.MatchString(trimmed) || monthNames[strings.ToLower(trimmed)] {
			kept = append(kept, trimmed)
		}
	}
	joined := strings.Join(kept, " ")
	if joined == t {
		return ""
	}
	return joined
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
