package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mapper derives a complete field-value map from one spreadsheet row.
// Configuration (column mapping, timestamp column, form year) is injected
// at construction, never ambient. A Mapper is safe for reuse across rows.
type Mapper struct {
	columns         ColumnMapping
	timestampColumn string
	formYear        string
	now             func() time.Time
	debugf          func(format string, args ...any)
}

// NewMapper creates a mapper for the given column mapping. timestampColumn
// is the column letter holding the submission timestamp; formYear is the
// run-configured value written to the "year" field.
func NewMapper(columns ColumnMapping, timestampColumn, formYear string) *Mapper {
	return &Mapper{
		columns:         columns,
		timestampColumn: timestampColumn,
		formYear:        formYear,
		now:             time.Now,
	}
}

// WithClock overrides the clock used for the declaration date. Tests use
// this for deterministic output.
func (m *Mapper) WithClock(now func() time.Time) *Mapper {
	m.now = now
	return m
}

// WithDebugLogf enables diagnostics for derivations that are computed and
// then discarded, like the timestamp-derived year.
func (m *Mapper) WithDebugLogf(debugf func(format string, args ...any)) *Mapper {
	m.debugf = debugf
	return m
}

// MapRow produces the field-value map for one row. rowNumber is 1-based;
// totalRows determines identifier padding (see OutputIdentifier). No step
// fails on malformed data: missing or unparseable values degrade to empty
// strings or safe defaults. Mapping the same row twice with the same
// arguments and clock yields identical results.
func (m *Mapper) MapRow(row Row, rowNumber, totalRows int) FieldValues {
	values := make(FieldValues, len(m.columns)+16)

	for letter, key := range m.columns {
		values[key] = m.cell(row, letter)
	}

	// Derived from the timestamp column, but unconditionally replaced by
	// the configured form year below. Kept so the derivation survives if
	// the override is ever dropped - confirm intent with the form owner.
	values["year"] = timestampYear(m.cell(row, m.timestampColumn))

	surname, firstName := SplitName(values["name_cell"])
	values["surname"] = surname
	values["first_name"] = firstName

	if values["staff_id"] == "" {
		values["staff_id"] = fmt.Sprintf("unknown_%d", rowNumber)
	}

	applyGender(values)
	applyMarital(values)
	applyDisability(values)

	dob := ParseDate(values["day_of_birth"])
	values["day_of_birth"] = dob.Day
	values["month_of_birth"] = dob.Month
	values["year_of_birth"] = dob.Year

	spouse := ParseDate(values["spouse_dob"])
	values["spouse_day_of_birth"] = spouse.Day
	values["spouse_month_of_birth"] = spouse.Month
	values["spouse_year_of_birth"] = spouse.Year

	values["first_child_dob"] = ParseDate(values["first_child_dob"]).Slashed()
	values["second_child_dob"] = ParseDate(values["second_child_dob"]).Slashed()
	values["third_child_date"] = ParseDate(values["third_child_date"]).Slashed()

	// Every generated record is marked as a change.
	values["change"] = Checked

	if m.debugf != nil && values["year"] != "" && values["year"] != m.formYear {
		m.debugf("row %d: derived year %s overridden by configured form year %s",
			rowNumber, values["year"], m.formYear)
	}
	values["year"] = m.formYear
	values["declaration_date"] = m.now().Format("02/01/2006")

	return values
}

// cell returns the normalized value at the given column letter, or "" when
// the letter is invalid or past the end of the row. Out-of-range lookups
// never fail the row.
func (m *Mapper) cell(row Row, letter string) string {
	idx, err := ColumnIndex(letter)
	if err != nil || idx < 0 || idx >= len(row) {
		return ""
	}
	return Normalize(row[idx])
}

// SplitName splits a free-text name cell on whitespace: the first token is
// the surname, the remaining tokens joined by single spaces form the first
// name. Empty input yields two empty strings.
func SplitName(name string) (surname, firstName string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// OutputIdentifier returns the 1-based row number zero-padded to the width
// of the total row count, e.g. row 7 of 37 -> "07". Stable for the run
// once the total is known; used as the output filename stem.
func OutputIdentifier(rowNumber, totalRows int) string {
	return fmt.Sprintf("%0*d", len(strconv.Itoa(totalRows)), rowNumber)
}

var (
	fourDigitRE = regexp.MustCompile(`\d{4}`)
	twoDigitRE  = regexp.MustCompile(`\d{2}`)
)

// timestampYear extracts a year from a submission timestamp: the first
// four-digit run, else the first two-digit run assumed to be in the 2000s,
// else empty.
func timestampYear(ts string) string {
	if ts == "" {
		return ""
	}
	if y := fourDigitRE.FindString(ts); y != "" {
		return y
	}
	if y := twoDigitRE.FindString(ts); y != "" {
		return "20" + y
	}
	return ""
}

func applyGender(values FieldValues) {
	g := strings.ToLower(values["gender"])
	values["male"] = yesIf(strings.HasPrefix(g, "m"))
	values["female"] = yesIf(strings.HasPrefix(g, "f"))
}

func applyMarital(values FieldValues) {
	src := strings.ToLower(values["marital"])
	values["married"] = yesIf(strings.Contains(src, "married"))
	values["single"] = yesIf(strings.Contains(src, "single"))
}

func applyDisability(values FieldValues) {
	src := strings.ToLower(values["disabled"])
	switch {
	case src == "":
		values["disabled"], values["not_disabled"] = "", ""
	case strings.HasPrefix(src, "y"):
		values["disabled"], values["not_disabled"] = Checked, ""
	default:
		values["disabled"], values["not_disabled"] = "", Checked
	}
}

func yesIf(on bool) string {
	if on {
		return Checked
	}
	return ""
}
