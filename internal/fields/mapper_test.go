package fields

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 9, 10, 30, 0, 0, time.UTC)
}

func newTestMapper() *Mapper {
	return NewMapper(DefaultColumnMapping(), "B", "2026").WithClock(fixedClock)
}

// testRow builds a row wide enough for the default mapping (through AC)
// and fills the given column letters.
func testRow(t *testing.T, cells map[string]string) Row {
	t.Helper()
	row := make(Row, 29)
	for letter, value := range cells {
		idx, err := ColumnIndex(letter)
		require.NoError(t, err)
		row[idx] = value
	}
	return row
}

func TestMapRowNameSplit(t *testing.T) {
	tests := []struct {
		name      string
		cell      string
		surname   string
		firstName string
	}{
		{"surname and two names", "Smith John Paul", "Smith", "John Paul"},
		{"surname only", "Smith", "Smith", ""},
		{"extra whitespace", "  Smith   John ", "Smith", "John"},
		{"empty", "", "", ""},
	}

	m := newTestMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := m.MapRow(testRow(t, map[string]string{"C": tt.cell}), 1, 1)
			assert.Equal(t, tt.surname, values["surname"])
			assert.Equal(t, tt.firstName, values["first_name"])
		})
	}
}

func TestMapRowCheckboxGroups(t *testing.T) {
	m := newTestMapper()

	t.Run("gender female", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"D": "Female"}), 1, 1)
		assert.Equal(t, Checked, values["female"])
		assert.Equal(t, "", values["male"])
	})

	t.Run("gender male", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"D": "m"}), 1, 1)
		assert.Equal(t, Checked, values["male"])
		assert.Equal(t, "", values["female"])
	})

	t.Run("gender unknown leaves both off", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"D": "x"}), 1, 1)
		assert.Equal(t, "", values["male"])
		assert.Equal(t, "", values["female"])
	})

	t.Run("marital single", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"M": "Single"}), 1, 1)
		assert.Equal(t, Checked, values["single"])
		assert.Equal(t, "", values["married"])
	})

	t.Run("marital married", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"M": "Married with children"}), 1, 1)
		assert.Equal(t, Checked, values["married"])
		assert.Equal(t, "", values["single"])
	})

	t.Run("disability yes", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"Z": "Yes"}), 1, 1)
		assert.Equal(t, Checked, values["disabled"])
		assert.Equal(t, "", values["not_disabled"])
	})

	t.Run("disability no", func(t *testing.T) {
		values := m.MapRow(testRow(t, map[string]string{"Z": "No"}), 1, 1)
		assert.Equal(t, "", values["disabled"])
		assert.Equal(t, Checked, values["not_disabled"])
	})

	t.Run("disability empty leaves both off", func(t *testing.T) {
		values := m.MapRow(testRow(t, nil), 1, 1)
		assert.Equal(t, "", values["disabled"])
		assert.Equal(t, "", values["not_disabled"])
	})
}

func TestMapRowStaffIDSynthesis(t *testing.T) {
	m := newTestMapper()

	values := m.MapRow(testRow(t, nil), 7, 40)
	assert.Equal(t, "unknown_7", values["staff_id"])

	values = m.MapRow(testRow(t, map[string]string{"H": "GH-1234"}), 7, 40)
	assert.Equal(t, "GH-1234", values["staff_id"])
}

func TestMapRowDateDecomposition(t *testing.T) {
	m := newTestMapper()
	values := m.MapRow(testRow(t, map[string]string{
		"E": "3rd May 1990",
		"O": "12/11/1992",
		"R": "01/02/2015",
		"U": "bad date",
		"X": "5.6.2019",
	}), 1, 1)

	assert.Equal(t, "03", values["day_of_birth"])
	assert.Equal(t, "05", values["month_of_birth"])
	assert.Equal(t, "1990", values["year_of_birth"])

	assert.Equal(t, "12", values["spouse_day_of_birth"])
	assert.Equal(t, "11", values["spouse_month_of_birth"])
	assert.Equal(t, "1992", values["spouse_year_of_birth"])

	assert.Equal(t, "01/02/2015", values["first_child_dob"])
	assert.Equal(t, "", values["second_child_dob"], "unparseable child date stays empty")
	assert.Equal(t, "05/06/2019", values["third_child_date"])
}

func TestMapRowYearOverride(t *testing.T) {
	m := newTestMapper()
	values := m.MapRow(testRow(t, map[string]string{"B": "4/5/2023 10:11:12"}), 1, 1)
	// The timestamp-derived year is replaced by the configured form year.
	assert.Equal(t, "2026", values["year"])
	assert.Equal(t, "09/03/2026", values["declaration_date"])
}

func TestMapRowLogsDiscardedDerivedYear(t *testing.T) {
	var msgs []string
	m := newTestMapper().WithDebugLogf(func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	})

	m.MapRow(testRow(t, map[string]string{"B": "4/5/2023 10:11:12"}), 3, 10)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "row 3")
	assert.Contains(t, msgs[0], "2023")
	assert.Contains(t, msgs[0], "2026")

	// No noise when the derived year already matches, or when no timestamp
	// is present.
	msgs = nil
	m.MapRow(testRow(t, map[string]string{"B": "4/5/2026 10:11:12"}), 4, 10)
	m.MapRow(testRow(t, nil), 5, 10)
	assert.Empty(t, msgs)
}

func TestTimestampYear(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"4/5/2023 10:11:12", "2023"},
		{"submitted 05/06/24", "2005"}, // first two-digit run wins when no four-digit run exists
		{"", ""},
		{"no digits here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timestampYear(tt.ts), "timestampYear(%q)", tt.ts)
	}
}

func TestOutputIdentifier(t *testing.T) {
	tests := []struct {
		rowNumber int
		totalRows int
		want      string
	}{
		{1, 37, "01"},
		{7, 37, "07"},
		{37, 37, "37"},
		{1, 100, "001"},
		{5, 9, "5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputIdentifier(tt.rowNumber, tt.totalRows))
	}
}

func TestMapRowBlankRow(t *testing.T) {
	m := newTestMapper()

	full := m.MapRow(testRow(t, map[string]string{
		"C": "Mensah Ama",
		"D": "Female",
		"E": "01/02/1980",
		"H": "GH-0001",
		"M": "Married",
		"Z": "No",
	}), 1, 2)
	blank := m.MapRow(testRow(t, map[string]string{"H": "GH-0002"}), 2, 2)

	assert.Equal(t, Checked, full["female"])
	assert.Equal(t, Checked, full["married"])

	// The blank row degrades every optional field to empty and all
	// checkbox groups to off; identifier and change marker stay populated.
	for _, key := range []string{
		"surname", "first_name", "day_of_birth", "month_of_birth",
		"year_of_birth", "male", "female", "married", "single",
		"disabled", "not_disabled", "first_child_dob",
	} {
		assert.Equal(t, "", blank[key], "field %q should be empty", key)
	}
	assert.Equal(t, "GH-0002", blank["staff_id"])
	assert.Equal(t, Checked, blank["change"])
	assert.Equal(t, "2026", blank["year"])
}

func TestMapRowIdempotent(t *testing.T) {
	m := newTestMapper()
	row := testRow(t, map[string]string{
		"C": "Smith John",
		"D": "Male",
		"E": "3rd May 1990",
		"M": "Single",
	})

	first := m.MapRow(row, 3, 10)
	second := m.MapRow(row, 3, 10)
	assert.Equal(t, first, second)
}

func TestMapRowShortRow(t *testing.T) {
	m := newTestMapper()
	// Row shorter than the mapped columns: lookups past the end degrade
	// to empty, never fail.
	values := m.MapRow(Row{"", "", "Owusu Kofi"}, 1, 1)
	assert.Equal(t, "Owusu", values["surname"])
	assert.Equal(t, "", values["declaration"])
	assert.Equal(t, "", values["names_and_dates_of_aged_dependants"])
}
