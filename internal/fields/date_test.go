package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Date
	}{
		{
			name: "empty input",
			text: "",
			want: Date{},
		},
		{
			name: "whitespace only",
			text: "   ",
			want: Date{},
		},
		{
			name: "not a date",
			text: "not a date",
			want: Date{},
		},
		{
			name: "ordinal suffix with month name",
			text: "3rd May 1990",
			want: Date{Day: "03", Month: "05", Year: "1990"},
		},
		{
			name: "month name without ordinal",
			text: "21 June 1985",
			want: Date{Day: "21", Month: "06", Year: "1985"},
		},
		{
			name: "day-first slashes",
			text: "05/06/1990",
			want: Date{Day: "05", Month: "06", Year: "1990"},
		},
		{
			name: "two-digit year above pivot",
			text: "05/06/90",
			want: Date{Day: "05", Month: "06", Year: "1990"},
		},
		{
			name: "two-digit year below pivot",
			text: "06/06/05",
			want: Date{Day: "06", Month: "06", Year: "2005"},
		},
		{
			name: "dot separators",
			text: "1.2.1999",
			want: Date{Day: "01", Month: "02", Year: "1999"},
		},
		{
			name: "dash separators",
			text: "07-08-2001",
			want: Date{Day: "07", Month: "08", Year: "2001"},
		},
		{
			name: "surrounding prose",
			text: "born on 3rd May 1990 in Accra",
			want: Date{Day: "03", Month: "05", Year: "1990"},
		},
		{
			name: "digit-run fallback",
			text: "05x06x1990",
			want: Date{Day: "05", Month: "06", Year: "1990"},
		},
		{
			name: "fallback two-digit year above pivot",
			text: "05x06x90",
			want: Date{Day: "05", Month: "06", Year: "1990"},
		},
		{
			name: "fallback two-digit year below pivot",
			text: "05x06x05",
			want: Date{Day: "05", Month: "06", Year: "2005"},
		},
		{
			name: "two digit runs only",
			text: "05x06",
			want: Date{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.text))
		})
	}
}

func TestDateSlashed(t *testing.T) {
	assert.Equal(t, "03/05/1990", Date{Day: "03", Month: "05", Year: "1990"}.Slashed())
	assert.Equal(t, "", Date{}.Slashed())
	assert.Equal(t, "", Date{Day: "03", Month: "05"}.Slashed(), "missing year yields empty string")
}

func TestDateIsZero(t *testing.T) {
	assert.True(t, Date{}.IsZero())
	assert.False(t, Date{Year: "1990"}.IsZero())
}
