package fields

import (
	"fmt"
	"strings"
)

// InvalidColumnError reports a column letter containing characters
// outside A-Z.
type InvalidColumnError struct {
	Letter string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column letter: %q", e.Letter)
}

// ColumnIndex converts a spreadsheet column letter to a zero-based index:
// "A" -> 0, "Z" -> 25, "AA" -> 26. Input is upper-cased first. There is no
// upper bound check; callers bound-check against the row width.
func ColumnIndex(letter string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(letter))
	if s == "" {
		return 0, &InvalidColumnError{Letter: letter}
	}

	idx := 0
	for _, ch := range s {
		if ch < 'A' || ch > 'Z' {
			return 0, &InvalidColumnError{Letter: letter}
		}
		idx = idx*26 + int(ch-'A') + 1
	}
	return idx - 1, nil
}
