package fields

import (
	"fmt"
	"strings"
)

// Normalize coerces an arbitrary cell value to a trimmed string
// representation. nil yields the empty string. Pure and total; all typed
// interpretation of cell content happens here or in ParseDate, never
// implicitly elsewhere.
func Normalize(raw any) string {
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}
