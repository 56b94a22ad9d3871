// Package fields derives the complete field-value map for one PDF form
// document from a raw spreadsheet row: column lookup, cell normalization,
// flexible date parsing, checkbox-group selection and sequential output
// identifiers.
package fields

// Row is one spreadsheet row as raw cell values, positionally indexed.
// Produced by ingestion, consumed once per row.
type Row []string

// ColumnMapping maps spreadsheet column letters ("A", "AA") to semantic
// field keys. Keys are unique; the mapping is immutable for a run.
type ColumnMapping map[string]string

// FieldValues is the complete set of named values handed to the renderer
// for one output document. Values may be empty strings.
type FieldValues map[string]string

// Checked is the literal value that switches a checkbox field on.
// Off is represented by the empty string.
const Checked = "Yes"

// CheckboxGroups lists the mutually exclusive checkbox fields, each driven
// by exactly one categorical source field per row.
var CheckboxGroups = map[string][]string{
	"gender":     {"male", "female"},
	"marital":    {"married", "single"},
	"disability": {"disabled", "not_disabled"},
}

// CheckboxFieldNames returns the set of form-field names owned by the
// checkbox-group logic, including the change/no_change marker pair.
func CheckboxFieldNames() map[string]bool {
	names := map[string]bool{
		"change":    true,
		"no_change": true,
	}
	for _, group := range CheckboxGroups {
		for _, name := range group {
			names[name] = true
		}
	}
	return names
}

// DefaultColumnMapping returns the column-letter mapping for the standard
// response spreadsheet layout.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		"AA": "declaration",
		"E":  "day_of_birth", // month/year_of_birth derive from the same cell
		"Z":  "disabled",
		"J":  "employer_address",
		"D":  "gender",
		"R":  "first_child_dob",
		"Q":  "first_child_name",
		"S":  "first_child_school",
		"C":  "name_cell", // holds surname and first name
		"L":  "ghana_card",
		"M":  "marital",
		"F":  "mothers_maiden",
		"I":  "name_of_employer",
		"N":  "name_of_spouse",
		"AC": "names_and_dates_of_aged_dependants",
		"P":  "number_of_chilfren", // field name matches the template's typo
		"K":  "phone_number",
		"U":  "second_child_dob",
		"T":  "second_child_name",
		"V":  "second_child_school",
		"O":  "spouse_dob", // spouse day/month/year fields derive from this cell
		"G":  "social_sec",
		"H":  "staff_id",
		"X":  "third_child_date",
		"W":  "third_child_name",
		"Y":  "third_child_school",
	}
}
