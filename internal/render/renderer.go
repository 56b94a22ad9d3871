// Package render fills an AcroForm PDF template from a field-value map and
// produces editable and flattened copies per row.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/n807235-alt/formfill/internal/fields"
)

// Renderer writes one editable and one flattened PDF per row. The template
// is re-read from its source on every invocation so no filled state leaks
// across rows.
type Renderer struct {
	templatePath string
	checkboxes   map[string]bool
}

// NewRenderer creates a renderer for the given template file.
func NewRenderer(templatePath string) *Renderer {
	return &Renderer{
		templatePath: templatePath,
		checkboxes:   fields.CheckboxFieldNames(),
	}
}

// Render fills the template with the given values and writes the editable
// document to editablePath, then a flattened copy to flattenedPath.
func (r *Renderer) Render(values fields.FieldValues, editablePath, flattenedPath string) error {
	ctx, err := readTemplate(r.templatePath)
	if err != nil {
		return err
	}

	if err := r.fillContext(ctx, values); err != nil {
		return fmt.Errorf("failed to fill form fields: %w", err)
	}

	if err := writeContext(ctx, editablePath); err != nil {
		return err
	}

	if err := flatten(editablePath, flattenedPath); err != nil {
		return fmt.Errorf("failed to flatten %s: %w", editablePath, err)
	}
	return nil
}

// readTemplate opens a fresh pdfcpu context for the template.
func readTemplate(path string) (*model.Context, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read template context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return ctx, nil
}

// fillContext walks the AcroForm field array and applies the field values.
func (r *Renderer) fillContext(ctx *model.Context, values fields.FieldValues) error {
	acroDict, fieldArray, err := acroFormFields(ctx)
	if err != nil {
		return err
	}

	for _, ref := range fieldArray {
		if err := r.fillField(ctx, ref, values); err != nil {
			return err
		}
	}

	// Viewers regenerate field appearances from V, enabling auto-fit text.
	acroDict["NeedAppearances"] = types.Boolean(true)

	return nil
}

// acroFormFields resolves the catalog's AcroForm dictionary and its Fields
// array.
func acroFormFields(ctx *model.Context) (types.Dict, types.Array, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil, fmt.Errorf("template has no AcroForm dictionary")
	}

	acroDict, err := ctx.DereferenceDict(acroObj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroDict == nil {
		return nil, nil, fmt.Errorf("template has no AcroForm dictionary")
	}

	fieldsObj, found := acroDict.Find("Fields")
	if !found {
		return nil, nil, fmt.Errorf("AcroForm has no Fields array")
	}

	fieldArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	return acroDict, fieldArray, nil
}

// fillField applies the mapped value for a single field. Template fields
// the mapper does not produce are cleared.
func (r *Renderer) fillField(ctx *model.Context, fieldObj types.Object, values fields.FieldValues) error {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil
	}

	name := fieldName(ctx, fieldDict)
	if name == "" {
		// Unnamed intermediate node; descend into its kids.
		return r.fillKids(ctx, fieldDict, values)
	}

	// A name the mapper never produces reads as "": text fields are
	// cleared and checkboxes switched off, so stale template content
	// never survives into the output.
	value := values[name]

	if r.checkboxes[name] {
		// The mapper's per-field derivation is authoritative: a checkbox
		// is on iff its value is exactly the Checked literal.
		setCheckbox(ctx, fieldDict, value == fields.Checked)
		return nil
	}

	setText(fieldDict, value)
	return nil
}

func (r *Renderer) fillKids(ctx *model.Context, d types.Dict, values fields.FieldValues) error {
	kidsObj, found := d.Find("Kids")
	if !found {
		return nil
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil || kids == nil {
		return nil
	}
	for _, kid := range kids {
		if err := r.fillField(ctx, kid, values); err != nil {
			return err
		}
	}
	return nil
}

// fieldName extracts the partial field name (T entry), or "".
func fieldName(ctx *model.Context, d types.Dict) string {
	nameObj, found := d.Find("T")
	if !found {
		return ""
	}
	name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// setCheckbox sets both the field value and the widget appearance state.
func setCheckbox(ctx *model.Context, d types.Dict, on bool) {
	state := types.Name("Off")
	if on {
		state = types.Name("Yes")
	}
	d["V"] = state
	d["AS"] = state

	// Fields with separate widget annotations carry AS on the kids.
	kidsObj, found := d.Find("Kids")
	if !found {
		return
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return
	}
	for _, kid := range kids {
		if kd, err := ctx.DereferenceDict(kid); err == nil && kd != nil {
			kd["AS"] = state
		}
	}
}

// setText sets a text field's content and drops its cached appearance so
// the viewer rebuilds it from V. An empty value clears the field.
func setText(d types.Dict, value string) {
	d["V"] = types.StringLiteral(escapeLiteral(value))
	delete(d, "AP")
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// escapeLiteral escapes the delimiter characters of a PDF string literal.
func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// writeContext serializes the filled context to path.
func writeContext(ctx *model.Context, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := api.WriteContext(ctx, file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// flatten writes a non-editable copy of the filled document by removing
// all annotations, leaving only the rendered page content.
func flatten(editablePath, flattenedPath string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return api.RemoveAnnotationsFile(editablePath, flattenedPath, nil, nil, nil, conf, false)
}
