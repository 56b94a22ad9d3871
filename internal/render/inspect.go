package render

import (
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// TemplateInfo summarizes an interactive form template so a run can fail
// fast on an unusable file and operators can verify field names.
type TemplateInfo struct {
	Path       string   `json:"path"`
	PageCount  int      `json:"page_count"`
	Encrypted  bool     `json:"encrypted"`
	HasText    bool     `json:"has_text"`
	FieldNames []string `json:"field_names"`
}

// Inspect reports the template's interactive field names and basic
// document facts.
func Inspect(path string) (*TemplateInfo, error) {
	ctx, err := readTemplate(path)
	if err != nil {
		return nil, err
	}

	names, err := listFieldNames(ctx)
	if err != nil {
		return nil, err
	}

	return &TemplateInfo{
		Path:       path,
		PageCount:  ctx.PageCount,
		Encrypted:  ctx.Encrypt != nil,
		HasText:    hasText(path),
		FieldNames: names,
	}, nil
}

// HasField reports whether the template declares the given field name.
func (ti *TemplateInfo) HasField(name string) bool {
	for _, n := range ti.FieldNames {
		if n == name {
			return true
		}
	}
	return false
}

// listFieldNames collects the names of all fields in the AcroForm
// hierarchy, widgets included.
func listFieldNames(ctx *model.Context) ([]string, error) {
	_, fieldArray, err := acroFormFields(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	var walk func(obj types.Object) error
	walk = func(obj types.Object) error {
		d, err := ctx.DereferenceDict(obj)
		if err != nil || d == nil {
			return nil
		}
		if name := fieldName(ctx, d); name != "" {
			names = append(names, name)
		}
		kidsObj, found := d.Find("Kids")
		if !found {
			return nil
		}
		kids, err := ctx.DereferenceArray(kidsObj)
		if err != nil {
			return nil
		}
		for _, kid := range kids {
			if err := walk(kid); err != nil {
				return err
			}
		}
		return nil
	}

	for _, ref := range fieldArray {
		if err := walk(ref); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// hasText probes the document for any extractable page text. Purely
// informational; probe failures read as "no text".
func hasText(path string) bool {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(content) != "" {
			return true
		}
	}
	return false
}
