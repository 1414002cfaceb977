package forms

import (
	"fmt"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Filler validates fill instructions against an extracted form model and
// applies them to the document's field-value layer. Application is
// all-or-nothing: a single invalid instruction rejects the whole batch
// before anything is written.
type Filler struct {
	extractor *Extractor
	conf      *model.Configuration
}

// NewFiller creates a form filler.
func NewFiller() *Filler {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Filler{extractor: NewExtractor(), conf: conf}
}

// ValidateValue checks one fill value against an element's domain. A nil
// return means the value is acceptable; otherwise the returned diagnostic
// names the valid domain.
func ValidateValue(elem *FormElement, fillValue string) error {
	switch elem.ElementType {
	case ElementTypeTextInput:
		return nil
	case ElementTypeToggleBox:
		if fillValue != elem.OnValue && fillValue != elem.OffValue {
			return pdferrors.Newf(pdferrors.KindValidation,
				"invalid value %q for toggle element %q: the on value is %q and the off value is %q",
				fillValue, elem.ElementID, elem.OnValue, elem.OffValue)
		}
	case ElementTypeOptionGroup:
		valid := make([]string, 0, len(elem.AvailableOptions))
		for _, opt := range elem.AvailableOptions {
			if fillValue == opt.OptionValue {
				return nil
			}
			valid = append(valid, opt.OptionValue)
		}
		return pdferrors.Newf(pdferrors.KindValidation,
			"invalid value %q for option group %q: valid values are %v",
			fillValue, elem.ElementID, valid)
	case ElementTypeDropdown:
		valid := make([]string, 0, len(elem.MenuItems))
		for _, item := range elem.MenuItems {
			if fillValue == item.OptionValue {
				return nil
			}
			valid = append(valid, item.OptionValue)
		}
		return pdferrors.Newf(pdferrors.KindValidation,
			"invalid value %q for dropdown %q: valid values are %v",
			fillValue, elem.ElementID, valid)
	default:
		return pdferrors.Newf(pdferrors.KindValidation,
			"element %q has an unknown type and cannot be filled", elem.ElementID)
	}
	return nil
}

// ValidateInstructions checks a whole batch against the model without
// touching the document. The returned diagnostics are in instruction
// order; an empty slice means the batch is applicable.
func ValidateInstructions(m *Model, instructions []FillInstruction) []string {
	var diags []string
	for _, ins := range instructions {
		elem := m.ElementByID(ins.ElementID)
		if elem == nil {
			diags = append(diags, fmt.Sprintf("ERROR: %q is not a valid element id", ins.ElementID))
			continue
		}
		if ins.PageNum != elem.PageNum {
			diags = append(diags, fmt.Sprintf("ERROR: wrong page number for %q (got %d, expected %d)",
				ins.ElementID, ins.PageNum, elem.PageNum))
			continue
		}
		if err := ValidateValue(elem, ins.FillValue); err != nil {
			diags = append(diags, fmt.Sprintf("ERROR: %s", err.Error()))
		}
	}
	return diags
}

// ApplyFile validates and applies a batch of fill instructions, writing
// the completed document to outPath. No output is produced and the input
// is never modified when any instruction is invalid.
func (f *Filler) ApplyFile(inPath string, instructions []FillInstruction, outPath string) ([]string, error) {
	file, err := os.Open(inPath)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to open PDF", err)
	}
	defer file.Close()

	ctx, err := api.ReadContext(file, f.conf)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to read PDF", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to ensure page count", err)
	}

	m, err := f.extractor.ExtractContext(ctx)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to extract form model", err)
	}

	diags := ValidateInstructions(m, instructions)
	if len(diags) > 0 {
		return diags, pdferrors.Newf(pdferrors.KindValidation,
			"%d of %d fill instructions rejected; nothing was written", len(diags), len(instructions))
	}

	// Writes are grouped and ordered by page so the output is
	// deterministic regardless of instruction order.
	byPage := make(map[int][]FillInstruction)
	var pages []int
	for _, ins := range instructions {
		if len(byPage[ins.PageNum]) == 0 {
			pages = append(pages, ins.PageNum)
		}
		byPage[ins.PageNum] = append(byPage[ins.PageNum], ins)
	}
	sort.Ints(pages)

	for _, page := range pages {
		for _, ins := range byPage[page] {
			if err := f.applyOne(ctx, m, ins); err != nil {
				return nil, err
			}
		}
	}

	if err := f.markNeedAppearances(ctx); err != nil {
		return nil, err
	}

	if err := api.WriteContextFile(ctx, outPath); err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInternal, "failed to write filled PDF", err)
	}
	return nil, nil
}

// applyOne mutates the field-value layer for a single instruction.
func (f *Filler) applyOne(ctx *model.Context, m *Model, ins FillInstruction) error {
	target := m.targets[ins.ElementID]
	if target == nil || target.fieldRef == nil {
		return pdferrors.Newf(pdferrors.KindInternal,
			"no document object recorded for element %q", ins.ElementID)
	}
	fieldDict, err := ctx.DereferenceDict(*target.fieldRef)
	if err != nil || fieldDict == nil {
		return pdferrors.Wrap(pdferrors.KindInternal,
			fmt.Sprintf("failed to dereference field %q", ins.ElementID), err)
	}

	switch target.element.ElementType {
	case ElementTypeTextInput, ElementTypeDropdown:
		fieldDict["V"] = types.StringLiteral(ins.FillValue)
	case ElementTypeToggleBox, ElementTypeOptionGroup:
		fieldDict["V"] = types.Name(ins.FillValue)
		// Widgets display whichever appearance state /AS selects, so
		// every widget of the element has to agree with the new value.
		for _, w := range target.widgets {
			if w.ref == nil {
				continue
			}
			widgetDict, err := ctx.DereferenceDict(*w.ref)
			if err != nil || widgetDict == nil {
				continue
			}
			state := offState
			for _, s := range w.states {
				if s == ins.FillValue {
					state = ins.FillValue
					break
				}
			}
			widgetDict["AS"] = types.Name(state)
		}
	}
	return nil
}

// markNeedAppearances asks viewers to regenerate field appearance streams
// on open. Many viewers render stale or empty values without it.
func (f *Filler) markNeedAppearances(ctx *model.Context) error {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return pdferrors.Wrap(pdferrors.KindInternal, "failed to get catalog", err)
	}
	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil
	}
	acroFormDict["NeedAppearances"] = types.Boolean(true)
	return nil
}
