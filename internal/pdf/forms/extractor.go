package forms

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Extractor walks a document's field/annotation graph and produces the
// canonical, ordered form model.
type Extractor struct {
	conf *model.Configuration
}

// NewExtractor creates a form model extractor with relaxed validation,
// since real-world forms frequently bend the PDF specification.
func NewExtractor() *Extractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf}
}

// ExtractFile extracts the form model from a PDF file.
func (e *Extractor) ExtractFile(filePath string) (*Model, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()
	return e.Extract(f)
}

// Extract extracts the form model from an io.ReadSeeker.
func (e *Extractor) Extract(rs io.ReadSeeker) (*Model, error) {
	ctx, err := api.ReadContext(rs, e.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return e.ExtractContext(ctx)
}

// ExtractContext extracts the form model from an already-open context.
// The model is rebuilt from scratch on every call; nothing is cached.
func (e *Extractor) ExtractContext(ctx *model.Context) (*Model, error) {
	arena, err := e.buildArena(ctx)
	if err != nil {
		return nil, err
	}
	widgets, err := e.collectWidgets(ctx)
	if err != nil {
		return nil, err
	}
	return assembleModel(arena, widgets), nil
}

// buildArena flattens the AcroForm field forest into an arena with
// parent indices. A document without an AcroForm yields an empty arena,
// which is a valid, zero-field result.
func (e *Extractor) buildArena(ctx *model.Context) (*fieldArena, error) {
	arena := newFieldArena()

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return arena, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return arena, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return arena, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for _, fieldRef := range fieldsArray {
		if err := e.walkField(ctx, arena, fieldRef, -1); err != nil {
			return nil, err
		}
	}
	return arena, nil
}

// walkField recurses through one field declaration. Kids carrying a /T
// name are child fields; kids without one are widget annotations of the
// current field and only contribute appearance states.
func (e *Extractor) walkField(ctx *model.Context, arena *fieldArena, obj types.Object, parent int) error {
	objNr := 0
	if indRef, ok := obj.(types.IndirectRef); ok {
		objNr = int(indRef.ObjectNumber)
	}
	fieldDict, err := ctx.DereferenceDict(obj)
	if err != nil || fieldDict == nil {
		// A broken kid reference should not abort the whole walk.
		return nil
	}

	name := ""
	if nameObj, found := fieldDict.Find("T"); found {
		if s, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			name = s
		}
	}

	node := fieldNode{
		name:   name,
		parent: parent,
		objNr:  objNr,
	}
	if objNr > 0 {
		node.ref = types.NewIndirectRef(objNr, 0)
	}

	node.fieldType = e.fieldType(ctx, fieldDict, parent, arena)
	if node.fieldType == "Ch" {
		node.options = e.choiceOptions(ctx, fieldDict)
	}
	node.states = e.appearanceStates(ctx, fieldDict)

	idx := arena.add(node)

	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil {
			for _, kid := range kidsArray {
				kidDict, err := ctx.DereferenceDict(kid)
				if err != nil || kidDict == nil {
					continue
				}
				if _, hasName := kidDict.Find("T"); hasName {
					arena.nodes[idx].hasFieldKids = true
					if err := e.walkField(ctx, arena, kid, idx); err != nil {
						return err
					}
				} else {
					arena.nodes[idx].hasWidgetKids = true
					arena.nodes[idx].states = mergeStates(arena.nodes[idx].states,
						e.appearanceStates(ctx, kidDict))
				}
			}
		}
	}
	return nil
}

// fieldType resolves the /FT entry, falling back to the parent node for
// inherited declarations.
func (e *Extractor) fieldType(ctx *model.Context, fieldDict types.Dict, parent int, arena *fieldArena) string {
	if ftObj, found := fieldDict.Find("FT"); found {
		if ftName, err := ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			return string(ftName)
		}
	}
	if parent >= 0 {
		return arena.nodes[parent].fieldType
	}
	return ""
}

// choiceOptions reads the /Opt array of a choice field. Entries are
// either plain strings or [export, display] pairs.
func (e *Extractor) choiceOptions(ctx *model.Context, fieldDict types.Dict) []MenuItem {
	optObj, found := fieldDict.Find("Opt")
	if !found {
		return nil
	}
	optArray, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}

	var items []MenuItem
	for _, opt := range optArray {
		if s, err := ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			items = append(items, MenuItem{OptionValue: s, DisplayText: s})
			continue
		}
		if pair, err := ctx.DereferenceArray(opt); err == nil && len(pair) >= 2 {
			export, err1 := ctx.DereferenceStringOrHexLiteral(pair[0], model.V10, nil)
			display, err2 := ctx.DereferenceStringOrHexLiteral(pair[1], model.V10, nil)
			if err1 == nil && err2 == nil {
				items = append(items, MenuItem{OptionValue: export, DisplayText: display})
			}
		}
	}
	return items
}

// appearanceStates gathers the normal appearance state names of a widget
// dictionary. A widget that only declares its on appearance still has an
// implicit off rendering, so the off sentinel is supplied when absent.
func (e *Extractor) appearanceStates(ctx *model.Context, dict types.Dict) []string {
	apObj, found := dict.Find("AP")
	if !found {
		return nil
	}
	apDict, err := ctx.DereferenceDict(apObj)
	if err != nil || apDict == nil {
		return nil
	}
	nObj, found := apDict.Find("N")
	if !found {
		return nil
	}
	nDict, err := ctx.DereferenceDict(nObj)
	if err != nil || nDict == nil {
		return nil
	}

	states := make([]string, 0, len(nDict))
	for k := range nDict {
		states = append(states, k)
	}
	sort.Strings(states)
	if len(states) == 1 && states[0] != offState {
		states = append(states, offState)
	}
	return states
}

// collectWidgets walks every page's annotation list and records the
// geometry and appearance states needed by the assembly pass.
func (e *Extractor) collectWidgets(ctx *model.Context) ([]widgetAnnot, error) {
	var widgets []widgetAnnot

	for pageNum := 1; pageNum <= ctx.PageCount; pageNum++ {
		pageDict, _, _, err := ctx.PageDict(pageNum, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get page dict for page %d: %w", pageNum, err)
		}
		if pageDict == nil {
			continue
		}
		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annotsArray, err := ctx.DereferenceArray(annotsObj)
		if err != nil {
			continue
		}

		for _, annotObj := range annotsArray {
			w := widgetAnnot{pageNum: pageNum}
			if indRef, ok := annotObj.(types.IndirectRef); ok {
				w.objNr = int(indRef.ObjectNumber)
				w.ref = types.NewIndirectRef(w.objNr, 0)
			}
			annotDict, err := ctx.DereferenceDict(annotObj)
			if err != nil || annotDict == nil {
				continue
			}
			if parentObj, found := annotDict.Find("Parent"); found {
				if parentRef, ok := parentObj.(types.IndirectRef); ok {
					w.parentObjNr = int(parentRef.ObjectNumber)
				}
			}
			rect, ok := e.annotRect(ctx, annotDict)
			if !ok {
				continue
			}
			w.rect = rect
			w.states = e.appearanceStates(ctx, annotDict)
			widgets = append(widgets, w)
		}
	}
	return widgets, nil
}

// annotRect parses an annotation's /Rect array.
func (e *Extractor) annotRect(ctx *model.Context, annotDict types.Dict) (Rect, bool) {
	rectObj, found := annotDict.Find("Rect")
	if !found {
		return Rect{}, false
	}
	rectArray, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return Rect{}, false
	}
	var rect Rect
	for i, coord := range rectArray {
		f, err := ctx.DereferenceNumber(coord)
		if err != nil {
			return Rect{}, false
		}
		rect[i] = f
	}
	return rect, true
}

// mergeStates unions two state lists, keeping a stable sorted order.
func mergeStates(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var merged []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	sort.Strings(merged)
	return merged
}
