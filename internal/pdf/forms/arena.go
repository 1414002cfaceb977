package forms

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// offState is the appearance state name PDF designates for the
// unselected rendering of toggle and radio widgets.
const offState = "Off"

// fieldNode is one field declaration in the document's field forest.
// Parent back-references are kept as arena indices rather than pointers,
// so the shared tree stays a flat, read-only structure.
type fieldNode struct {
	name      string
	parent    int // arena index, -1 for roots
	fieldType string // "Tx", "Btn", "Ch", or "" when undeclared

	// states holds the widget appearance-state names gathered from the
	// node's own /AP dictionary and those of widget-only kids.
	states []string

	// options holds the /Opt entries of a choice field.
	options []MenuItem

	hasFieldKids  bool
	hasWidgetKids bool

	objNr int
	ref   *types.IndirectRef
}

// fieldArena is the flattened field forest.
type fieldArena struct {
	nodes   []fieldNode
	byObjNr map[int]int
}

func newFieldArena() *fieldArena {
	return &fieldArena{byObjNr: make(map[int]int)}
}

// add appends a node and indexes it by object number.
func (a *fieldArena) add(n fieldNode) int {
	idx := len(a.nodes)
	a.nodes = append(a.nodes, n)
	if n.objNr > 0 {
		a.byObjNr[n.objNr] = idx
	}
	return idx
}

// qualifiedID concatenates the ancestor names from root to the given
// node with "." separators. Nodes without a name contribute nothing.
func (a *fieldArena) qualifiedID(idx int) string {
	var parts []string
	for i := idx; i >= 0; i = a.nodes[i].parent {
		if name := a.nodes[i].name; name != "" {
			parts = append(parts, name)
		}
	}
	// parts were collected leaf-first
	id := ""
	for i := len(parts) - 1; i >= 0; i-- {
		if id != "" {
			id += "."
		}
		id += parts[i]
	}
	return id
}

// widgetAnnot is one page annotation that may attach geometry to a field
// node, either as the node's merged widget or through its parent chain.
type widgetAnnot struct {
	pageNum     int
	rect        Rect
	objNr       int
	parentObjNr int
	states      []string
	ref         *types.IndirectRef
}

// owner resolves the arena node a widget annotation belongs to. A merged
// widget shares the field's object number; a standalone widget points at
// its field through /Parent.
func (a *fieldArena) owner(w widgetAnnot) (int, bool) {
	if idx, ok := a.byObjNr[w.objNr]; ok {
		return idx, true
	}
	if idx, ok := a.byObjNr[w.parentObjNr]; ok {
		return idx, true
	}
	return -1, false
}

// fillTarget records the document objects Apply mutates for one element.
type fillTarget struct {
	element   *FormElement
	fieldRef  *types.IndirectRef
	fieldType string
	widgets   []widgetTarget
}

// widgetTarget is one widget annotation dictionary reachable from a
// fill target, with the appearance states it can display.
type widgetTarget struct {
	ref    *types.IndirectRef
	states []string
}

// assembleModel turns the flattened field forest and the page annotation
// list into the published, ordered form model. It is pure: all document
// access happens before this point.
func assembleModel(arena *fieldArena, widgets []widgetAnnot) *Model {
	m := &Model{targets: make(map[string]*fillTarget)}

	leaves := make(map[string]*FormElement)
	located := make(map[string]bool)
	groupCandidates := make(map[int]string)
	var leafOrder []string

	for idx := range arena.nodes {
		n := &arena.nodes[idx]
		if n.hasFieldKids || n.hasWidgetKids {
			// Interior node. A button container is the declaration of a
			// mutually exclusive option group; everything else only
			// namespaces its children.
			if n.fieldType == "Btn" {
				groupCandidates[idx] = arena.qualifiedID(idx)
			}
			continue
		}

		id := arena.qualifiedID(idx)
		elem := classifyLeaf(n, id, m)
		leaves[id] = elem
		leafOrder = append(leafOrder, id)
		m.targets[id] = &fillTarget{
			element:   elem,
			fieldRef:  n.ref,
			fieldType: n.fieldType,
		}
	}

	// Widget pass: attach page numbers and bounds, and collect the
	// selectable options of button containers.
	groups := make(map[string]*FormElement)
	var groupOrder []string

	for _, w := range widgets {
		idx, ok := arena.owner(w)
		if !ok {
			continue
		}
		id := arena.qualifiedID(idx)

		if elem, ok := leaves[id]; ok {
			elem.PageNum = w.pageNum
			elem.Bounds = w.rect
			located[id] = true
			if w.ref != nil {
				m.targets[id].widgets = append(m.targets[id].widgets, widgetTarget{ref: w.ref, states: w.states})
			}
			continue
		}

		if _, ok := groupCandidates[idx]; !ok {
			continue
		}
		// A group member's normal appearance dictionary carries the off
		// state plus exactly one active state naming the choice.
		var active []string
		for _, s := range w.states {
			if s != offState {
				active = append(active, s)
			}
		}
		if len(active) != 1 {
			continue
		}
		grp, ok := groups[id]
		if !ok {
			grp = &FormElement{
				ElementID:   id,
				ElementType: ElementTypeOptionGroup,
				PageNum:     w.pageNum,
			}
			groups[id] = grp
			groupOrder = append(groupOrder, id)
			m.targets[id] = &fillTarget{
				element:   grp,
				fieldRef:  arena.nodes[idx].ref,
				fieldType: arena.nodes[idx].fieldType,
			}
		}
		grp.AvailableOptions = append(grp.AvailableOptions, GroupOption{
			OptionValue: active[0],
			Bounds:      w.rect,
		})
		if w.ref != nil {
			m.targets[id].widgets = append(m.targets[id].widgets, widgetTarget{ref: w.ref, states: w.states})
		}
	}

	// Fields may be declared with no visual presence; without a widget
	// there is no geometry to publish, so they are dropped.
	var elements []FormElement
	for _, id := range leafOrder {
		if located[id] {
			elements = append(elements, *leaves[id])
		} else {
			m.Warnings = append(m.Warnings,
				fmt.Sprintf("unable to determine the location of element %q; excluded from the model", id))
			delete(m.targets, id)
		}
	}
	for _, id := range groupOrder {
		elements = append(elements, *groups[id])
	}

	sort.SliceStable(elements, func(i, j int) bool {
		return elementLess(&elements[i], &elements[j])
	})
	m.Elements = elements

	// Re-point targets at the sorted copies.
	for i := range m.Elements {
		if t, ok := m.targets[m.Elements[i].ElementID]; ok {
			t.element = &m.Elements[i]
		}
	}
	return m
}

// classifyLeaf builds the published element for one leaf field node.
func classifyLeaf(n *fieldNode, id string, m *Model) *FormElement {
	elem := &FormElement{ElementID: id}
	switch n.fieldType {
	case "Tx":
		elem.ElementType = ElementTypeTextInput
	case "Ch":
		elem.ElementType = ElementTypeDropdown
		elem.MenuItems = append(elem.MenuItems, n.options...)
	case "Btn":
		elem.ElementType = ElementTypeToggleBox
		if len(n.states) == 2 {
			if n.states[0] == offState || n.states[1] == offState {
				elem.OffValue = offState
				elem.OnValue = n.states[0]
				if n.states[0] == offState {
					elem.OnValue = n.states[1]
				}
			} else {
				// The off sentinel is missing, so the on/off roles are
				// not recoverable from the document. Assign positionally
				// and flag the inference as unreliable.
				m.Warnings = append(m.Warnings,
					fmt.Sprintf("unusual appearance states for toggle box %q; its on/off values may be inverted, verify the result visually", id))
				elem.OnValue = n.states[0]
				elem.OffValue = n.states[1]
			}
		}
	default:
		elem.ElementType = ElementTypeUnknown
	}
	return elem
}

// elementLess orders elements by page, then top edge downwards, then
// left edge rightwards. An option group sits at its first option.
func elementLess(a, b *FormElement) bool {
	if a.PageNum != b.PageNum {
		return a.PageNum < b.PageNum
	}
	ab, bb := sortBounds(a), sortBounds(b)
	if ab.Top() != bb.Top() {
		return ab.Top() > bb.Top()
	}
	return ab.Left() < bb.Left()
}

func sortBounds(e *FormElement) Rect {
	if e.ElementType == ElementTypeOptionGroup && len(e.AvailableOptions) > 0 {
		return e.AvailableOptions[0].Bounds
	}
	return e.Bounds
}
