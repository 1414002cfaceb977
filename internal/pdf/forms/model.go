package forms

// ElementType identifies the kind of interactive form element.
type ElementType string

const (
	ElementTypeTextInput   ElementType = "text_input"
	ElementTypeToggleBox   ElementType = "toggle_box"
	ElementTypeOptionGroup ElementType = "option_group"
	ElementTypeDropdown    ElementType = "dropdown"
	ElementTypeUnknown     ElementType = "unknown"
)

// Rect is a PDF rectangle as stored in a widget annotation:
// [llx, lly, urx, ury] in page space.
type Rect [4]float64

// Left returns the smaller x coordinate.
func (r Rect) Left() float64 {
	if r[0] < r[2] {
		return r[0]
	}
	return r[2]
}

// Top returns the larger y coordinate.
func (r Rect) Top() float64 {
	if r[1] > r[3] {
		return r[1]
	}
	return r[3]
}

// MenuItem is one selectable entry of a dropdown element.
type MenuItem struct {
	OptionValue string `json:"option_value"`
	DisplayText string `json:"display_text"`
}

// GroupOption is one selectable choice of an option group, with the
// bounds of the widget annotation that renders it.
type GroupOption struct {
	OptionValue string `json:"option_value"`
	Bounds      Rect   `json:"bounds"`
}

// FormElement is one entry of the published form model. ElementID is the
// dot-qualified ancestor path and is unique across the document. The
// type-specific fields are populated only for the matching ElementType.
type FormElement struct {
	ElementID   string      `json:"element_id"`
	ElementType ElementType `json:"element_type"`
	PageNum     int         `json:"page_num"`
	Bounds      Rect        `json:"bounds,omitempty"`

	// toggle_box only
	OnValue  string `json:"on_value,omitempty"`
	OffValue string `json:"off_value,omitempty"`

	// option_group only
	AvailableOptions []GroupOption `json:"available_options,omitempty"`

	// dropdown only
	MenuItems []MenuItem `json:"menu_items,omitempty"`
}

// FillInstruction requests one element to be set to FillValue.
type FillInstruction struct {
	ElementID string `json:"element_id"`
	PageNum   int    `json:"page_num"`
	FillValue string `json:"fill_value"`
}

// Model is the canonical form model extracted from one document. It is
// recomputed in full on every extraction; there is no cached state.
type Model struct {
	Elements []FormElement `json:"elements"`

	// Warnings holds low-severity findings from extraction, such as
	// toggle boxes whose off state had to be inferred positionally.
	Warnings []string `json:"warnings,omitempty"`

	// targets maps element ids to the document objects Apply mutates.
	// Nil for models assembled outside a document context (tests).
	targets map[string]*fillTarget
}

// ElementByID returns the element with the given id, or nil.
func (m *Model) ElementByID(id string) *FormElement {
	for i := range m.Elements {
		if m.Elements[i].ElementID == id {
			return &m.Elements[i]
		}
	}
	return nil
}
