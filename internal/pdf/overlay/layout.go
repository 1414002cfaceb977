package overlay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// DefaultTextSize is assumed when an entry's text content does not name
// a size, matching the renderer's default.
const DefaultTextSize = 14

// maxDiagnostics caps the validator's output; one truncation notice is
// appended when the cap is reached and no further pairs are evaluated.
const maxDiagnostics = 20

// TextContent describes the text an entry box should receive.
type TextContent struct {
	Content   string  `json:"content,omitempty"`
	Font      string  `json:"font,omitempty"`
	TextSize  float64 `json:"text_size,omitempty"`
	TextColor string  `json:"text_color,omitempty"`
}

// FieldEntry is one authored field in the layout description: a label
// box, an entry box, and optionally the text to place in the entry box.
// Entries are external input and are never mutated.
type FieldEntry struct {
	Description string       `json:"description"`
	PageNum     int          `json:"page_num"`
	LabelBounds Box          `json:"label_bounds"`
	EntryBounds Box          `json:"entry_bounds"`
	TextContent *TextContent `json:"text_content,omitempty"`
}

// PageGeometry records the raster dimensions the layout was authored
// against, per page.
type PageGeometry struct {
	PageNum   int     `json:"page_num"`
	ImgWidth  float64 `json:"img_width"`
	ImgHeight float64 `json:"img_height"`
}

// Layout is the authored layout description for a non-interactive
// document.
type Layout struct {
	FieldEntries   []FieldEntry   `json:"field_entries"`
	PageDimensions []PageGeometry `json:"page_dimensions"`
}

// Geometry returns the raster dimensions recorded for a page.
func (l *Layout) Geometry(pageNum int) (PageGeometry, bool) {
	for _, g := range l.PageDimensions {
		if g.PageNum == pageNum {
			return g, true
		}
	}
	return PageGeometry{}, false
}

// LoadLayout reads and decodes a layout description from JSON.
func LoadLayout(r io.Reader) (*Layout, error) {
	var layout Layout
	if err := json.NewDecoder(r).Decode(&layout); err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to decode layout config", err)
	}
	return &layout, nil
}

// LoadLayoutFile reads a layout description from a file.
func LoadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to open layout config", err)
	}
	defer f.Close()
	return LoadLayout(f)
}

// boxRole pairs one bounding box with the entry it came from, so a
// diagnostic can name both sides of an overlap.
type boxRole struct {
	bounds Box
	role   string
	entry  *FieldEntry
}

// overlap tests strict axis-aligned interval intersection. Boxes that
// merely touch at an edge do not overlap.
func overlap(a, b Box) bool {
	noHorizontal := a[0] >= b[2] || a[2] <= b[0]
	noVertical := a[1] >= b[3] || a[3] <= b[1]
	return !(noHorizontal || noVertical)
}

// ValidateLayout checks an authored layout for overlapping bounding
// boxes and entry boxes too small for their text, before any rendering
// happens. The returned messages are the diagnostic stream: a leading
// count summary, zero or more findings, and, when nothing failed, one
// explicit success line. Callers must treat the presence of the success
// line, not the absence of failures, as the pass signal.
//
// Every unordered pair of boxes on the same page is tested, which is
// quadratic in the box count. Layouts are authoring-time input with tens
// of fields, so this is fine; do not replace the pairwise semantics with
// a sweep without revisiting the diagnostic ordering.
func ValidateLayout(layout *Layout) []string {
	messages := []string{fmt.Sprintf("Read %d field entries", len(layout.FieldEntries))}

	var boxes []boxRole
	for i := range layout.FieldEntries {
		entry := &layout.FieldEntries[i]
		boxes = append(boxes,
			boxRole{bounds: entry.LabelBounds, role: "label", entry: entry},
			boxRole{bounds: entry.EntryBounds, role: "entry", entry: entry},
		)
	}

	foundError := false
	truncate := func() []string {
		return append(messages, "Aborting remaining checks; fix the bounding boxes and retry")
	}

	for i, bi := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			bj := boxes[j]
			if bi.entry.PageNum != bj.entry.PageNum || !overlap(bi.bounds, bj.bounds) {
				continue
			}
			foundError = true
			if bi.entry == bj.entry {
				messages = append(messages, fmt.Sprintf(
					"FAIL: the label and entry bounds of %q overlap (%v, %v)",
					bi.entry.Description, bi.bounds, bj.bounds))
			} else {
				messages = append(messages, fmt.Sprintf(
					"FAIL: the %s bounds of %q (%v) overlap the %s bounds of %q (%v)",
					bi.role, bi.entry.Description, bi.bounds,
					bj.role, bj.entry.Description, bj.bounds))
			}
			if len(messages) >= maxDiagnostics {
				return truncate()
			}
		}

		if bi.role == "entry" && bi.entry.TextContent != nil {
			textSize := bi.entry.TextContent.TextSize
			if textSize == 0 {
				textSize = DefaultTextSize
			}
			if bi.bounds.Height() < textSize {
				foundError = true
				messages = append(messages, fmt.Sprintf(
					"FAIL: the entry bounds height (%v) of %q cannot fit its text content (text size: %v); increase the bounds height or reduce the text size",
					bi.bounds.Height(), bi.entry.Description, textSize))
				if len(messages) >= maxDiagnostics {
					return truncate()
				}
			}
		}
	}

	if !foundError {
		messages = append(messages, "SUCCESS: all bounding boxes are valid")
	}
	return messages
}
