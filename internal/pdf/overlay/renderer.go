package overlay

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Strategy selects how overlay text reaches the page.
type Strategy string

const (
	// StrategyAnnotation attaches free-text annotations. Lightweight and
	// editable afterwards, but exact font size and color fidelity is
	// viewer-dependent.
	StrategyAnnotation Strategy = "annotation"

	// StrategyEmbedded burns the text into the page content with an
	// embedded TrueType font, required for wide-glyph text.
	StrategyEmbedded Strategy = "embedded_font"
)

// RenderResult summarizes one overlay run.
type RenderResult struct {
	Strategy     Strategy `json:"strategy"`
	OverlayCount int      `json:"overlay_count"`
	FontName     string   `json:"font_name,omitempty"`
}

// Renderer applies a validated layout to a document, choosing one
// rendering strategy for the whole document: as soon as any entry needs
// wide-glyph coverage, every page goes through the embedded-glyph path.
// A per-page mix would complicate the output contract for no gain at
// authoring scale.
type Renderer struct {
	fonts *FontSet
	conf  *model.Configuration
}

// NewRenderer creates a renderer using the given resolved font set.
func NewRenderer(fonts *FontSet) *Renderer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Renderer{fonts: fonts, conf: conf}
}

// ChooseStrategy returns the document-wide strategy for a layout.
func ChooseStrategy(layout *Layout) Strategy {
	if NeedsWideGlyphs(layout) {
		return StrategyEmbedded
	}
	return StrategyAnnotation
}

// ApplyFile renders the layout's text onto the input document and
// writes the result to outPath. Page count and order are preserved;
// only visual content changes. On any failure no output file is
// produced.
func (r *Renderer) ApplyFile(inPath string, layout *Layout, outPath string) (*RenderResult, error) {
	file, err := os.Open(inPath)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to open PDF", err)
	}
	defer file.Close()

	ctx, err := api.ReadContext(file, r.conf)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to read PDF", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to ensure page count", err)
	}

	dims, err := PageDimensions(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLayoutPages(layout, ctx.PageCount, dims); err != nil {
		return nil, err
	}

	switch ChooseStrategy(layout) {
	case StrategyEmbedded:
		font, ok := r.fonts.First()
		if !ok {
			return nil, missingFontError(r.fonts.probed)
		}
		count, err := r.renderEmbedded(inPath, layout, dims, ctx.PageCount, font, outPath)
		if err != nil {
			return nil, err
		}
		return &RenderResult{Strategy: StrategyEmbedded, OverlayCount: count, FontName: font.Name}, nil
	default:
		count, err := r.renderAnnotations(ctx, layout, dims)
		if err != nil {
			return nil, err
		}
		if err := api.WriteContextFile(ctx, outPath); err != nil {
			return nil, pdferrors.Wrap(pdferrors.KindInternal, "failed to write overlay PDF", err)
		}
		return &RenderResult{Strategy: StrategyAnnotation, OverlayCount: count}, nil
	}
}

// PageDimensions reads the MediaBox extent of every page, keyed by
// 1-based page number as [width, height].
func PageDimensions(ctx *model.Context) (map[int][2]float64, error) {
	dims := make(map[int][2]float64, ctx.PageCount)
	for pageNum := 1; pageNum <= ctx.PageCount; pageNum++ {
		_, _, inhPAttrs, err := ctx.PageDict(pageNum, true)
		if err != nil {
			return nil, pdferrors.Wrap(pdferrors.KindInput,
				fmt.Sprintf("failed to get page dict for page %d", pageNum), err)
		}
		mb := inhPAttrs.MediaBox
		if mb == nil {
			return nil, pdferrors.Newf(pdferrors.KindInput, "page %d has no MediaBox", pageNum)
		}
		dims[pageNum] = [2]float64{mb.UR.X - mb.LL.X, mb.UR.Y - mb.LL.Y}
	}
	return dims, nil
}

// checkLayoutPages rejects entries referencing pages the document does
// not have or pages without recorded raster dimensions, before any
// rendering begins.
func checkLayoutPages(layout *Layout, pageCount int, dims map[int][2]float64) error {
	for _, entry := range layout.FieldEntries {
		if entry.PageNum < 1 || entry.PageNum > pageCount {
			return pdferrors.Newf(pdferrors.KindInput,
				"field entry %q references page %d, but the document has %d page(s)",
				entry.Description, entry.PageNum, pageCount)
		}
		if _, ok := layout.Geometry(entry.PageNum); !ok {
			return pdferrors.Newf(pdferrors.KindInput,
				"no page dimensions recorded for page %d (field entry %q)",
				entry.PageNum, entry.Description)
		}
		if _, ok := dims[entry.PageNum]; !ok {
			return pdferrors.Newf(pdferrors.KindInput,
				"no document geometry for page %d", entry.PageNum)
		}
	}
	return nil
}

// renderAnnotations attaches one free-text annotation per entry with
// text content, at the mapped entry bounds.
func (r *Renderer) renderAnnotations(ctx *model.Context, layout *Layout, dims map[int][2]float64) (int, error) {
	count := 0
	for i := range layout.FieldEntries {
		entry := &layout.FieldEntries[i]
		if entry.TextContent == nil || entry.TextContent.Content == "" {
			continue
		}
		g, _ := layout.Geometry(entry.PageNum)
		d := dims[entry.PageNum]
		pb := MapToPage(entry.EntryBounds, g.ImgWidth, g.ImgHeight, d[0], d[1])

		textSize := entry.TextContent.TextSize
		if textSize == 0 {
			textSize = DefaultTextSize
		}
		red, green, blue := parseHexColor(entry.TextContent.TextColor)

		ann := types.Dict{
			"Type":     types.Name("Annot"),
			"Subtype":  types.Name("FreeText"),
			"Rect":     types.NewNumberArray(pb.Left, pb.YMin(), pb.Right, pb.YMax()),
			"Contents": types.StringLiteral(entry.TextContent.Content),
			// The appearance string can only name a font resource, so it
			// falls back to Helvetica; size and color fidelity is
			// viewer-dependent.
			"DA": types.StringLiteral(fmt.Sprintf("/Helv %v Tf %v %v %v rg", textSize, red, green, blue)),
			"F":  types.Integer(4), // Print
		}
		// The requested family rides along in the default style string
		// for viewers that honor it.
		if fam := entry.TextContent.Font; fam != "" {
			ann["DS"] = types.StringLiteral(fmt.Sprintf("font: %vpt %s", textSize, fam))
		}
		ref, err := ctx.IndRefForNewObject(ann)
		if err != nil {
			return 0, pdferrors.Wrap(pdferrors.KindInternal, "failed to allocate annotation object", err)
		}

		pageDict, _, _, err := ctx.PageDict(entry.PageNum, false)
		if err != nil {
			return 0, pdferrors.Wrap(pdferrors.KindInternal,
				fmt.Sprintf("failed to get page dict for page %d", entry.PageNum), err)
		}
		if annotsObj, found := pageDict.Find("Annots"); found {
			annots, err := ctx.DereferenceArray(annotsObj)
			if err != nil {
				return 0, pdferrors.Wrap(pdferrors.KindInternal, "failed to dereference Annots", err)
			}
			pageDict["Annots"] = append(annots, *ref)
		} else {
			pageDict["Annots"] = types.Array{*ref}
		}
		count++
	}
	return count, nil
}

// renderEmbedded rebuilds the document by importing every input page as
// a template onto a page-sized scratch canvas and drawing the text with
// an embedded TrueType font. The canvas lives in memory and is released
// with the call, success or failure; the output file is written only
// after the whole document rendered.
func (r *Renderer) renderEmbedded(inPath string, layout *Layout, dims map[int][2]float64,
	pageCount int, font FontCandidate, outPath string,
) (int, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return 0, pdferrors.Wrap(pdferrors.KindInput, "failed to read PDF", err)
	}

	entriesByPage := make(map[int][]*FieldEntry)
	for i := range layout.FieldEntries {
		entry := &layout.FieldEntries[i]
		if entry.TextContent != nil && entry.TextContent.Content != "" {
			entriesByPage[entry.PageNum] = append(entriesByPage[entry.PageNum], entry)
		}
	}

	doc := fpdf.New("P", "pt", "", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddUTF8Font(font.Name, "", font.Path)
	if doc.Err() {
		return 0, pdferrors.Wrap(pdferrors.KindResourceUnavailable,
			fmt.Sprintf("failed to load font %s from %s", font.Name, font.Path), doc.Error())
	}

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))

	count := 0
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		d := dims[pageNum]
		pageW, pageH := d[0], d[1]
		doc.AddPageFormat("P", fpdf.SizeType{Wd: pageW, Ht: pageH})

		tpl := importer.ImportPageFromStream(doc, &rs, pageNum, "/MediaBox")
		importer.UseImportedTemplate(doc, tpl, 0, 0, pageW, 0)

		for _, entry := range entriesByPage[pageNum] {
			g, _ := layout.Geometry(pageNum)
			pb := MapToPage(entry.EntryBounds, g.ImgWidth, g.ImgHeight, pageW, pageH)

			content := entry.TextContent.Content
			textSize := entry.TextContent.TextSize
			if textSize == 0 {
				textSize = DefaultTextSize
			}
			if ContainsWideGlyphs(content) {
				doc.SetFont(font.Name, "", textSize)
			} else {
				// Latin-only entries keep a core font; matches the
				// annotation strategy's rendering.
				doc.SetFont("Helvetica", "", textSize)
			}
			red, green, blue := parseHexColor255(entry.TextContent.TextColor)
			doc.SetTextColor(red, green, blue)

			// The canvas origin is top-left with y growing downward, so
			// the PDF-space baseline flips once more.
			doc.Text(pb.Left, pageH-pb.YMin(), content)
			count++
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return 0, pdferrors.Wrap(pdferrors.KindInternal, "failed to render overlay pages", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return 0, pdferrors.Wrap(pdferrors.KindInternal, "failed to write overlay PDF", err)
	}
	return count, nil
}

// parseHexColor converts an RRGGBB string into unit-range components.
// Malformed input falls back to black.
func parseHexColor(s string) (red, green, blue float64) {
	r8, g8, b8 := parseHexColor255(s)
	return float64(r8) / 255, float64(g8) / 255, float64(b8) / 255
}

// parseHexColor255 converts an RRGGBB string into 8-bit components.
func parseHexColor255(s string) (red, green, blue int) {
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
