package pdf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/forms"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/overlay"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
)

// Service handles PDF form-completion operations by orchestrating the
// detection, extraction, filling and overlay components
type Service struct {
	maxFileSize   int64
	detector      *Detector
	extractor     *forms.Extractor
	filler        *forms.Filler
	renderer      *overlay.Renderer
	pathValidator *security.PathValidator
}

// NewService creates a new PDF form service with all components.
// fontPaths lists extra TrueType fonts probed before the platform
// defaults for wide-glyph overlay rendering.
func NewService(maxFileSize int64, configuredDirectory string, fontPaths []string) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	candidates := make([]overlay.FontCandidate, 0, len(fontPaths))
	for _, p := range fontPaths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		candidates = append(candidates, overlay.FontCandidate{Name: name, Path: p})
	}
	candidates = append(candidates, overlay.DefaultFontCandidates()...)
	fonts := overlay.ResolveFonts(candidates)

	return &Service{
		maxFileSize:   maxFileSize,
		detector:      NewDetector(maxFileSize),
		extractor:     forms.NewExtractor(),
		filler:        forms.NewFiller(),
		renderer:      overlay.NewRenderer(fonts),
		pathValidator: pathValidator,
	}, nil
}

// PDFDetectFormFields probes a document and recommends a completion workflow
func (s *Service) PDFDetectFormFields(req PDFDetectFormFieldsRequest) (*PDFDetectFormFieldsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.detector.DetectFile(req)
}

// PDFDescribeForm extracts the ordered form model of a document
func (s *Service) PDFDescribeForm(req PDFDescribeFormRequest) (*PDFDescribeFormResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.detector.validatePDFFile(req.Path); err != nil {
		return nil, err
	}

	m, err := s.extractor.ExtractFile(req.Path)
	if err != nil {
		return nil, err
	}
	return &PDFDescribeFormResult{
		Path:         req.Path,
		Elements:     m.Elements,
		ElementCount: len(m.Elements),
		Warnings:     m.Warnings,
	}, nil
}

// PDFFillForm validates and applies a batch of fill instructions. A batch
// with any invalid instruction is rejected whole: the result carries the
// per-instruction diagnostics and no output file is written.
func (s *Service) PDFFillForm(req PDFFillFormRequest) (*PDFFillFormResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidateOutputPath(req.OutputPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.detector.validatePDFFile(req.Path); err != nil {
		return nil, err
	}
	if len(req.Instructions) == 0 {
		return nil, pdferrors.New(pdferrors.KindInput, "no fill instructions given")
	}

	diags, err := s.filler.ApplyFile(req.Path, req.Instructions, req.OutputPath)
	if err != nil {
		if pdferrors.KindOf(err) == pdferrors.KindValidation {
			return &PDFFillFormResult{
				Path:        req.Path,
				Success:     false,
				Diagnostics: diags,
			}, nil
		}
		return nil, err
	}
	return &PDFFillFormResult{
		Path:        req.Path,
		OutputPath:  req.OutputPath,
		Success:     true,
		FilledCount: len(req.Instructions),
	}, nil
}

// PDFValidateLayout runs the layout checks and returns the diagnostic
// stream. The layout passes only when the explicit success line is
// present; an error-free stream without it means the checks were cut
// short.
func (s *Service) PDFValidateLayout(req PDFValidateLayoutRequest) (*PDFValidateLayoutResult, error) {
	if err := s.pathValidator.ValidatePath(req.LayoutPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	layout, err := overlay.LoadLayoutFile(req.LayoutPath)
	if err != nil {
		return nil, err
	}
	messages := overlay.ValidateLayout(layout)
	return &PDFValidateLayoutResult{
		LayoutPath: req.LayoutPath,
		Valid:      layoutPassed(messages),
		Messages:   messages,
	}, nil
}

// PDFApplyOverlays validates a layout and renders its text onto the
// document. Rendering is refused while the layout has validation
// failures; the result then carries the diagnostic stream instead.
func (s *Service) PDFApplyOverlays(req PDFApplyOverlaysRequest) (*PDFApplyOverlaysResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidatePath(req.LayoutPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidateOutputPath(req.OutputPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.detector.validatePDFFile(req.Path); err != nil {
		return nil, err
	}

	layout, err := overlay.LoadLayoutFile(req.LayoutPath)
	if err != nil {
		return nil, err
	}

	messages := overlay.ValidateLayout(layout)
	if !layoutPassed(messages) {
		return &PDFApplyOverlaysResult{
			Path:     req.Path,
			Success:  false,
			Messages: messages,
		}, nil
	}

	res, err := s.renderer.ApplyFile(req.Path, layout, req.OutputPath)
	if err != nil {
		return nil, err
	}
	return &PDFApplyOverlaysResult{
		Path:         req.Path,
		OutputPath:   req.OutputPath,
		Success:      true,
		Strategy:     res.Strategy,
		OverlayCount: res.OverlayCount,
		FontName:     res.FontName,
	}, nil
}

// PDFPageGeometry returns the MediaBox dimensions of every page
func (s *Service) PDFPageGeometry(req PDFPageGeometryRequest) (*PDFPageGeometryResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.detector.validatePDFFile(req.Path); err != nil {
		return nil, err
	}

	ctx, err := api.ReadContextFile(req.Path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to read PDF", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindInput, "failed to ensure page count", err)
	}
	dims, err := overlay.PageDimensions(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]PageDimensions, 0, ctx.PageCount)
	for pageNum := 1; pageNum <= ctx.PageCount; pageNum++ {
		d := dims[pageNum]
		pages = append(pages, PageDimensions{PageNum: pageNum, Width: d[0], Height: d[1]})
	}
	return &PDFPageGeometryResult{Path: req.Path, Pages: pages}, nil
}

// layoutPassed reports whether the diagnostic stream ends in the
// explicit success line.
func layoutPassed(messages []string) bool {
	return len(messages) > 0 && strings.HasPrefix(messages[len(messages)-1], "SUCCESS:")
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

// PDFServerInfo returns comprehensive server information and usage guidance
func (s *Service) PDFServerInfo(_ PDFServerInfoRequest, serverName, version,
	defaultDirectory string,
) (*PDFServerInfoResult, error) {
	validatedDir := defaultDirectory
	if err := s.pathValidator.ValidateDirectory(defaultDirectory); err != nil {
		validatedDir = s.pathValidator.ConfiguredDirectory()
	}

	availableTools := []ToolInfo{
		{
			Name:        "pdf_detect_form_fields",
			Description: "Detect whether a PDF has interactive form fields",
			Usage: "Use this tool first to decide between the interactive fill workflow " +
				"and the text overlay workflow.",
			Parameters: "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_describe_form",
			Description: "List the fillable elements of an interactive PDF form",
			Usage: "Use this tool to get element ids, types, page numbers and valid values " +
				"before calling pdf_fill_form.",
			Parameters: "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_fill_form",
			Description: "Fill interactive form fields and write a completed copy",
			Usage: "Use this tool with element ids from pdf_describe_form. The batch is " +
				"applied atomically: one invalid value rejects all of it.",
			Parameters: "path (required): input PDF, output_path (required): where to write " +
				"the filled PDF, instructions (required): list of {element_id, page_num, fill_value}",
		},
		{
			Name:        "pdf_validate_layout",
			Description: "Check an overlay layout description for overlaps and undersized boxes",
			Usage:       "Use this tool to verify a layout before pdf_apply_overlays.",
			Parameters:  "layout_path (required): Full absolute path to the layout JSON file",
		},
		{
			Name:        "pdf_apply_overlays",
			Description: "Render layout text onto a PDF without interactive fields",
			Usage: "Use this tool for flat documents. Wide-glyph text (CJK) switches the whole " +
				"document to embedded-font rendering and needs a capable font installed.",
			Parameters: "path (required): input PDF, layout_path (required): layout JSON, " +
				"output_path (required): where to write the result",
		},
		{
			Name:        "pdf_page_geometry",
			Description: "Get the page dimensions of a PDF in PDF units",
			Usage:       "Use this tool to map image-space bounding boxes onto pages when authoring a layout.",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_server_info",
			Description: "Get server capabilities and usage guidance",
			Usage:       "Use this tool to discover the available tools and limits.",
			Parameters:  "none",
		},
	}

	usageGuidance := `PDF Form Completion Server Usage Guide:

1. DETECT THE WORKFLOW:
   - Use 'pdf_detect_form_fields' on the document
   - has_interactive_fields = true: interactive fill workflow
   - has_interactive_fields = false: text overlay workflow

2. INTERACTIVE FILL WORKFLOW:
   - Use 'pdf_describe_form' to list elements in reading order
   - Each element names its valid values:
     * text_input: any string
     * toggle_box: on_value or off_value
     * option_group / dropdown: one of the listed option values
   - Use 'pdf_fill_form' with the element ids and values
   - The batch is atomic: fix every reported diagnostic and retry

3. TEXT OVERLAY WORKFLOW:
   - Use 'pdf_page_geometry' to get page dimensions
   - Author a layout JSON with label and entry bounding boxes in
     image coordinates plus the page_dimensions they were measured on
   - Use 'pdf_validate_layout' until it reports SUCCESS
   - Use 'pdf_apply_overlays' to render the text

IMPORTANT NOTES:
- Always use absolute file paths within the configured directory
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB
- Filled and overlaid documents are written to new files; inputs are never modified
- CJK text requires an installed TrueType font with wide-glyph coverage`

	return &PDFServerInfoResult{
		ServerName:       serverName,
		Version:          version,
		DefaultDirectory: validatedDir,
		MaxFileSize:      s.maxFileSize,
		AvailableTools:   availableTools,
		UsageGuidance:    usageGuidance,
	}, nil
}
