package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Detector decides which completion workflow applies to a document:
// interactive form filling when the document carries form fields, text
// overlays when it only has flat text, neither when it looks scanned.
type Detector struct {
	maxFileSize int64
	conf        *model.Configuration
}

// NewDetector creates a new workflow detector with the specified constraints.
func NewDetector(maxFileSize int64) *Detector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Detector{
		maxFileSize: maxFileSize,
		conf:        conf,
	}
}

// DetectFile probes a PDF file for interactive form fields and
// extractable text and recommends a completion workflow.
func (d *Detector) DetectFile(req PDFDetectFormFieldsRequest) (*PDFDetectFormFieldsResult, error) {
	if err := d.validatePDFFile(req.Path); err != nil {
		return nil, err
	}

	fieldCount, err := d.countFormFields(req.Path)
	if err != nil {
		return nil, err
	}
	hasText := d.hasExtractableText(req.Path)

	result := &PDFDetectFormFieldsResult{
		Path:                 req.Path,
		HasInteractiveFields: fieldCount > 0,
		FieldCount:           fieldCount,
		HasText:              hasText,
	}
	result.Recommendation = recommendation(result)
	return result, nil
}

// validatePDFFile performs basic validation on a PDF file
func (d *Detector) validatePDFFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > d.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), d.maxFileSize)
	}

	return nil
}

// countFormFields counts the top-level entries of the document's
// interactive form dictionary.
func (d *Detector) countFormFields(filePath string) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, d.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return 0, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return 0, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return 0, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return 0, nil
	}
	fields, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return 0, nil
	}
	return len(fields), nil
}

// hasExtractableText probes the pages for any plain text. The probe
// stops at the first hit; partial page failures are skipped the same
// way full text extraction skips them.
func (d *Detector) hasExtractableText(filePath string) bool {
	defer func() {
		// The text extractor panics on some malformed content streams.
		recover() //nolint:errcheck
	}()

	f, pdfReader, err := pdf.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
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

// recommendation maps a detection result onto the completion workflow
// the caller should use next.
func recommendation(r *PDFDetectFormFieldsResult) string {
	switch {
	case r.HasInteractiveFields:
		return fmt.Sprintf("The document has %d interactive form field(s). "+
			"Use pdf_describe_form to list the fillable elements, then pdf_fill_form to complete them.",
			r.FieldCount)
	case r.HasText:
		return "The document has no interactive form fields but contains text. " +
			"Author a layout description, check it with pdf_validate_layout, then use pdf_apply_overlays."
	default:
		return "The document has no interactive form fields and no extractable text; " +
			"it is likely scanned. Text overlays can still be placed with pdf_apply_overlays, " +
			"but bounding boxes must be authored against page images."
	}
}
