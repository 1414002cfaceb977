package forms

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// buildPDF assembles a document from numbered object bodies, computing
// the cross-reference offsets from the serialized output.
func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)
	return buf.Bytes()
}

// writeFormFixture writes a one-page document carrying a text field, a
// checkbox with appearance states {1, Off} and a dropdown with two menu
// items, all as merged field/widget dictionaries.
func writeFormFixture(t *testing.T, dir string) string {
	t.Helper()

	emptyAppearance := "<< /Type /XObject /Subtype /Form /BBox [0 0 20 20] /Length 0 >>\nstream\n\nendstream"
	data := buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [4 0 R 5 0 R 6 0 R] /DA (/Helv 0 Tf 0 g) >> >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [4 0 R 5 0 R 6 0 R] >>",
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (name) /Rect [100 700 300 720] /P 3 0 R /F 4 >>",
		"<< /Type /Annot /Subtype /Widget /FT /Btn /T (agree) /Rect [100 650 120 670] /P 3 0 R /F 4" +
			" /AS /Off /AP << /N << /1 7 0 R /Off 8 0 R >> >> >>",
		"<< /Type /Annot /Subtype /Widget /FT /Ch /T (state) /Rect [100 600 200 620] /P 3 0 R /F 4" +
			" /Opt [(CA) (NV)] >>",
		emptyAppearance,
		emptyAppearance,
	})

	path := filepath.Join(dir, "form.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFillAndReextractRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	inPath := writeFormFixture(t, tempDir)
	outPath := filepath.Join(tempDir, "form-filled.pdf")

	extractor := NewExtractor()
	before, err := extractor.ExtractFile(inPath)
	require.NoError(t, err)
	require.Empty(t, before.Warnings)
	require.Len(t, before.Elements, 3)

	assert.Equal(t, "name", before.Elements[0].ElementID)
	assert.Equal(t, ElementTypeTextInput, before.Elements[0].ElementType)
	assert.Equal(t, "agree", before.Elements[1].ElementID)
	assert.Equal(t, ElementTypeToggleBox, before.Elements[1].ElementType)
	assert.Equal(t, "1", before.Elements[1].OnValue)
	assert.Equal(t, "Off", before.Elements[1].OffValue)
	assert.Equal(t, "state", before.Elements[2].ElementID)
	assert.Equal(t, ElementTypeDropdown, before.Elements[2].ElementType)

	diags, err := NewFiller().ApplyFile(inPath, []FillInstruction{
		{ElementID: "name", PageNum: 1, FillValue: "Jane Doe"},
		{ElementID: "agree", PageNum: 1, FillValue: "1"},
		{ElementID: "state", PageNum: 1, FillValue: "CA"},
	}, outPath)
	require.NoError(t, err)
	assert.Empty(t, diags)

	// The filled document classifies exactly as the unfilled one did.
	after, err := extractor.ExtractFile(outPath)
	require.NoError(t, err)
	assert.Empty(t, after.Warnings)
	assert.Equal(t, before.Elements, after.Elements)

	// Re-extraction is stable.
	again, err := extractor.ExtractFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, after.Elements, again.Elements)
}

func TestFillWritesValuesAndAppearanceState(t *testing.T) {
	tempDir := t.TempDir()
	inPath := writeFormFixture(t, tempDir)
	outPath := filepath.Join(tempDir, "form-filled.pdf")

	diags, err := NewFiller().ApplyFile(inPath, []FillInstruction{
		{ElementID: "name", PageNum: 1, FillValue: "Jane Doe"},
		{ElementID: "agree", PageNum: 1, FillValue: "1"},
	}, outPath)
	require.NoError(t, err)
	require.Empty(t, diags)

	out, err := os.Open(outPath)
	require.NoError(t, err)
	defer out.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(out, conf)
	require.NoError(t, err)

	rootDict, err := ctx.Catalog()
	require.NoError(t, err)
	acroFormObj, found := rootDict.Find("AcroForm")
	require.True(t, found)
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	require.NoError(t, err)
	assert.Equal(t, types.Boolean(true), acroFormDict["NeedAppearances"])

	fields, err := ctx.DereferenceArray(acroFormDict["Fields"])
	require.NoError(t, err)

	byName := make(map[string]types.Dict)
	for _, fieldRef := range fields {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		require.NoError(t, err)
		name, err := ctx.DereferenceStringOrHexLiteral(fieldDict["T"], model.V10, nil)
		require.NoError(t, err)
		byName[name] = fieldDict
	}

	value, err := ctx.DereferenceStringOrHexLiteral(byName["name"]["V"], model.V10, nil)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", value)

	assert.Equal(t, types.Name("1"), byName["agree"]["V"])
	assert.Equal(t, types.Name("1"), byName["agree"]["AS"])
}

func TestFillRejectionLeavesNoOutput(t *testing.T) {
	tempDir := t.TempDir()
	inPath := writeFormFixture(t, tempDir)
	outPath := filepath.Join(tempDir, "form-filled.pdf")

	original, err := os.ReadFile(inPath)
	require.NoError(t, err)

	diags, err := NewFiller().ApplyFile(inPath, []FillInstruction{
		{ElementID: "name", PageNum: 1, FillValue: "Jane Doe"},
		{ElementID: "agree", PageNum: 1, FillValue: "yes"},
	}, outPath)
	require.Error(t, err)
	assert.Equal(t, pdferrors.KindValidation, pdferrors.KindOf(err))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], `invalid value "yes" for toggle element "agree"`)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))

	unchanged, err := os.ReadFile(inPath)
	require.NoError(t, err)
	assert.Equal(t, original, unchanged)
}
