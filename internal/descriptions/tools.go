package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Workflow Detection Tools
	PDFDetectFormFieldsDescription = `Detect whether a PDF carries interactive form fields and pick the right completion workflow.

**When to use:** First step for any form-completion task, before extracting or filling anything.

**Why it's useful:** Interactive forms and flat documents need entirely different workflows; probing once up front avoids wasted fill attempts on flat documents.

**Examples:**
• Route a new document: "Check tax-return.pdf to see if it can be filled directly"
• Triage a batch: "Detect form fields in every PDF under /intake/ before processing"
• Handle scans: "Check scanned-application.pdf; no fields and no text means it was scanned"

**Common workflows:**
1. Interactive Route: Detect fields → pdf_describe_form → pdf_fill_form
2. Overlay Route: No fields but text → author layout → pdf_validate_layout → pdf_apply_overlays
3. Scan Route: No fields, no text → author layout against page images → overlay

**Best practices:** Trust the recommendation in the response; it already accounts for both field presence and extractable text.`

	PDFDescribeFormDescription = `List every fillable element of an interactive PDF form in reading order.

**When to use:** After pdf_detect_form_fields reports interactive fields, to learn element ids, types, pages and valid values.

**Why it's useful:** Fill instructions must reference exact element ids and values from this model; guessing names or values gets the batch rejected.

**Examples:**
• Map a form: "Describe w9.pdf to get the element ids before filling"
• Inspect choices: "List the dropdown options in visa-application.pdf"
• Find toggles: "Get the on/off values of the checkboxes in consent-form.pdf"

**Common workflows:**
1. Fill Preparation: Describe form → match elements to data → build instructions → pdf_fill_form
2. Form Audit: Describe form → review warnings → fix unusual fields upstream
3. Data Mapping: Describe form → store the model → reuse for recurring fills

**Best practices:** Elements come back sorted by page and reading position; check the warnings list for elements that were dropped or had ambiguous states.`

	PDFFillFormDescription = `Fill interactive form fields and write the completed document to a new file.

**When to use:** After pdf_describe_form, with instructions built from its element ids and valid values.

**Why it's useful:** Values are validated against each element's domain before anything is written, and the batch is atomic: one bad value rejects all of it, so a half-filled document can never be produced.

**Examples:**
• Complete a form: "Fill name and address into application.pdf and save as application-filled.pdf"
• Set choices: "Select 'Individual' in the entity type group of w9.pdf"
• Check boxes: "Turn on the consent checkbox using its on_value from pdf_describe_form"

**Common workflows:**
1. Standard Fill: Describe → build instructions → fill → verify output
2. Retry Loop: Fill → read diagnostics → correct values → fill again
3. Recurring Fills: Cache the form model → fill many copies with different data

**Best practices:** Toggle boxes take their on_value or off_value, never "true"/"false". Page numbers in instructions must match the model.`

	// Overlay Tools
	PDFValidateLayoutDescription = `Check an overlay layout description for overlapping and undersized bounding boxes.

**When to use:** Every time a layout JSON is authored or edited, before pdf_apply_overlays.

**Why it's useful:** Overlapping boxes and text that cannot fit its entry box produce garbled output; catching them before rendering is far cheaper than inspecting a bad PDF.

**Examples:**
• Verify a layout: "Validate lease-layout.json before applying it to lease.pdf"
• Debug overlaps: "Find which label boxes collide in the dense section of the form"
• Check text fit: "Confirm every entry box is tall enough for its text size"

**Common workflows:**
1. Author Loop: Draft layout → validate → fix FAIL lines → validate until SUCCESS
2. Pre-render Gate: Validate → only call pdf_apply_overlays after the SUCCESS line
3. Bulk Authoring: Validate each layout → collect diagnostics → fix in one pass

**Best practices:** The check passes only when the final SUCCESS line appears. Output is capped; after many failures the remaining checks are skipped, so re-run after fixing.`

	PDFApplyOverlaysDescription = `Render layout text onto a PDF that has no interactive form fields.

**When to use:** For flat or scanned documents, after the layout validates cleanly.

**Why it's useful:** Completes documents that cannot be filled interactively. Latin text becomes lightweight annotations; CJK and other wide-glyph text switches the whole document to embedded-font rendering automatically.

**Examples:**
• Complete a flat form: "Apply lease-layout.json to lease.pdf and write lease-completed.pdf"
• CJK content: "Overlay the Japanese applicant name; a CJK-capable font must be installed"
• Scanned documents: "Place text on scanned-form.pdf using boxes measured on its page images"

**Common workflows:**
1. Overlay Route: pdf_page_geometry → author layout → pdf_validate_layout → pdf_apply_overlays
2. Font Setup: Run once → if wide-glyph font missing, install one from the error's guidance → retry
3. Review Loop: Apply → inspect output → adjust boxes → re-validate → re-apply

**Best practices:** Bounding boxes are in image coordinates; page_dimensions must record the raster size they were measured on. The input file is never modified.`

	PDFPageGeometryDescription = `Get the dimensions of every page of a PDF in PDF units.

**When to use:** When authoring an overlay layout, to understand how image-space boxes will map onto pages.

**Why it's useful:** Layouts are authored against page images whose pixel size differs from the PDF page size; knowing both sides of the mapping avoids misplaced text.

**Examples:**
• Before authoring: "Get the page sizes of lease.pdf to set up the coordinate mapping"
• Mixed page sizes: "Check whether page 3 of the appendix uses a different page format"
• Debug placement: "Compare page dimensions with the layout's page_dimensions to find scaling issues"

**Common workflows:**
1. Layout Authoring: Page geometry → render page images → measure boxes → build layout
2. Placement Debugging: Compare geometry against layout → fix img_width/img_height → re-apply

**Best practices:** Dimensions are MediaBox extents; a US Letter page is 612x792.`

	// Utility Tools
	PDFServerInfoDescription = `Get server status, available tools, limits and usage guidance.

**When to use:** Starting work with the form server, troubleshooting, or discovering capabilities.

**Why it's useful:** Reports the configured directory, the file size limit and a step-by-step guide for both completion workflows.

**Examples:**
• Orientation: "Show what this server can do and where it looks for files"
• Troubleshooting: "Check the max file size before processing a large scan"

**Best practices:** Consult the usage guidance when deciding between the interactive and overlay workflows.`
)
