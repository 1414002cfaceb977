package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/forms"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", pdfPath)
		os.Exit(1)
	}

	result, err := describeForm(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error describing form: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("PDF Describe Form - List the fillable elements of an interactive PDF form")
	fmt.Println()
	fmt.Println("This tool extracts the canonical form model of a PDF: every fillable element")
	fmt.Println("with its id, type, page, position and valid values, in reading order. The ids")
	fmt.Println("and values it prints are exactly what pdf_fill_form accepts.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -verbose       Enable verbose output")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("ELEMENT TYPES:")
	fmt.Println("  • text_input     free text fields, filled with any string")
	fmt.Println("  • toggle_box     checkboxes, filled with their on or off value")
	fmt.Println("  • option_group   radio button groups, filled with one option value")
	fmt.Println("  • dropdown       choice menus, filled with one listed value")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  pdf_describe_form application.pdf")
	fmt.Println("  pdf_describe_form -format json -verbose forms/w9.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  pdf_describe_form [OPTIONS] <pdf_file>")
}

// FormDescription represents the complete result of a form model extraction
type FormDescription struct {
	FilePath     string              `json:"file_path"`
	Success      bool                `json:"success"`
	ElementCount int                 `json:"element_count"`
	Elements     []forms.FormElement `json:"elements"`
	Warnings     []string            `json:"warnings,omitempty"`
	Error        string              `json:"error,omitempty"`
}

func describeForm(pdfPath string) (*FormDescription, error) {
	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	result := &FormDescription{
		FilePath: absPath,
		Success:  false,
	}

	if *verbose {
		fmt.Printf("🔍 Analyzing PDF: %s\n\n", absPath)
	}

	extractor := forms.NewExtractor()
	m, err := extractor.ExtractFile(absPath)
	if err != nil {
		result.Error = err.Error()
		return result, nil // Don't fail, return error in result
	}

	result.Success = true
	result.ElementCount = len(m.Elements)
	result.Elements = m.Elements
	result.Warnings = m.Warnings

	return result, nil
}

func outputResults(result *FormDescription) error {
	switch *outputFormat {
	case "json":
		return outputJSON(result)
	case "text":
		return outputText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(result *FormDescription) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *FormDescription) error {
	if !result.Success {
		fmt.Printf("❌ Form description failed: %s\n", result.Error)
		return nil
	}

	if result.ElementCount == 0 {
		fmt.Println("⚠️  No fillable elements detected in the PDF")
		fmt.Println()
		fmt.Println("SUGGESTIONS:")
		fmt.Println("• This PDF may not contain interactive forms")
		fmt.Println("• The document might be flat or scanned; use the text overlay workflow")
		fmt.Println("• Check if the PDF has fillable fields in a PDF viewer")
		return nil
	}

	fmt.Printf("✅ Found %d fillable element(s)\n\n", result.ElementCount)

	for i, elem := range result.Elements {
		fmt.Printf("[%d] %s\n", i+1, elem.ElementID)
		fmt.Printf("    Type: %s\n", elem.ElementType)
		fmt.Printf("    Page: %d\n", elem.PageNum)
		fmt.Printf("    Position: (%.1f, %.1f) to (%.1f, %.1f)\n",
			elem.Bounds[0], elem.Bounds[1], elem.Bounds[2], elem.Bounds[3])

		switch elem.ElementType {
		case forms.ElementTypeToggleBox:
			fmt.Printf("    On value: %s\n", elem.OnValue)
			fmt.Printf("    Off value: %s\n", elem.OffValue)
		case forms.ElementTypeOptionGroup:
			fmt.Println("    Options:")
			for _, opt := range elem.AvailableOptions {
				fmt.Printf("      %s (page position %.1f, %.1f)\n",
					opt.OptionValue, opt.Bounds[0], opt.Bounds[1])
			}
		case forms.ElementTypeDropdown:
			fmt.Println("    Menu items:")
			for _, item := range elem.MenuItems {
				if item.DisplayText != "" && item.DisplayText != item.OptionValue {
					fmt.Printf("      %s (%s)\n", item.OptionValue, item.DisplayText)
				} else {
					fmt.Printf("      %s\n", item.OptionValue)
				}
			}
		}

		fmt.Println()
	}

	if len(result.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, warning := range result.Warnings {
			fmt.Printf("  ⚠️  %s\n", warning)
		}
		fmt.Println()
	}

	if *verbose {
		fmt.Println("For filling, consider using:")
		fmt.Println("  • pdf_fill_form with the element ids above")
		fmt.Println("  • pdf_server_info for the full workflow guide")
		fmt.Println()
	}

	return nil
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
