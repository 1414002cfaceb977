package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/forms"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	detectTool := mcp.NewTool(
		"pdf_detect_form_fields",
		mcp.WithDescription(descriptions.PDFDetectFormFieldsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(detectTool, s.handlePDFDetectFormFields)

	describeTool := mcp.NewTool(
		"pdf_describe_form",
		mcp.WithDescription(descriptions.PDFDescribeFormDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(describeTool, s.handlePDFDescribeForm)

	fillTool := mcp.NewTool(
		"pdf_fill_form",
		mcp.WithDescription(descriptions.PDFFillFormDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the input PDF file"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Full path to write the filled PDF to"),
		),
		mcp.WithArray("instructions",
			mcp.Required(),
			mcp.Description("Fill instructions: objects with element_id, page_num and fill_value"),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handlePDFFillForm)

	validateLayoutTool := mcp.NewTool(
		"pdf_validate_layout",
		mcp.WithDescription(descriptions.PDFValidateLayoutDescription),
		mcp.WithString("layout_path",
			mcp.Required(),
			mcp.Description("Full path to the layout JSON file"),
		),
	)
	s.mcpServer.AddTool(validateLayoutTool, s.handlePDFValidateLayout)

	applyOverlaysTool := mcp.NewTool(
		"pdf_apply_overlays",
		mcp.WithDescription(descriptions.PDFApplyOverlaysDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the input PDF file"),
		),
		mcp.WithString("layout_path",
			mcp.Required(),
			mcp.Description("Full path to the layout JSON file"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Full path to write the overlaid PDF to"),
		),
	)
	s.mcpServer.AddTool(applyOverlaysTool, s.handlePDFApplyOverlays)

	pageGeometryTool := mcp.NewTool(
		"pdf_page_geometry",
		mcp.WithDescription(descriptions.PDFPageGeometryDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pageGeometryTool, s.handlePDFPageGeometry)

	serverInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.PDFServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFDetectFormFields(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFDetectFormFieldsRequest{Path: path}
	result, err := s.pdfService.PDFDetectFormFields(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Workflow detection for: %s\n", result.Path)
	responseText += fmt.Sprintf("Interactive form fields: %t\n", result.HasInteractiveFields)
	if result.HasInteractiveFields {
		responseText += fmt.Sprintf("Field count: %d\n", result.FieldCount)
	}
	responseText += fmt.Sprintf("Extractable text: %t\n", result.HasText)
	responseText += "\n" + result.Recommendation + "\n"

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFDescribeForm(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFDescribeFormRequest{Path: path}
	result, err := s.pdfService.PDFDescribeForm(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFDescribeFormResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFFillForm(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	instructions, err := decodeInstructions(request.GetArguments()["instructions"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFFillFormRequest{
		Path:         path,
		OutputPath:   outputPath,
		Instructions: instructions,
	}
	result, err := s.pdfService.PDFFillForm(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFFillFormResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFValidateLayout(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	layoutPath, err := request.RequireString("layout_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateLayoutRequest{LayoutPath: layoutPath}
	result, err := s.pdfService.PDFValidateLayout(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Layout validation for: %s\n\n", result.LayoutPath)
	for _, msg := range result.Messages {
		responseText += msg + "\n"
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFApplyOverlays(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	layoutPath, err := request.RequireString("layout_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFApplyOverlaysRequest{
		Path:       path,
		LayoutPath: layoutPath,
		OutputPath: outputPath,
	}
	result, err := s.pdfService.PDFApplyOverlays(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFApplyOverlaysResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFPageGeometry(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFPageGeometryRequest{Path: path}
	result, err := s.pdfService.PDFPageGeometry(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Page geometry for: %s\n", result.Path)
	responseText += fmt.Sprintf("Pages: %d\n\n", len(result.Pages))
	for _, p := range result.Pages {
		responseText += fmt.Sprintf("Page %d: %.2f x %.2f\n", p.PageNum, p.Width, p.Height)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	req := pdf.PDFServerInfoRequest{}
	result, err := s.pdfService.PDFServerInfo(req, s.config.ServerName, s.config.Version, s.config.PDFDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFServerInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// decodeInstructions converts the raw tool argument into typed fill
// instructions by round-tripping through JSON.
func decodeInstructions(raw interface{}) ([]forms.FillInstruction, error) {
	if raw == nil {
		return nil, fmt.Errorf("instructions are required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid instructions: %w", err)
	}
	var instructions []forms.FillInstruction
	if err := json.Unmarshal(data, &instructions); err != nil {
		return nil, fmt.Errorf("invalid instructions: %w", err)
	}
	return instructions, nil
}

// Formatting methods
func (s *Server) formatPDFDescribeFormResult(result *pdf.PDFDescribeFormResult) string {
	text := fmt.Sprintf("Form model for: %s\n", result.Path)
	text += fmt.Sprintf("Fillable elements: %d\n", result.ElementCount)

	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, w := range result.Warnings {
			text += fmt.Sprintf("  - %s\n", w)
		}
	}

	text += "\nElements:\n"
	for i, elem := range result.Elements {
		text += fmt.Sprintf("%d. %s (%s, page %d)\n", i+1, elem.ElementID, elem.ElementType, elem.PageNum)
		switch elem.ElementType {
		case forms.ElementTypeToggleBox:
			text += fmt.Sprintf("   On value: %s, Off value: %s\n", elem.OnValue, elem.OffValue)
		case forms.ElementTypeOptionGroup:
			text += "   Options:"
			for _, opt := range elem.AvailableOptions {
				text += " " + opt.OptionValue
			}
			text += "\n"
		case forms.ElementTypeDropdown:
			text += "   Menu items:\n"
			for _, item := range elem.MenuItems {
				if item.DisplayText != "" && item.DisplayText != item.OptionValue {
					text += fmt.Sprintf("     %s (%s)\n", item.OptionValue, item.DisplayText)
				} else {
					text += fmt.Sprintf("     %s\n", item.OptionValue)
				}
			}
		}
	}

	return text
}

func (s *Server) formatPDFFillFormResult(result *pdf.PDFFillFormResult) string {
	if !result.Success {
		text := fmt.Sprintf("Fill rejected for: %s\n", result.Path)
		text += "No output was written. Fix the following and retry:\n\n"
		for _, d := range result.Diagnostics {
			text += d + "\n"
		}
		return text
	}

	text := fmt.Sprintf("Successfully filled: %s\n", result.Path)
	text += fmt.Sprintf("Fields filled: %d\n", result.FilledCount)
	text += fmt.Sprintf("Output written to: %s\n", result.OutputPath)
	return text
}

func (s *Server) formatPDFApplyOverlaysResult(result *pdf.PDFApplyOverlaysResult) string {
	if !result.Success {
		text := fmt.Sprintf("Overlay rejected for: %s\n", result.Path)
		text += "The layout did not validate. No output was written.\n\n"
		for _, msg := range result.Messages {
			text += msg + "\n"
		}
		return text
	}

	text := fmt.Sprintf("Successfully applied overlays to: %s\n", result.Path)
	text += fmt.Sprintf("Overlays placed: %d\n", result.OverlayCount)
	text += fmt.Sprintf("Strategy: %s\n", result.Strategy)
	if result.FontName != "" {
		text += fmt.Sprintf("Embedded font: %s\n", result.FontName)
	}
	text += fmt.Sprintf("Output written to: %s\n", result.OutputPath)
	return text
}

func (s *Server) formatPDFServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF form MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport only does stdio for now.
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
