package capture

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/codesnap/idgen"
	"github.com/hazyhaar/codesnap/kit"
)

// RegisterMCP registers the capture tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerSelectionTool(srv)
	s.registerFileTool(srv)
	s.registerExportTool(srv)
	s.registerHistoryTool(srv)
	s.registerThemesTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func enrich(ctx context.Context) context.Context {
	return kit.WithRequestID(ctx, idgen.New())
}

// --- capture selection ---

type selectionReq struct {
	Text        string `json:"text"`
	Language    string `json:"language"`
	DisplayName string `json:"display_name"`
	StartLine   int    `json:"start_line"`
}

func (r selectionReq) request() Request {
	return Request{Text: r.Text, Language: r.Language, DisplayName: r.DisplayName, StartLine: r.StartLine}
}

func (s *Service) registerSelectionTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "codesnap_capture_selection",
		Description: "Render a code snippet as a styled card and show it on the capture surface.",
		InputSchema: inputSchema(map[string]any{
			"text":         map[string]any{"type": "string", "description": "Source text to capture"},
			"language":     map[string]any{"type": "string", "description": "Highlighter language tag; empty to detect"},
			"display_name": map[string]any{"type": "string", "description": "Name shown in the window chrome, e.g. the file name"},
			"start_line":   map[string]any{"type": "integer", "description": "1-based first line number"},
		}, []string{"text"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*selectionReq)
		if err := s.CaptureSelection(ctx, r.request()); err != nil {
			return nil, err
		}
		return map[string]any{"suggested_name": SuggestedFileName(r.DisplayName)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r selectionReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrich}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- capture file ---

type fileReq struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

func (s *Service) registerFileTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "codesnap_capture_file",
		Description: "Capture a file (or a 1-based inclusive line range of it) as a styled card.",
		InputSchema: inputSchema(map[string]any{
			"path":       map[string]any{"type": "string", "description": "File to capture"},
			"start_line": map[string]any{"type": "integer", "description": "First line, 1-based; 0 for whole file"},
			"end_line":   map[string]any{"type": "integer", "description": "Last line, inclusive; 0 for whole file"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*fileReq)
		if err := s.CaptureFile(ctx, r.Path, r.StartLine, r.EndLine); err != nil {
			return nil, err
		}
		return map[string]any{"suggested_name": SuggestedFileName(r.Path)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r fileReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrich}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- export ---

type exportReq struct {
	selectionReq
	Out string `json:"out"`
}

func (s *Service) registerExportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "codesnap_export",
		Description: "Render a snippet and write the PNG card straight to disk without prompting.",
		InputSchema: inputSchema(map[string]any{
			"text":         map[string]any{"type": "string", "description": "Source text to capture"},
			"language":     map[string]any{"type": "string", "description": "Highlighter language tag; empty to detect"},
			"display_name": map[string]any{"type": "string", "description": "Name shown in the window chrome"},
			"start_line":   map[string]any{"type": "integer", "description": "1-based first line number"},
			"out":          map[string]any{"type": "string", "description": "Output path; empty derives one from the display name"},
		}, []string{"text"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*exportReq)
		path, err := s.Export(ctx, r.request(), r.Out)
		if err != nil {
			return nil, err
		}
		return map[string]any{"path": path}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r exportReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrich}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- history ---

type historyReq struct {
	Limit int `json:"limit"`
}

func (s *Service) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "codesnap_history",
		Description: "List recent exports, newest first.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum entries to return (default 20)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*historyReq)
		limit := r.Limit
		if limit <= 0 {
			limit = 20
		}
		entries, err := s.Recent(ctx, limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"entries": entries}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r historyReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrich}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- themes ---

func (s *Service) registerThemesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "codesnap_themes",
		Description: "List the available card themes.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"themes": s.Themes()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
