package server

import (
	"context"
	"encoding/json"

	"github.com/ironsheep/image-maker/internal/batch"
	"github.com/ironsheep/image-maker/internal/catalog"
	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/errors"
	"github.com/ironsheep/image-maker/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dataset_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad tool arguments return code -32602, any other tool failure -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		code := codeToolFailed
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			code = codeInvalidParams
		}
		return s.errorResponse(req.ID, code, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "dataset_catalog":
		return s.handleDatasetCatalog(args)
	case "dataset_generate":
		return s.handleDatasetGenerate(ctx, args)
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id any, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments; absent arguments leave v untouched.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid tool arguments")
	}
	return nil
}

// === Dataset Handlers ===

type datasetDirsArgs struct {
	ObjDir string `json:"obj_dir"`
	BkgDir string `json:"bkg_dir"`
}

// CatalogResult is the dataset_catalog tool result.
type CatalogResult struct {
	ObjDir      string           `json:"obj_dir"`
	BkgDir      string           `json:"bkg_dir"`
	Classes     []catalog.Object `json:"classes"`
	Backgrounds []string         `json:"backgrounds"`
	// CountsLength is the length the counts argument of dataset_generate must have.
	CountsLength int `json:"counts_length"`
}

func (s *Server) handleDatasetCatalog(args json.RawMessage) (any, error) {
	var a datasetDirsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	objDir, bkgDir := s.base.ObjDir, s.base.BkgDir
	if a.ObjDir != "" {
		objDir = a.ObjDir
	}
	if a.BkgDir != "" {
		bkgDir = a.BkgDir
	}

	cat, err := catalog.Load(objDir, bkgDir)
	if err != nil {
		return nil, err
	}
	return &CatalogResult{
		ObjDir:       objDir,
		BkgDir:       bkgDir,
		Classes:      cat.Objects,
		Backgrounds:  cat.Backgrounds,
		CountsLength: cat.NumClasses() + 1,
	}, nil
}

type datasetGenerateArgs struct {
	datasetDirsArgs
	OutDir      string   `json:"out_dir"`
	Counts      []int    `json:"counts"`
	Seed        uint64   `json:"seed"`
	Noop        bool     `json:"noop"`
	Disable     []string `json:"disable"`
	Transparent *bool    `json:"transparent"`
}

func (s *Server) handleDatasetGenerate(ctx context.Context, args json.RawMessage) (any, error) {
	var a datasetGenerateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Counts == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "counts is required")
	}

	cfg := s.base
	if a.ObjDir != "" {
		cfg.ObjDir = a.ObjDir
	}
	if a.BkgDir != "" {
		cfg.BkgDir = a.BkgDir
	}
	if a.OutDir != "" {
		cfg.OutDir = a.OutDir
	}
	if a.Seed != 0 {
		cfg.Seed = a.Seed
	}
	if a.Transparent != nil {
		cfg.Compose.Transparent = *a.Transparent
	}
	if a.Noop {
		cfg.Compose.Enabled = composer.Toggles{}
	}
	for _, name := range a.Disable {
		if err := cfg.Compose.Enabled.Disable(name); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return batch.Run(ctx, batch.Job{Config: cfg, Counts: a.Counts, Cache: s.cache}, s.logger)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) validate() error {
	if a.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "path is required")
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (any, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (any, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
