package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	dirs := map[string]any{
		"obj_dir": stringProp("Directory of object images, one class per file. Defaults to the server configuration."),
		"bkg_dir": stringProp("Directory of background images. Defaults to the server configuration."),
	}

	generateProps := map[string]any{
		"counts": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "integer", "minimum": 0},
			"description": "Samples per class, in class order, followed by the number of negative (background only) samples. Length must be classes + 1.",
		},
		"out_dir": stringProp("Output directory for <class>_<n>.jpg/.txt pairs and manifest.json."),
		"seed": map[string]any{
			"type":        "integer",
			"description": "Random seed. 0 or absent seeds from the clock; the seed used is reported.",
		},
		"noop": map[string]any{
			"type":        "boolean",
			"description": "Disable every random transform.",
		},
		"disable": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string", "enum": []string{"resize", "flip", "distort", "blur", "tint", "darken"}},
			"description": "Transform categories to disable.",
		},
		"transparent": map[string]any{
			"type":        "boolean",
			"description": "Treat object pixels of the transparency key colour as see-through.",
		},
	}
	for k, v := range dirs {
		generateProps[k] = v
	}

	return []Tool{
		{
			Name:        "dataset_catalog",
			Description: "List the object classes (class index and image path) and the background pool that a generation run would use.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": dirs,
			},
		},
		{
			Name:        "dataset_generate",
			Description: "Generate labeled detector training images by compositing objects onto random backgrounds. Returns the run manifest.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": generateProps,
				"required":   []string{"counts"},
			},
		},
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and alpha support.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"tools": GetToolDefinitions(),
		},
	}
}
