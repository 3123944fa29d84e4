package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathsProperty = map[string]interface{}{
	"type":        "array",
	"items":       map[string]interface{}{"type": "string"},
	"description": "Slice image files in depth order, or a single directory whose png/jpg/gif files are used in name order",
}

var thresholdProperty = map[string]interface{}{
	"type":        "integer",
	"minimum":     1,
	"maximum":     255,
	"description": "Grayscale level at or above which a pixel is pore. Defaults to the server configuration",
}

var extractionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Extraction id returned by pore_extract",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Mask Input
		{
			Name:        "pore_mask_load",
			Description: "Load a stack of binary slice images as a 3D pore mask and report its dimensions, pore voxel count, porosity and number of 6-connected pore regions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths":     pathsProperty,
					"threshold": thresholdProperty,
				},
				"required": []string{"paths"},
			},
		},

		// Extraction
		{
			Name:        "pore_extract",
			Description: "Segment the pore space of a slice stack into pore bodies using maximal-sphere seeding. Returns an extraction id for follow-up queries together with body counts and size statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths":     pathsProperty,
					"threshold": thresholdProperty,
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian standard deviation for label smoothing in voxels. 0 disables smoothing",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"minimum":     1,
						"description": "Goroutines used for label smoothing",
					},
					"strict": map[string]interface{}{
						"type":        "boolean",
						"description": "Fail on a mask without pore voxels instead of returning an empty segmentation",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "pore_release",
			Description: "Drop a stored extraction and free its memory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"extraction_id": extractionIDProperty,
				},
				"required": []string{"extraction_id"},
			},
		},

		// Queries
		{
			Name:        "pore_label_at",
			Description: "Get the pore-body label of one voxel of an extraction, with the maximal sphere that seeded the body.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"extraction_id": extractionIDProperty,
					"i": map[string]interface{}{
						"type":        "integer",
						"description": "Slice index (0-based)",
					},
					"j": map[string]interface{}{
						"type":        "integer",
						"description": "Row index within the slice (0-based, from top)",
					},
					"k": map[string]interface{}{
						"type":        "integer",
						"description": "Column index within the slice (0-based, from left)",
					},
				},
				"required": []string{"extraction_id", "i", "j", "k"},
			},
		},
		{
			Name:        "pore_body_stats",
			Description: "List pore bodies of an extraction by voxel count, largest first, with their seeding sphere and summary statistics of body size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"extraction_id": extractionIDProperty,
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of bodies to list. Default 20",
						"default":     20,
					},
				},
				"required": []string{"extraction_id"},
			},
		},

		// Visualization
		{
			Name:        "pore_label_slice",
			Description: "Render one slice of an extraction's label map as a base64-encoded PNG with one color per pore body. Matrix voxels are black.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"extraction_id": extractionIDProperty,
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Slice index (0-based)",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer enlargement factor (1-16). Default 1",
						"default":     1,
					},
				},
				"required": []string{"extraction_id", "index"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
