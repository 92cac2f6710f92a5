package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "label_check",
			Description: "Classify a figure record (extractor JSON) as a usable or unusable training label and report why.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the figure JSON record"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mask_generate",
			Description: "Rasterize the text boxes of a figure record into a binary label PNG. The mask size follows the figure bounds at the given factor unless a chart image is supplied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"figure_path": stringProp("Absolute path to the figure JSON record"),
					"output_path": stringProp("Where to write the label PNG"),
					"chart_path":  stringProp("Optional rendered chart; its size is used for the mask and it is required for debug output"),
					"debug_path":  stringProp("Optional path for a tinted mask-over-chart composite"),
					"factor": map[string]interface{}{
						"type":        "integer",
						"description": "Render factor relative to 100 DPI. Default 1",
						"default":     1,
					},
				},
				"required": []string{"figure_path", "output_path"},
			},
		},
		{
			Name:        "regions_extract",
			Description: "Find text regions in a predicted mask, de-rotate each region out of the chart image and optionally read it with OCR at four orientations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mask_path":  stringProp("Absolute path to the predicted mask"),
					"image_path": stringProp("Absolute path to the chart image"),
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Mask level treated as text. Default 200",
						"default":     200,
					},
					"include_patches": map[string]interface{}{
						"type":        "boolean",
						"description": "Return each patch as base64 PNG",
						"default":     false,
					},
					"recognize": map[string]interface{}{
						"type":        "boolean",
						"description": "Run OCR on each patch",
						"default":     false,
					},
					"words": map[string]interface{}{
						"type":        "boolean",
						"description": "Return word boxes found in each upright patch",
						"default":     false,
					},
				},
				"required": []string{"mask_path", "image_path"},
			},
		},
		{
			Name:        "masks_score",
			Description: "Score predicted masks against ground truth with a dilation tolerance and return pixel counts, precision, recall and F1. Give either a list file or explicit pairs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"list_path": stringProp("Newline separated prediction file names; truth names are derived"),
					"pairs": map[string]interface{}{
						"type":        "array",
						"description": "Explicit prediction/truth path pairs",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"prediction": stringProp("Predicted mask path"),
								"truth":      stringProp("Ground truth mask path"),
							},
							"required": []string{"prediction", "truth"},
						},
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Prediction binarization level. Default 200",
						"default":     200,
					},
				},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
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
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
