package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// maskProperties are the schema properties shared by every tool that reads
// a mask file.
func maskProperties(pathKey string) map[string]interface{} {
	return map[string]interface{}{
		pathKey: map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the mask image (white foreground on black)",
		},
		"mask_level": map[string]interface{}{
			"type":        "integer",
			"description": "Gray level at or above which a pixel is foreground (1-255). Defaults to the server configuration, normally 128",
		},
		"dilate_radius": map[string]interface{}{
			"type":        "number",
			"description": "Grow the foreground by this radius before contour extraction, joining thin gaps. Default 0 (off)",
		},
	}
}

// paramProperties adds the pipeline threshold properties to props.
func paramProperties(props map[string]interface{}) map[string]interface{} {
	props["min_area"] = map[string]interface{}{
		"type":        "integer",
		"description": "A contour's bounding box must have an area strictly greater than this. Default 400",
	}
	props["overlap_threshold"] = map[string]interface{}{
		"type":        "number",
		"description": "Non-maximal suppression drops the smaller of two boxes whose overlap ratio is at or above this. Default 0.3",
	}
	props["distance_threshold"] = map[string]interface{}{
		"type":        "number",
		"description": "Boxes whose centers are closer than this many pixels are merged. Default 55",
	}
	props["merge_strategy"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"greedy", "transitive"},
		"description": "greedy: single pass per box (default). transitive: merge every chain of near boxes",
	}
	return props
}

var boxSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer", "description": "Exclusive"},
		"y2": map[string]interface{}{"type": "integer", "description": "Exclusive"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Information
		{
			Name:        "frame_info",
			Description: "Load a video frame or mask image and return its dimensions, format and color model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Mask Analysis
		{
			Name:        "mask_contours",
			Description: "List the external contours of a binary mask: bounding rectangle and pixel count of every outermost foreground region, in raster order.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": maskProperties("path"),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "mask_detect",
			Description: "Turn a binary mask into final detection boxes: contour boxes above min_area, contained boxes removed, overlaps suppressed, nearby boxes merged. Returns the boxes and the count after each stage.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": paramProperties(maskProperties("path")),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "mask_measure",
			Description: "Measure a mask's foreground coverage, region sizes and the spacing between its detections. Useful for choosing min_area and distance_threshold.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": paramProperties(maskProperties("path")),
				"required":   []string{"path"},
			},
		},

		// Rendering
		{
			Name:        "frame_overlay",
			Description: "Draw detection boxes on a frame and return it as base64-encoded PNG. Boxes come from the boxes argument or are detected from mask_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": paramProperties(func() map[string]interface{} {
					props := maskProperties("mask_path")
					props["frame_path"] = map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the video frame",
					}
					props["boxes"] = map[string]interface{}{
						"type":        "array",
						"items":       boxSchema,
						"description": "Boxes to draw. When omitted, mask_path is required",
					}
					props["color"] = map[string]interface{}{
						"type":        "string",
						"description": "Box color as #RRGGBB. Default from configuration, normally #FF0000",
					}
					props["thickness"] = map[string]interface{}{
						"type":        "integer",
						"description": "Outline width in pixels. Default 1",
						"default":     1,
					}
					props["numbered"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Label each box with its index",
					}
					props["distinct"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Give every box its own color",
					}
					props["side_by_side"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Place the mask to the right of the annotated frame. Requires mask_path",
					}
					props["caption"] = map[string]interface{}{
						"type":        "string",
						"description": "Text drawn in a black strip above the image",
					}
					return props
				}()),
				"required": []string{"frame_path"},
			},
		},
		{
			Name:        "detection_crops",
			Description: "Crop every detection out of a frame and return each crop as base64-encoded PNG, for close inspection of what was detected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": paramProperties(func() map[string]interface{} {
					props := maskProperties("mask_path")
					props["frame_path"] = map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the video frame",
					}
					props["boxes"] = map[string]interface{}{
						"type":        "array",
						"items":       boxSchema,
						"description": "Boxes to crop. When omitted, mask_path is required",
					}
					props["padding"] = map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context added around each box. Default 0",
					}
					props["scale"] = map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					}
					return props
				}()),
				"required": []string{"frame_path"},
			},
		},

		// Datasets
		{
			Name:        "dataset_select",
			Description: "Choose a video from the configured SBMnet or CDNet_2014 dataset roots. Empty fields are picked at random from the seed, so the same seed always selects the same video.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dataset":  map[string]interface{}{"type": "string", "description": "SBMnet or CDNet_2014"},
					"category": map[string]interface{}{"type": "string", "description": "Category directory, e.g. baseline"},
					"video":    map[string]interface{}{"type": "string", "description": "Video directory, e.g. highway"},
					"seed":     map[string]interface{}{"type": "integer", "description": "Seed for random choices. Default from configuration"},
				},
			},
		},
		{
			Name:        "sequence_detect",
			Description: "Run detection on every frame of a dataset video using the configured mask predictor. Returns per-frame boxes and a summary; results are also stored when a store path is configured.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": paramProperties(map[string]interface{}{
					"dataset":  map[string]interface{}{"type": "string"},
					"category": map[string]interface{}{"type": "string"},
					"video":    map[string]interface{}{"type": "string"},
					"seed":     map[string]interface{}{"type": "integer"},
					"max_frames": map[string]interface{}{
						"type":        "integer",
						"description": "Process only the first N frames. Default 0 (all)",
					},
					"include_frames": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the boxes of every frame, not just the summary. Default true",
						"default":     true,
					},
				}),
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
