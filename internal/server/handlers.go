package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	"github.com/ironsheep/motion-detect-mcp/internal/detection"
	"github.com/ironsheep/motion-detect-mcp/internal/imaging"
	"github.com/ironsheep/motion-detect-mcp/internal/predictor"
	"github.com/ironsheep/motion-detect-mcp/internal/sequence"
	"github.com/ironsheep/motion-detect-mcp/internal/store"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mask_detect", "frame_overlay").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills unset thresholds from the server configuration
//  3. Loads frames and masks from cache as needed
//  4. Calls the appropriate detection/imaging/dataset function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Frame Information
	case "frame_info":
		return s.handleFrameInfo(args)

	// Mask Analysis
	case "mask_contours":
		return s.handleMaskContours(args)
	case "mask_detect":
		return s.handleMaskDetect(args)
	case "mask_measure":
		return s.handleMaskMeasure(args)

	// Rendering
	case "frame_overlay":
		return s.handleFrameOverlay(args)
	case "detection_crops":
		return s.handleDetectionCrops(args)

	// Datasets
	case "dataset_select":
		return s.handleDatasetSelect(args)
	case "sequence_detect":
		return s.handleSequenceDetect(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

// maskArgs are the mask preprocessing overrides. Nil means "use config".
type maskArgs struct {
	MaskLevel    *int     `json:"mask_level"`
	DilateRadius *float64 `json:"dilate_radius"`
}

func (s *Server) maskOptions(a maskArgs) (imaging.MaskOptions, error) {
	level := s.cfg.Detection.MaskLevel
	if a.MaskLevel != nil {
		level = *a.MaskLevel
	}
	if level < 1 || level > 255 {
		return imaging.MaskOptions{}, fmt.Errorf("mask_level must be between 1 and 255, got %d", level)
	}

	radius := s.cfg.Detection.DilateRadius
	if a.DilateRadius != nil {
		radius = *a.DilateRadius
	}
	if radius < 0 {
		return imaging.MaskOptions{}, fmt.Errorf("dilate_radius must be >= 0, got %v", radius)
	}

	return imaging.MaskOptions{Level: uint8(level), DilateRadius: radius}, nil
}

// paramArgs are the pipeline threshold overrides. Nil means "use config".
type paramArgs struct {
	MinArea           *int     `json:"min_area"`
	OverlapThreshold  *float64 `json:"overlap_threshold"`
	DistanceThreshold *float64 `json:"distance_threshold"`
	MergeStrategy     string   `json:"merge_strategy"`
}

func (s *Server) detectionParams(a paramArgs) detection.Params {
	p := s.cfg.DetectionParams()
	if a.MinArea != nil {
		p.MinArea = *a.MinArea
	}
	if a.OverlapThreshold != nil {
		p.OverlapThreshold = *a.OverlapThreshold
	}
	if a.DistanceThreshold != nil {
		p.DistanceThreshold = *a.DistanceThreshold
	}
	if a.MergeStrategy != "" {
		p.MergeStrategy = a.MergeStrategy
	}
	return p
}

func (s *Server) loadMask(path string, a maskArgs) (*detection.Mask, error) {
	if path == "" {
		return nil, errors.New("mask path is required")
	}
	opts, err := s.maskOptions(a)
	if err != nil {
		return nil, err
	}
	return imaging.LoadMask(s.cache, path, opts)
}

// === Frame Information Handlers ===

type frameInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a frameInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// === Mask Analysis Handlers ===

type maskContoursArgs struct {
	Path string `json:"path"`
	maskArgs
}

type maskContoursResult struct {
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Count    int                 `json:"count"`
	Contours []detection.Contour `json:"contours"`
}

func (s *Server) handleMaskContours(args json.RawMessage) (interface{}, error) {
	var a maskContoursArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	mask, err := s.loadMask(a.Path, a.maskArgs)
	if err != nil {
		return nil, err
	}
	contours, err := detection.FindExternalContours(mask)
	if err != nil {
		return nil, err
	}
	return &maskContoursResult{
		Width:    mask.Width,
		Height:   mask.Height,
		Count:    len(contours),
		Contours: contours,
	}, nil
}

type maskDetectArgs struct {
	Path string `json:"path"`
	maskArgs
	paramArgs
}

type maskDetectResult struct {
	Params detection.Params `json:"params"`
	*detection.Result
}

func (s *Server) handleMaskDetect(args json.RawMessage) (interface{}, error) {
	var a maskDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	mask, err := s.loadMask(a.Path, a.maskArgs)
	if err != nil {
		return nil, err
	}
	params := s.detectionParams(a.paramArgs)
	res, err := detection.Run(mask, params)
	if err != nil {
		return nil, err
	}
	return &maskDetectResult{Params: params, Result: res}, nil
}

type maskMeasureResult struct {
	Mask    *imaging.MaskStats    `json:"mask"`
	Spacing *imaging.SpacingStats `json:"spacing"`
}

func (s *Server) handleMaskMeasure(args json.RawMessage) (interface{}, error) {
	var a maskDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	mask, err := s.loadMask(a.Path, a.maskArgs)
	if err != nil {
		return nil, err
	}
	stats, err := imaging.MeasureMask(mask)
	if err != nil {
		return nil, err
	}

	// Spacing is measured before merging; that is what distance_threshold
	// acts on.
	params := s.detectionParams(a.paramArgs)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	candidates, err := detection.ExtractBoxes(mask, params.MinArea)
	if err != nil {
		return nil, err
	}
	kept := detection.SuppressOverlaps(detection.RemoveContained(candidates), params.OverlapThreshold)

	return &maskMeasureResult{Mask: stats, Spacing: imaging.MeasureSpacing(kept)}, nil
}

// === Rendering Handlers ===

type frameBoxesArgs struct {
	FramePath string                 `json:"frame_path"`
	MaskPath  string                 `json:"mask_path"`
	Boxes     detection.DetectionSet `json:"boxes"`
	maskArgs
	paramArgs
}

// checkSameSize rejects a mask whose size differs from its frame; its boxes
// would not line up with the frame.
func (s *Server) checkSameSize(framePath, maskPath string) error {
	if maskPath == "" {
		return nil
	}
	fw, fh, err := imaging.Dimensions(s.cache, framePath)
	if err != nil {
		return err
	}
	mw, mh, err := imaging.Dimensions(s.cache, maskPath)
	if err != nil {
		return err
	}
	if fw != mw || fh != mh {
		return fmt.Errorf("mask is %dx%d but frame is %dx%d", mw, mh, fw, fh)
	}
	return nil
}

// resolveBoxes returns the given boxes, normalized, or detects them from the
// mask. The mask is returned when it was loaded.
func (s *Server) resolveBoxes(a frameBoxesArgs) (detection.DetectionSet, *detection.Mask, error) {
	var mask *detection.Mask
	if a.MaskPath != "" {
		m, err := s.loadMask(a.MaskPath, a.maskArgs)
		if err != nil {
			return nil, nil, err
		}
		mask = m
	}

	if a.Boxes != nil {
		boxes := make(detection.DetectionSet, 0, len(a.Boxes))
		for i, b := range a.Boxes {
			box := detection.NewBox(b.X1, b.Y1, b.X2, b.Y2)
			if box.Width() <= 0 || box.Height() <= 0 {
				return nil, nil, fmt.Errorf("box %d has non-positive size: %s", i, box)
			}
			boxes = append(boxes, box)
		}
		return boxes, mask, nil
	}

	if mask == nil {
		return nil, nil, errors.New("either boxes or mask_path is required")
	}
	boxes, err := detection.Detect(mask, s.detectionParams(a.paramArgs))
	if err != nil {
		return nil, nil, err
	}
	return boxes, mask, nil
}

type frameOverlayArgs struct {
	frameBoxesArgs
	Color      string `json:"color"`
	Thickness  int    `json:"thickness"`
	Numbered   bool   `json:"numbered"`
	Distinct   bool   `json:"distinct"`
	SideBySide bool   `json:"side_by_side"`
	Caption    string `json:"caption"`
}

func (s *Server) handleFrameOverlay(args json.RawMessage) (interface{}, error) {
	var a frameOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = s.cfg.Output.BoxColor
	}
	if a.Thickness == 0 {
		a.Thickness = 1
	}
	if a.SideBySide && a.MaskPath == "" {
		return nil, errors.New("side_by_side requires mask_path")
	}

	frame, err := s.cache.Load(a.FramePath)
	if err != nil {
		return nil, err
	}
	if err := s.checkSameSize(a.FramePath, a.MaskPath); err != nil {
		return nil, err
	}
	boxes, mask, err := s.resolveBoxes(a.frameBoxesArgs)
	if err != nil {
		return nil, err
	}

	out := imaging.DrawDetections(frame, boxes, imaging.OverlayOptions{
		Color:     a.Color,
		Thickness: a.Thickness,
		Numbered:  a.Numbered,
		Distinct:  a.Distinct,
	})
	if a.SideBySide {
		out = imaging.SideBySide(out, imaging.MaskImage(mask.Gray()))
	}
	if a.Caption != "" {
		out = imaging.AddCaption(out, a.Caption)
	}

	return imaging.EncodeOverlay(out, len(boxes))
}

type detectionCropsArgs struct {
	frameBoxesArgs
	Padding int     `json:"padding"`
	Scale   float64 `json:"scale"`
}

type detectionCropsResult struct {
	Count int                  `json:"count"`
	Crops []imaging.CropResult `json:"crops"`
}

func (s *Server) handleDetectionCrops(args json.RawMessage) (interface{}, error) {
	var a detectionCropsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Padding < 0 {
		return nil, fmt.Errorf("padding must be >= 0, got %d", a.Padding)
	}

	frame, err := s.cache.Load(a.FramePath)
	if err != nil {
		return nil, err
	}
	if err := s.checkSameSize(a.FramePath, a.MaskPath); err != nil {
		return nil, err
	}
	boxes, _, err := s.resolveBoxes(a.frameBoxesArgs)
	if err != nil {
		return nil, err
	}

	crops, err := imaging.CropDetections(frame, boxes, a.Padding, a.Scale)
	if err != nil {
		return nil, err
	}
	return &detectionCropsResult{Count: len(crops), Crops: crops}, nil
}

// === Dataset Handlers ===

type selectionArgs struct {
	Dataset  string `json:"dataset"`
	Category string `json:"category"`
	Video    string `json:"video"`
	Seed     *int64 `json:"seed"`
}

func (s *Server) selectVideo(a selectionArgs) (dataset.Video, error) {
	d := s.cfg.Dataset
	sel := dataset.Selection{Dataset: d.Dataset, Category: d.Category, Video: d.Video, Seed: d.Seed}
	if a.Dataset != "" {
		sel.Dataset = a.Dataset
	}
	if a.Category != "" {
		sel.Category = a.Category
	}
	if a.Video != "" {
		sel.Video = a.Video
	}
	if a.Seed != nil {
		sel.Seed = *a.Seed
	}
	return dataset.Select(dataset.Roots(d.Roots), sel)
}

type datasetSelectResult struct {
	Video          dataset.Video `json:"video"`
	Dir            string        `json:"dir"`
	Frames         int           `json:"frames"`
	HasGroundTruth bool          `json:"has_groundtruth"`
	FirstFrame     string        `json:"first_frame,omitempty"`
	FirstMask      string        `json:"first_mask,omitempty"`
}

func (s *Server) handleDatasetSelect(args json.RawMessage) (interface{}, error) {
	var a selectionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	v, err := s.selectVideo(a)
	if err != nil {
		return nil, err
	}
	frames, err := dataset.ListFrames(v)
	if err != nil {
		return nil, err
	}

	res := &datasetSelectResult{
		Video:          v,
		Dir:            v.Dir(),
		Frames:         len(frames),
		HasGroundTruth: v.HasGroundTruth(),
	}
	if len(frames) > 0 {
		res.FirstFrame = frames[0].Path
		if res.HasGroundTruth {
			res.FirstMask = dataset.GroundTruthPath(v, frames[0])
		}
	}
	return res, nil
}

type sequenceDetectArgs struct {
	selectionArgs
	maskArgs
	paramArgs
	MaxFrames     int   `json:"max_frames"`
	IncludeFrames *bool `json:"include_frames"`
}

type sequenceDetectResult struct {
	Video   dataset.Video          `json:"video"`
	RunID   string                 `json:"run_id,omitempty"`
	Params  detection.Params       `json:"params"`
	Summary sequence.Summary       `json:"summary"`
	Frames  []sequence.FrameResult `json:"frames,omitempty"`
}

func (s *Server) handleSequenceDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxFrames < 0 {
		return nil, fmt.Errorf("max_frames must be >= 0, got %d", a.MaxFrames)
	}

	v, err := s.selectVideo(a.selectionArgs)
	if err != nil {
		return nil, err
	}
	frames, err := dataset.ListFrames(v)
	if err != nil {
		return nil, err
	}
	if a.MaxFrames > 0 && len(frames) > a.MaxFrames {
		frames = frames[:a.MaxFrames]
	}

	opts, err := s.maskOptions(a.maskArgs)
	if err != nil {
		return nil, err
	}
	pred, err := predictor.New(s.cfg.Predictor, v, opts)
	if err != nil {
		return nil, err
	}

	params := s.detectionParams(a.paramArgs)
	runner := sequence.NewRunner(pred, params, s.cfg.Workers)
	runner.Logger = s.log.With("video", v.String())

	results, err := runner.Run(ctx, frames, nil)
	if err != nil {
		return nil, err
	}

	res := &sequenceDetectResult{
		Video:   v,
		Params:  params,
		Summary: sequence.Summarize(results),
	}
	if a.IncludeFrames == nil || *a.IncludeFrames {
		res.Frames = results
	}

	if path := s.cfg.Output.StorePath; path != "" {
		id, err := saveRun(ctx, path, v, params, results)
		if err != nil {
			return nil, err
		}
		res.RunID = id
		s.log.Info("run stored", "run_id", id, "video", v.String(), "frames", len(results))
	}

	return res, nil
}

func saveRun(ctx context.Context, path string, v dataset.Video, params detection.Params, results []sequence.FrameResult) (string, error) {
	st, err := store.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	id, err := st.CreateRun(ctx, v, params)
	if err != nil {
		return "", err
	}
	if err := st.SaveFrames(ctx, id, results); err != nil {
		return "", err
	}
	return id, nil
}
