// Package server implements the MCP (Model Context Protocol) server for
// motion detection tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the mask-to-box
// detection pipeline through the MCP protocol, so an MCP client can inspect
// predictor masks, tune thresholds and review detections frame by frame.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Information:
//   - frame_info: Dimensions, format and color model of a frame or mask
//
// Mask Analysis:
//   - mask_contours: External contours of a mask
//   - mask_detect: Full pipeline, final boxes and per-stage counts
//   - mask_measure: Coverage, region sizes and detection spacing
//
// Rendering:
//   - frame_overlay: Boxes drawn on a frame, optionally beside the mask
//   - detection_crops: One image per detection
//
// Datasets:
//   - dataset_select: Pick a SBMnet or CDNet_2014 video
//   - sequence_detect: Run the pipeline over a whole video
//
// Thresholds omitted from a call come from the server's configuration.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(cfg, log)
//	if err := srv.Run(ctx); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package server
