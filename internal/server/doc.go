// Package server implements the MCP (Model Context Protocol) server for pore
// network extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes pore-body
// segmentation of binary voxel volumes through the MCP protocol. Volumes are
// supplied as stacks of slice images; each slice is one depth layer.
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
// Mask Input:
//   - pore_mask_load: Load a slice stack and describe the mask
//
// Extraction:
//   - pore_extract: Segment pore bodies and store the result
//   - pore_release: Drop a stored result
//
// Queries:
//   - pore_label_at: Label of one voxel and its seeding sphere
//   - pore_body_stats: Body sizes, largest first
//
// Visualization:
//   - pore_label_slice: Colored PNG of one label slice
//
// # Caching
//
// Masks are cached by slice list and threshold, so repeated extractions of
// the same stack skip image decoding. Extraction results are kept under a
// random id; only the most recent DefaultResultLimit results are retained.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Segmentation failures carry the poreseg error text, which names the
// offending voxel for unreachable regions and invalid mask values.
//
// # Usage
//
//	srv := server.New(config.Default())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
