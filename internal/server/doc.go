// Package server implements an MCP (Model Context Protocol) server that
// exposes the chartmask operations as tools.
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
//   - label_check: classify a figure record as a good or bad training label
//   - mask_generate: write the text mask for a figure record
//   - regions_extract: find text regions in a predicted mask, optionally
//     returning de-rotated patches and their OCR readings
//   - masks_score: score predicted masks against ground truth
//   - image_dimensions: report the size of an image file
//
// # Image Caching
//
// Images are cached by path for the lifetime of the server process, so a
// chart that is inspected by several calls is decoded once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data.
package server
