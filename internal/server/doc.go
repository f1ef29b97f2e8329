// Package server exposes dataset generation over the MCP (Model Context
// Protocol) so an assistant or other MCP client can drive image-maker.
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
//   - dataset_catalog: class index to object image mapping and the background pool
//   - dataset_generate: run a generation job and return its manifest
//   - image_load: dimensions, format and alpha support of an image file
//   - image_dimensions: width and height of an image file
//
// dataset_generate starts from the configuration the server was created
// with; tool arguments override directories, seed and transform toggles for
// that call only.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server and shared
// by every tool, so repeated runs over the same backgrounds decode each file
// once. The cache holds at most cache_size images, least recently used first
// out. Images changed on disk while the server runs are not reloaded.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses:
//   - -32602: malformed params or invalid tool arguments
//   - -32000: the tool ran and failed (bad catalog, count mismatch, unreadable images)
//   - -32601: unknown method
//
// The data field carries the error string including its code, for example
// "CONFIGURATION: expected 3 counts (2 classes + negatives), got 2".
package server
