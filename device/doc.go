// Package device ties the pipeline together behind a D3D8-shaped API.
//
// A Device owns the vertex and pixel shader handle tables, the two constant
// banks, the bound vertex streams and index buffer, and a backend. Shaders
// are decoded and compiled once when they are created; draws resolve the
// current declaration against the streams and hand the result to a
// vertex.Dispatcher.
//
// Vertex shader handles share a namespace with FVF codes. FVF codes always
// have bit 0 clear, so shader handles always have it set.
//
// A Device is not safe for concurrent use.
package device
