// Package vertex turns bound vertex buffers into draws.
//
// Prepare resolves a compiled declaration (or an FVF, through
// decl.FVF.Declaration) against the bound streams and a base vertex into one
// strided attribute per input register. A Dispatcher then submits the draw
// through one of four paths:
//
//   - fast: attribute arrays handed to the backend as they are,
//   - slow: every vertex fetched and converted on the CPU, then submitted
//     with Begin/Vertex/End,
//   - software: every vertex run through the vertex program interpreter,
//   - program: attribute arrays bound as generic inputs of a native vertex
//     program.
//
// Strided data is recomputed for every draw since buffers may be rebound
// between draws.
package vertex
