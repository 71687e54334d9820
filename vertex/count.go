package vertex

import "github.com/gogpu/d3d8/backend"

// VertexCount returns the number of vertices that make up primitives
// primitives of type p. Unknown types count one vertex per primitive.
func VertexCount(p backend.Primitive, primitives int) int {
	switch p {
	case backend.LineList:
		return 2 * primitives
	case backend.LineStrip:
		return primitives + 1
	case backend.TriangleList:
		return 3 * primitives
	case backend.TriangleStrip, backend.TriangleFan:
		return primitives + 2
	}
	return primitives
}
