// Package decl compiles D3D8 vertex declarations.
//
// A declaration is a token list that selects streams and describes the
// attributes each stream carries:
//
//	decl.StreamToken(0),
//	decl.RegToken(decl.Position, decl.Float3),
//	decl.RegToken(decl.Normal, decl.Float3),
//	decl.RegToken(decl.Diffuse, decl.D3DColor),
//	decl.EndToken,
//
// Compile lays the attributes of every stream out with a running byte
// cursor and, when the (register, type) pairs allow it, summarizes each
// stream as a flexible vertex format (FVF) bitmask. FromFVF goes the other
// way and expands an FVF into the same element list, so the draw path
// treats both sources alike.
package decl
