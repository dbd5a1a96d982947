// Package spheremap implements the local map of a vertex: a planar graph
// embedded on the unit sphere around the vertex. Its entities are sphere
// vertices (directions), sphere half-edge pairs (arcs of great circles),
// sphere faces and an optional sphere half-loop pair (a full great circle
// without vertices).
//
// A Map is an arena. Entities are addressed by small handle values carrying
// the epoch of the map that created them; a handle of another map, or one
// that survived Clear, is rejected on access. The decorator operations in
// this package follow the half-edge conventions used throughout: the
// out-edges of a sphere vertex are ordered by the successor relation
// succ(e) = twin(prev(e)), and a face lies on the left of the half-edges of
// its boundary cycles.
package spheremap
