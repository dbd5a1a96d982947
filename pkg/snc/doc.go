// Package snc defines the global object store of a Nef polyhedron: vertices
// that own a local sphere map, halffacets with their facet cycles, volumes,
// and the twin relation of 3D edges. A 3D halfedge is a sphere vertex of
// its source vertex's local map.
package snc
