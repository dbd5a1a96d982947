// Package constructor builds and overlays vertex local maps: the vertex
// factory (box corners, planes, edges, direction cycles and the frame points
// where a plane meets the infimaximal box), the local overlay engine, the
// sphere-map cloner and the frame consolidator.
//
// Operations panic with a *PreconditionError when their input violates a
// precondition; such a failure indicates a bug in the caller. Use Recover
// at API boundaries to turn the panic into an error.
package constructor
