// Package moves builds the move/initialization data model for one function
// body: a forest of move paths for every place that can be moved, plus the
// move-out and initialization events recorded against those paths, indexed
// both by path and by program location.
//
// GatherMoves walks the body once (arguments first, then every block in
// layout order, statements before the terminator) and returns an immutable
// MoveData together with the illegal moves it found. Illegal moves never stop
// the walk; structurally impossible input panics with *BugError.
//
// A place gets a move path only if moving out of it can be tracked precisely:
// nothing behind a reference or raw pointer, nothing inside a type with a
// destructor or a slice, no dynamically indexed array element. Every field of
// a union shares the union's own path.
package moves
