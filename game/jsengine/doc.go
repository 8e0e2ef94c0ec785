// Package jsengine loads and drives the native planning engine, a JavaScript
// module evaluated in an embedded goja VM.
//
// The jsengine package implements:
//   - Loading, compiling, and validating engine artifacts
//   - The Planner contract backed by the module's strategy object
//   - Best-effort board evaluation (BoardInfo)
//   - Context-based interruption of artifact evaluation
//
// Artifact Contract:
//
// An artifact is a JavaScript file that defines a global factory:
//
//	function createEngine() {
//		return {
//			encode: function(exponents) { ... },    // -> board handle
//			decode: function(board) { ... },        // -> array of 16 exponents
//			canMove: function(board, dir) { ... },  // -> bool
//			applyMove: function(board, dir) { ... },// -> board handle
//			strategy: {
//				configure: function(kind, heuristic, depth, probability) { ... },
//				pickMove: function(board) { ... },      // -> 0..3, or -1 for none
//				evaluateBoard: function(board) { ... }, // -> number
//			},
//		};
//	}
//
// Directions use the canonical ordinals (0=up, 1=right, 2=down, 3=left).
// The board handle is opaque to this package; it is produced by encode and
// passed back into the other calls unchanged.
//
// Failure Modes:
//
// Everything that goes wrong while reading, compiling, evaluating, or
// validating the artifact wraps ErrLoadFailed. Exceptions thrown by an
// already-loaded module wrap ErrRuntime, which the engine manager treats as
// grounds for permanent demotion to the built-in planner.
//
// goja runtimes are not safe for concurrent use, so all VM access is
// serialized behind a mutex.
package jsengine
