// Package modes contains the builtin modes of the gameflow demo:
//
//	title ──confirm──▶ play ──crash/time──▶ gameover ──confirm──▶ play
//	  │                  │                     │
//	  quit             back ──▶ title        back ──▶ title, quit
//
// The play mode raises its change to gameover from nested helpers and leaves
// the score in the carry store; gameover reads it and keeps the best score.
package modes
