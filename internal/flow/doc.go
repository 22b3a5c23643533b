// Package flow provides the mode controller that drives the gameflow frame loop.
//
// The controller owns exactly one active Mode at a time. Every frame it calls
// the mode's Update and then its Render. A mode leaves the loop by raising a
// transition: either it returns one from Update, or it calls RequestChange or
// RequestQuit on the Requester it was given at construction time.
//
// # Mode Lifecycle
//
//	┌─────────┐  ChangeTo(B)  ┌─────────┐
//	│ Mode A  │ ────────────▶ │ Mode B  │
//	└─────────┘               └─────────┘
//	     │                         │
//	     │ A.Close()               │ Quit()
//	     ▼                         ▼
//	  destroyed                 B.Close(), Run returns
//
// When switching modes:
//  1. The active slot is cleared
//  2. The outgoing mode's Close() runs to completion
//  3. The incoming mode becomes active
//  4. Update restarts on the incoming mode in the same frame; the
//     outgoing mode's render for that frame is skipped
//
// # Raising From Depth
//
// RequestChange and RequestQuit never return. They record the request on the
// controller and unwind the update call stack with a private panic value that
// only the owning controller recovers. This is control flow, not fault
// handling: any deferred calls in the mode still run, and the request is not
// lost if a mode's own recover swallows the unwind.
//
//	func (p *Play) finish() {
//		flow.Set(p.req.Carry(), ScoreKey, p.score)
//		p.req.RequestChange(NewGameOver(p.req))
//		// unreachable
//	}
//
// # Carry Values
//
// Carry holds the values an outgoing mode leaves for its successor. Values
// are addressed by typed keys:
//
//	var ScoreKey = flow.NewKey[int]("score")
//
//	flow.Set(req.Carry(), ScoreKey, 42)
//	score, ok := flow.Get(req.Carry(), ScoreKey)
package flow
