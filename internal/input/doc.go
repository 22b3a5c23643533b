// Package input moves backend events from the input goroutine to the frame
// loop.
//
// A polling goroutine reads the backend and pushes events into a bounded
// queue without ever blocking on the loop. Modes see input through a
// Snapshot, which is drained from the queue once per frame:
//
//	in := queue.Frame(f.Index)
//	if in.TakeAction("confirm") {
//		req.RequestChange(next)
//	}
//
// Taking a press consumes it, so a mode activated later in the same frame
// does not react to the key that activated it.
package input
