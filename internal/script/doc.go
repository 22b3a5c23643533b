// Package script runs modes written in Lua.
//
// A script mode is a Lua chunk that defines global functions:
//
//	function update(frame)  -- required; frame = {index, delta, restarts}
//	function render(frame)  -- optional
//	function close()        -- optional
//
// The top level of the chunk runs once when the mode is constructed. Scripts
// reach the host through these tables:
//
//	flow.change(name)         change to the registered mode name
//	flow.quit()               end the loop
//	carry.get(key)            read a carried value (number, string, boolean)
//	carry.set(key, value)     store a carried value; nil removes it
//	carry.take(key)           read and remove a carried value
//	screen.size()             width, height
//	screen.text(x, y, s, st)  draw s; st is "accent", "muted", "bold" or nil
//	screen.center(y, s, st)   draw s centered on row y
//	input.pressed(action)     an action was pressed this frame
//	input.take(action)        consume a press of action
//	input.text()              runes typed this frame
//	log.debug/info/warn/error(msg)
//
// flow.change and flow.quit do not return: they record the request and raise
// a Lua error that unwinds the script back to the host, which then hands the
// transition to the controller. A script that catches it with pcall keeps
// running, but the first request still stands.
//
// Each call into a script is bounded by a time budget. Only the base, table,
// string and math libraries are available; loaders are removed.
package script
