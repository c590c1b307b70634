package debugdraw

// FrameGuard remembers the last frame a flush was accepted in.
// The zero value has never flushed, so frame 0 is accepted.
type FrameGuard struct {
	last  uint64
	valid bool
}

// Check reports whether a flush may proceed in frame.
func (g *FrameGuard) Check(frame uint64) bool {
	return !g.valid || g.last != frame
}

// Mark records frame as flushed.
func (g *FrameGuard) Mark(frame uint64) {
	g.last = frame
	g.valid = true
}

// Last returns the last flushed frame, and false if there was none.
func (g *FrameGuard) Last() (uint64, bool) {
	return g.last, g.valid
}
