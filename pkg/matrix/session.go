package matrix

import "fmt"

// Session owns the insertion mode of one System for the duration of an
// assembly pass. Every filler touching the matrix within the pass goes
// through the same session, so the mode is never threaded by hand.
//
//	s := matrix.NewSession(A)
//	defer s.Close()
type Session struct {
	sys  *System
	mode InsertMode
}

func NewSession(sys *System) *Session {
	return &Session{sys: sys}
}

func (s *Session) Mode() InsertMode {
	return s.mode
}

// Use switches the session to mode. Any change of mode flushes staged
// writes first.
func (s *Session) Use(mode InsertMode) {
	if mode == NotSet {
		panic("matrix: session cannot switch to NotSet, use Close")
	}
	if s.mode != mode {
		s.sys.Flush()
	}
	s.mode = mode
}

// Require panics unless the session is in mode.
func (s *Session) Require(mode InsertMode) {
	if s.mode != mode {
		panic(fmt.Sprintf("matrix: session is in %v mode, %v required", s.mode, mode))
	}
}

func (s *Session) Set(i, j int, value float64) {
	if s.mode == NotSet {
		panic("matrix: session has no insert mode")
	}
	s.sys.SetValue(i, j, value, s.mode)
}

func (s *Session) ClearRow(i int) {
	s.sys.ClearRow(i)
}

// Close flushes everything staged and resets the mode.
func (s *Session) Close() {
	s.sys.Flush()
	s.mode = NotSet
}
