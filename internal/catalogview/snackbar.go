package catalogview

import (
	"sync"
	"time"
)

// DefaultAutoHide is how long a notification stays open without user action
const DefaultAutoHide = 1000 * time.Millisecond

// Severity of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// CloseReason tells why a close was requested
type CloseReason string

const (
	// ReasonClickaway is a click outside the notification. It never closes it.
	ReasonClickaway CloseReason = "clickaway"
	// ReasonClose is an explicit close action by the user
	ReasonClose CloseReason = "close"
	// ReasonTimeout is sent by the auto-hide timer
	ReasonTimeout CloseReason = "timeout"
)

// Notification is the content of the single snackbar slot
type Notification struct {
	Open     bool
	Severity Severity
	Message  string
}

// Snackbar holds at most one notification. Each Show overwrites the slot and
// restarts the auto-hide timer; a timer started for an older notification
// never closes a newer one.
type Snackbar struct {
	mu       sync.Mutex
	current  Notification
	gen      uint64
	timer    *time.Timer
	autoHide time.Duration
}

// NewSnackbar creates an empty snackbar closing notifications after autoHide
func NewSnackbar(autoHide time.Duration) *Snackbar {
	if autoHide <= 0 {
		autoHide = DefaultAutoHide
	}
	return &Snackbar{autoHide: autoHide}
}

// Show replaces the current notification and opens the slot
func (s *Snackbar) Show(severity Severity, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.current = Notification{Open: true, Severity: severity, Message: message}

	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.autoHide, func() {
		s.expire(gen)
	})
}

// Close closes the slot unless reason is ReasonClickaway.
// It reports whether an open notification was closed.
func (s *Snackbar) Close(reason CloseReason) bool {
	if reason == ReasonClickaway {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

// Current returns a copy of the slot
func (s *Snackbar) Current() Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Stop cancels a pending auto-hide without touching the slot
func (s *Snackbar) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Snackbar) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	s.closeLocked()
}

func (s *Snackbar) closeLocked() bool {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.current.Open {
		return false
	}
	s.current.Open = false
	return true
}
