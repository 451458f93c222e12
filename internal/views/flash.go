// ABOUTME: Transient success messages that disappear after a delay
// ABOUTME: Driven by an injectable clock so expiry is testable

package views

import (
	"sync"
	"time"
)

// Flash holds one message that expires delay after it was shown.
// A non-positive delay keeps the message until Clear.
type Flash struct {
	mu    sync.Mutex
	now   func() time.Time
	delay time.Duration
	msg   string
	setAt time.Time
}

// NewFlash creates a Flash using now as its clock.
func NewFlash(now func() time.Time, delay time.Duration) *Flash {
	if now == nil {
		now = time.Now
	}
	return &Flash{now: now, delay: delay}
}

// Show replaces the current message.
func (f *Flash) Show(msg string) {
	f.mu.Lock()
	f.msg = msg
	f.setAt = f.now()
	f.mu.Unlock()
}

// Message returns the current message, or "" once it has expired.
func (f *Flash) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.msg == "" {
		return ""
	}
	if f.delay > 0 && !f.now().Before(f.setAt.Add(f.delay)) {
		f.msg = ""
	}
	return f.msg
}

// Clear drops the current message.
func (f *Flash) Clear() {
	f.mu.Lock()
	f.msg = ""
	f.mu.Unlock()
}
