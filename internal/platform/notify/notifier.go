// internal/platform/notify/notifier.go
package notify

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity of a notification (maps to the banner color in the web build).
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// State machine per notification, strictly linear and fully time-driven:
// created → visible → fading → removed. No transition back, nothing the
// buyer does cancels it.
type State string

const (
	StateCreated State = "created"
	StateVisible State = "visible"
	StateFading  State = "fading"
	StateRemoved State = "removed"
)

// Notification is one transient banner.
type Notification struct {
	ID       string
	Message  string
	Severity string
	State    State
}

// Renderer is the surface notifications are drawn on (a TUI panel, a status
// line, a test recorder). The web build's fixed-position container plays this
// role.
type Renderer interface {
	// Show draws a new notification (state = visible).
	Show(n Notification)
	// Fade starts the dismiss transition.
	Fade(id string)
	// Remove takes the notification off the surface.
	Remove(id string)
}

const (
	// observed dismiss delays in the shipped variants are 3–5s
	defaultVisibleFor = 4 * time.Second
	defaultFadeFor    = 500 * time.Millisecond
)

// Notifier displays transient, auto-dismissing notifications.
// With no Renderer attached it degrades to log output — it never fails the
// operation it is reporting on.
type Notifier struct {
	renderer   Renderer
	visibleFor time.Duration
	fadeFor    time.Duration

	mu     sync.Mutex
	active map[string][]*time.Timer
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithDelays overrides the visible/fade durations (tests use short ones).
func WithDelays(visibleFor, fadeFor time.Duration) Option {
	return func(n *Notifier) {
		if visibleFor > 0 {
			n.visibleFor = visibleFor
		}
		if fadeFor > 0 {
			n.fadeFor = fadeFor
		}
	}
}

// New creates a Notifier. renderer may be nil (log fallback).
func New(renderer Renderer, opts ...Option) *Notifier {
	n := &Notifier{
		renderer:   renderer,
		visibleFor: defaultVisibleFor,
		fadeFor:    defaultFadeFor,
		active:     map[string][]*time.Timer{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Display shows a transient notification and schedules its dismissal.
// Unknown severity is coerced to info. Safe to call from any goroutine.
func (n *Notifier) Display(message, severity string) {
	if n == nil {
		return
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	switch severity {
	case SeverityInfo, SeveritySuccess, SeverityError:
	default:
		severity = SeverityInfo
	}

	if n.renderer == nil {
		// degraded mode: no surface on this page, keep the outcome observable
		log.Printf("[notify] %s: %s", severity, message)
		return
	}

	id := uuid.NewString()

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		log.Printf("[notify] %s: %s (notifier closed)", severity, message)
		return
	}

	n.renderer.Show(Notification{
		ID:       id,
		Message:  message,
		Severity: severity,
		State:    StateVisible,
	})

	fade := time.AfterFunc(n.visibleFor, func() {
		n.renderer.Fade(id)
	})
	remove := time.AfterFunc(n.visibleFor+n.fadeFor, func() {
		n.renderer.Remove(id)
		n.mu.Lock()
		delete(n.active, id)
		n.mu.Unlock()
	})
	n.active[id] = []*time.Timer{fade, remove}
	n.mu.Unlock()
}

// Close stops all pending dismiss timers. Notifications already on the surface
// stay where they are; Display after Close falls back to the log.
func (n *Notifier) Close() {
	if n == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for id, timers := range n.active {
		for _, t := range timers {
			t.Stop()
		}
		delete(n.active, id)
	}
}
