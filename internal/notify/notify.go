// Package notify sends best-effort desktop notifications.
package notify

import "github.com/gen2brain/beeep"

const appName = "Murmur"

// Notifier sends desktop notifications. Delivery failures are ignored;
// notifications are advisory only.
type Notifier struct {
	enabled bool
}

// New creates a Notifier. When enabled is false every method is a no-op.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// Listening announces that capture has started.
func (n *Notifier) Listening() {
	n.notify("Listening", "Speak; transcripts follow each pause.")
}

// Paused announces that capture has stopped.
func (n *Notifier) Paused() {
	n.notify("Paused", "Press the hotkey to resume.")
}

// Error reports a fatal pipeline error.
func (n *Notifier) Error(msg string) {
	n.notify("Error", msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled {
		return
	}
	_ = beeep.Notify(appName+": "+title, message, "")
}
