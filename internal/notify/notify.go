// package notify holds the single user-visible status message.
//
// Every state-changing event in the application (an OAuth redirect landing, a
// transfer finishing, an explicit reset) is modeled as an [Event] with its own
// rendering rule. The [Notifier] keeps only the most recent rendering:
// last write wins, no history.
package notify

import "sync"

// Event is a state-changing occurrence with a human-readable rendering.
//
// Concrete variants live next to the subsystems that emit them (internal/auth,
// internal/transfer) so each keeps its own wording rule.
type Event interface {
	Message() string
}

// Notifier stores the current status message, overwritten by every published event.
type Notifier struct {
	mu      sync.Mutex
	current string
}

// NewNotifier creates an empty Notifier. An empty message means nothing is rendered.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Publish overwrites the current message with the event's rendering.
func (n *Notifier) Publish(e Event) {
	if e == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = e.Message()
}

// Current returns the latest message, or the empty string when nothing has happened yet.
func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Clear empties the current message.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = ""
}
