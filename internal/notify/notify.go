// Package notify shows transient, auto-dismissing popups. Show never blocks
// the caller; each popup closes itself after its timeout.
package notify

import (
	"sync"
	"time"
)

type Notifier interface {
	Show(title, message string, timeout time.Duration)
}

// Popup is a single queued notification
type Popup struct {
	Title   string
	Message string
	Timeout time.Duration
}

// Queue collects popups for an owner that renders them itself, such as the
// TUI. It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	popups []Popup
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Show(title, message string, timeout time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.popups = append(q.popups, Popup{Title: title, Message: message, Timeout: timeout})
}

// Drain returns every queued popup in arrival order and empties the queue
func (q *Queue) Drain() []Popup {
	q.mu.Lock()
	defer q.mu.Unlock()
	popups := q.popups
	q.popups = nil
	return popups
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.popups)
}

// Multi fans each popup out to several notifiers
type Multi []Notifier

func (m Multi) Show(title, message string, timeout time.Duration) {
	for _, n := range m {
		if n != nil {
			n.Show(title, message, timeout)
		}
	}
}
