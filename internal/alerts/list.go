package alerts

import (
	"strings"

	"wallet/internal/core"
)

// List is the ordered alert log of an account. Alerts only move from unread
// to read; nothing is removed except by Clear.
type List struct {
	items []core.Alert
}

// NewList builds a list from previously stored alerts.
func NewList(items ...core.Alert) *List {
	l := &List{}
	l.items = append(l.items, items...)
	return l
}

func (l *List) add(a core.Alert) {
	l.items = append(l.items, a)
}

// Len returns the number of stored alerts.
func (l *List) Len() int {
	return len(l.items)
}

// UnreadCount returns how many alerts have not been read.
func (l *List) UnreadCount() int {
	n := 0
	for _, a := range l.items {
		if !a.Read {
			n++
		}
	}
	return n
}

// ListUnread returns the unread alerts in insertion order.
func (l *List) ListUnread() []core.Alert {
	var out []core.Alert
	for _, a := range l.items {
		if !a.Read {
			out = append(out, a)
		}
	}
	return out
}

// ListAll returns every alert in insertion order. It does not change read state.
func (l *List) ListAll() []core.Alert {
	out := make([]core.Alert, len(l.items))
	copy(out, l.items)
	return out
}

// MarkAllRead flags every alert as read.
func (l *List) MarkAllRead() {
	for i := range l.items {
		l.items[i].Read = true
	}
}

// DisplayAndMarkRead returns the unread and full listings as they were
// before the call, then marks everything read.
func (l *List) DisplayAndMarkRead() (unread, all []core.Alert) {
	unread = l.ListUnread()
	all = l.ListAll()
	l.MarkAllRead()
	return unread, all
}

// Clear drops every alert.
func (l *List) Clear() {
	l.items = nil
}

// HasRecent reports whether any of the last window alerts contains key in
// its message.
func (l *List) HasRecent(key string, window int) bool {
	if window <= 0 {
		return false
	}
	start := len(l.items) - window
	if start < 0 {
		start = 0
	}
	for _, a := range l.items[start:] {
		if strings.Contains(a.Message, key) {
			return true
		}
	}
	return false
}
