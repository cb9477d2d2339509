package account

import "wallet/internal/core"

// UnreadAlerts returns the number of unread alerts.
func (a *Account) UnreadAlerts() int { return a.alerts.UnreadCount() }

// ListUnreadAlerts returns the unread alerts in creation order.
func (a *Account) ListUnreadAlerts() []core.Alert { return a.alerts.ListUnread() }

// ListAlerts returns every alert in creation order without touching read state.
func (a *Account) ListAlerts() []core.Alert { return a.alerts.ListAll() }

// MarkAlertsRead flags every alert as read.
func (a *Account) MarkAlertsRead() { a.alerts.MarkAllRead() }

// DisplayAlerts returns the unread and full alert listings and then marks
// everything read. Use it when the alerts are actually shown to the user.
func (a *Account) DisplayAlerts() (unread, all []core.Alert) {
	return a.alerts.DisplayAndMarkRead()
}

// ClearAlerts drops every alert.
func (a *Account) ClearAlerts() { a.alerts.Clear() }

// CheckHealth runs the statistics-time checks (deficit and balance under the
// floor). They are not deduplicated.
func (a *Account) CheckHealth() []core.Alert {
	return a.engine.CheckHealth(a.alerts, a.ledger)
}
