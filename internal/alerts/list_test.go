package alerts

import (
	"testing"

	"wallet/internal/core"
)

func TestListReadState(t *testing.T) {
	l := NewList(
		core.Alert{Kind: core.LowBalance, Message: "a"},
		core.Alert{Kind: core.BudgetWarning, Message: "b", Read: true},
		core.Alert{Kind: core.Overspending, Message: "c"},
	)
	if l.UnreadCount() != 2 {
		t.Fatalf("unread=%d, want 2", l.UnreadCount())
	}

	all := l.ListAll()
	if len(all) != 3 || all[0].Message != "a" || all[2].Message != "c" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if l.UnreadCount() != 2 {
		t.Fatalf("ListAll must not mark alerts read")
	}

	unread, shown := l.DisplayAndMarkRead()
	if len(unread) != 2 || len(shown) != 3 || shown[0].Read {
		t.Fatalf("display must return pre-call state: unread=%+v all=%+v", unread, shown)
	}
	if l.UnreadCount() != 0 || len(l.ListUnread()) != 0 {
		t.Fatalf("expected everything read")
	}

	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("clear left %d alerts", l.Len())
	}
}

func TestHasRecent(t *testing.T) {
	l := NewList()
	l.add(core.Alert{Message: "[x] first"})
	for i := 0; i < 9; i++ {
		l.add(core.Alert{Message: "[y] filler"})
	}
	if !l.HasRecent("[x]", 10) {
		t.Fatalf("x is within the last 10")
	}
	l.add(core.Alert{Message: "[y] filler"})
	if l.HasRecent("[x]", 10) {
		t.Fatalf("x scrolled out of the last 10")
	}
	if l.HasRecent("[y]", 0) {
		t.Fatalf("zero window never matches")
	}
}
