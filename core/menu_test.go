package core

import "testing"

func TestMenuSelectsHighlightedEntry(t *testing.T) {
	m := NewMenu(0, 5)
	if m.Highlighted() != MenuEditTime {
		t.Fatalf("initial highlight = %v, want time", m.Highlighted())
	}
	if !m.Step(Clicks{Choose: 1}, 1) {
		t.Fatal("Choose did not close the menu")
	}
	if got := m.Selected(); got != MenuEditTime {
		t.Errorf("Selected() = %v, want time", got)
	}
}

func TestMenuSettingsToggles(t *testing.T) {
	m := NewMenu(0, 5)

	m.Step(Clicks{Settings: 1}, 1)
	if m.Highlighted() != MenuEditEpoch {
		t.Fatalf("highlight after one toggle = %v, want epoch", m.Highlighted())
	}
	m.Step(Clicks{Settings: 2}, 2)
	if m.Highlighted() != MenuEditEpoch {
		t.Fatalf("two toggles in one poll changed highlight to %v", m.Highlighted())
	}
	m.Step(Clicks{Settings: 1}, 3)
	if m.Highlighted() != MenuEditTime {
		t.Fatalf("highlight = %v, want time", m.Highlighted())
	}

	m.Step(Clicks{Settings: 1, Choose: 1}, 4)
	if got := m.Selected(); got != MenuEditEpoch {
		t.Errorf("Selected() = %v, want epoch", got)
	}
}

func TestMenuTimeoutSelectsNothing(t *testing.T) {
	m := NewMenu(100, 5)
	m.Step(Clicks{Settings: 1}, 101)

	if m.Step(Clicks{}, 105) {
		t.Fatal("closed before timeout")
	}
	if m.Selected() != MenuNone {
		t.Fatal("Selected() reported a choice while open")
	}
	if !m.Step(Clicks{}, 106) {
		t.Fatal("still open after timeout")
	}
	if got := m.Selected(); got != MenuNone {
		t.Errorf("Selected() = %v after timeout, want none", got)
	}
	if !m.Step(Clicks{Choose: 1}, 107) || m.Selected() != MenuNone {
		t.Error("closed menu accepted a late selection")
	}
}

func TestMenuOptionString(t *testing.T) {
	for o, want := range map[MenuOption]string{
		MenuNone:      "none",
		MenuEditTime:  "time",
		MenuEditEpoch: "epoch",
	} {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", o, got, want)
		}
	}
}
