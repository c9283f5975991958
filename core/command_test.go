package core

import (
	"errors"
	"testing"
)

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	var got []string
	registry.Register("echo", "<words>", func(args []string) (string, error) {
		got = args
		return "done", nil
	})

	cmd, ok := registry.Lookup("echo")
	if !ok {
		t.Fatal("Failed to retrieve registered command")
	}
	if cmd.Usage != "<words>" {
		t.Errorf("Expected usage '<words>', got '%s'", cmd.Usage)
	}

	reply, err := registry.Dispatch("echo a  b")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if reply != "done" {
		t.Errorf("reply = %q, want %q", reply, "done")
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("handler args = %q", got)
	}

	if _, err := registry.Dispatch("nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command error = %v", err)
	}
	if _, err := registry.Dispatch("   "); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("blank line error = %v", err)
	}
}

func TestCommandRegistryHelpOrder(t *testing.T) {
	registry := NewCommandRegistry()
	noop := func([]string) (string, error) { return "", nil }

	registry.Register("state", "", noop)
	registry.Register("mode", "<0..4>", noop)
	registry.Register("state", "", noop)

	if registry.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", registry.Count())
	}
	help := registry.Help()
	if len(help) != 2 || help[0] != "state" || help[1] != "mode <0..4>" {
		t.Errorf("Help() = %q", help)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"state", []string{"state"}},
		{"set_zone -3\r", []string{"set_zone", "-3"}},
		{`set_epoch "2024/01/31 09:41"`, []string{"set_epoch", "2024/01/31", "09:41"}},
		{"\tmode\t2 ", []string{"mode", "2"}},
	}

	for _, tt := range tests {
		got := splitWords(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitWords(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitWords(%q) = %q, want %q", tt.in, got, tt.want)
				break
			}
		}
	}
}
