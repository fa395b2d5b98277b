package lookup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

type launch struct {
	program string
	args    []string
}

func recordingDispatcher(template string) (*Dispatcher, *[]launch) {
	var launches []launch
	d := NewDispatcher("viewer", template, nil)
	d.launch = func(program string, args ...string) error {
		launches = append(launches, launch{program, args})
		return nil
	}
	d.every, d.burst = rate.Inf, 0
	return d, &launches
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		template, text, want string
	}{
		{"https://context.reverso.net/translation/spanish-english/{query}", "hola", "https://context.reverso.net/translation/spanish-english/hola"},
		{"https://d.example/{query}?q={query}", "dos palabras", "https://d.example/dos palabras?q=dos palabras"},
		{"https://d.example/", "x", "https://d.example/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.template, tt.text); got != tt.want {
			t.Errorf("BuildURL(%q, %q) = %q, want %q", tt.template, tt.text, got, tt.want)
		}
	}
}

func TestDispatchLaunchesViewer(t *testing.T) {
	d, launches := recordingDispatcher("https://d.example/{query}")

	if err := d.Dispatch("  ¿qué tal? "); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if len(*launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(*launches))
	}
	got := (*launches)[0]
	if got.program != "viewer" || len(got.args) != 1 || got.args[0] != "https://d.example/  ¿qué tal? " {
		t.Errorf("launch = %+v", got)
	}
}

func TestDispatchRejectsEmpty(t *testing.T) {
	d, launches := recordingDispatcher("https://d.example/{query}")

	for _, text := range []string{"", "   ", "\n\t"} {
		if err := d.Dispatch(text); !errors.Is(err, ErrEmptySelection) {
			t.Errorf("Dispatch(%q) error = %v, want ErrEmptySelection", text, err)
		}
	}
	if len(*launches) != 0 {
		t.Errorf("empty selections launched %d lookups", len(*launches))
	}
}

func TestDispatchSwallowsLaunchFailure(t *testing.T) {
	d, _ := recordingDispatcher("https://d.example/{query}")
	d.launch = func(string, ...string) error { return errors.New("exec: not found") }

	if err := d.Dispatch("hola"); err != nil {
		t.Errorf("launch failure surfaced: %v", err)
	}
}

func TestDispatchThrottlesBursts(t *testing.T) {
	d, launches := recordingDispatcher("https://d.example/{query}")
	d.every, d.burst = rate.Every(time.Hour), 2

	var throttled int
	for i := 0; i < 5; i++ {
		if err := d.Dispatch("hola"); errors.Is(err, ErrThrottled) {
			throttled++
		}
	}
	if len(*launches) != 2 || throttled != 3 {
		t.Errorf("launched %d, throttled %d; want 2 and 3", len(*launches), throttled)
	}
}

func TestDispatchDistinctSelectionsNotThrottled(t *testing.T) {
	d, launches := recordingDispatcher("https://d.example/{query}")
	d.every, d.burst = rate.Every(time.Hour), 2

	for _, word := range []string{"hola", "amigo", "casa", "hola"} {
		if err := d.Dispatch(word); err != nil {
			t.Errorf("Dispatch(%q) error: %v", word, err)
		}
	}
	if len(*launches) != 4 {
		t.Fatalf("launched %d of 4 distinct selections", len(*launches))
	}

	d.Dispatch("casa")
	d.Dispatch("casa")
	if err := d.Dispatch("casa"); !errors.Is(err, ErrThrottled) {
		t.Errorf("third rapid casa error = %v, want ErrThrottled", err)
	}
	if err := d.Dispatch(" casa "); !errors.Is(err, ErrThrottled) {
		t.Errorf("padded repeat error = %v, want ErrThrottled", err)
	}
}

func TestStartDetached(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "opened")
	script := filepath.Join(dir, "viewer")
	body := "#!/bin/sh\nprintf '%s' \"$1\" > " + marker + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if err := StartDetached(script, "https://d.example/hola mundo"); err != nil {
		t.Fatalf("StartDetached() error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(marker)
		if err == nil && len(data) > 0 {
			if string(data) != "https://d.example/hola mundo" {
				t.Errorf("viewer got %q", data)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("viewer never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartDetachedMissingBinary(t *testing.T) {
	err := StartDetached("no-such-viewer-binary", "x")
	if err == nil || !strings.Contains(err.Error(), "no-such-viewer-binary") {
		t.Errorf("expected start error, got %v", err)
	}
}
