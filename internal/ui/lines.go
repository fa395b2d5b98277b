package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"sublookup/internal/lookup"
)

// Lines is the presenter used when stdout is not a terminal: each new
// subtitle is printed on its own line and each line read from input is looked
// up. A line holding just "." looks up the whole current subtitle.
type Lines struct {
	out        io.Writer
	dispatcher Dispatcher

	mu      sync.Mutex
	current string
}

func NewLines(out io.Writer, d Dispatcher) *Lines {
	return &Lines{out: out, dispatcher: d}
}

// Show prints a subtitle, folding its line breaks into " / ".
func (l *Lines) Show(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = text
	fmt.Fprintln(l.out, strings.Join(strings.Fields(strings.ReplaceAll(text, "\n", " / ")), " "))
}

// ReadSelections dispatches one lookup per input line until EOF.
func (l *Lines) ReadSelections(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "." {
			l.mu.Lock()
			text = l.current
			l.mu.Unlock()
		}
		if text == "" {
			continue
		}

		err := l.dispatcher.Dispatch(text)
		if errors.Is(err, lookup.ErrThrottled) {
			l.mu.Lock()
			fmt.Fprintln(l.out, "# lookup skipped, slow down")
			l.mu.Unlock()
		}
	}
	return scanner.Err()
}
