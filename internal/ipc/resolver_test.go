package ipc

import (
	"context"
	"testing"

	"sublookup/internal/shell"
)

type funcRunner struct {
	fn       func(command string) (string, error)
	commands []string
}

func (r *funcRunner) Run(_ context.Context, command string) (string, error) {
	r.commands = append(r.commands, command)
	return r.fn(command)
}

const smplayerTree = `smplayer
  └─mpv --no-config --no-quiet --terminal --no-msg-color --input-ipc-server=/tmp/smplayer-mpv-6c1e --msg-level=ffmpeg/demuxer=error --sub-auto=fuzzy /home/me/film.mkv`

func TestResolverExtractsFlag(t *testing.T) {
	runner := &funcRunner{fn: func(string) (string, error) { return smplayerTree, nil }}
	r := NewResolver(runner, 321, "", nil)

	ep, ok := r.Resolve(context.Background())
	if !ok {
		t.Fatal("Resolve() reported unresolved")
	}
	if ep != "/tmp/smplayer-mpv-6c1e" {
		t.Errorf("endpoint = %q", ep)
	}
	if runner.commands[0] != "pstree -a -T 321" {
		t.Errorf("command = %q", runner.commands[0])
	}
}

func TestResolverCachesAfterSuccess(t *testing.T) {
	runner := &funcRunner{fn: func(string) (string, error) { return smplayerTree, nil }}
	r := NewResolver(runner, 1, DefaultFlag, nil)

	for i := 0; i < 5; i++ {
		if _, ok := r.Resolve(context.Background()); !ok {
			t.Fatalf("call %d unresolved", i)
		}
	}
	if len(runner.commands) != 1 {
		t.Errorf("lookup ran %d times, want 1", len(runner.commands))
	}
}

func TestResolverUnresolvedUntilChildStarts(t *testing.T) {
	calls := 0
	runner := &funcRunner{fn: func(string) (string, error) {
		calls++
		if calls < 6 {
			return "smplayer", nil
		}
		return smplayerTree, nil
	}}
	r := NewResolver(runner, 1, DefaultFlag, nil)

	for i := 1; i <= 5; i++ {
		if ep, ok := r.Resolve(context.Background()); ok || ep != "" {
			t.Fatalf("call %d resolved early: %q", i, ep)
		}
	}
	if _, ok := r.Endpoint(); ok {
		t.Fatal("Endpoint() reported resolved before discovery")
	}

	ep, ok := r.Resolve(context.Background())
	if !ok || ep != "/tmp/smplayer-mpv-6c1e" {
		t.Fatalf("6th call = (%q, %v)", ep, ok)
	}
	if cached, ok := r.Endpoint(); !ok || cached != ep {
		t.Errorf("Endpoint() = (%q, %v)", cached, ok)
	}
}

func TestResolverToleratesCommandFailure(t *testing.T) {
	runner := &funcRunner{fn: func(string) (string, error) {
		return "", &shell.CommandError{Command: "pstree", ExitCode: 1}
	}}
	r := NewResolver(runner, 1, DefaultFlag, nil)
	if _, ok := r.Resolve(context.Background()); ok {
		t.Fatal("expected unresolved on failure")
	}
}

func TestResolverCustomFlag(t *testing.T) {
	runner := &funcRunner{fn: func(string) (string, error) {
		return "player\n  └─engine --control.sock=/run/user/1000/p.sock", nil
	}}
	r := NewResolver(runner, 1, "control.sock", nil)
	ep, ok := r.Resolve(context.Background())
	if !ok || ep != "/run/user/1000/p.sock" {
		t.Fatalf("got (%q, %v)", ep, ok)
	}
}

func TestResolverIgnoresEmptyValue(t *testing.T) {
	runner := &funcRunner{fn: func(string) (string, error) {
		return "mpv --input-ipc-server= --idle", nil
	}}
	r := NewResolver(runner, 1, DefaultFlag, nil)
	if ep, ok := r.Resolve(context.Background()); ok {
		t.Fatalf("empty flag value resolved to %q", ep)
	}
}
