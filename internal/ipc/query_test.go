package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantOK    bool
		malformed bool
	}{
		{"string data", `{"data": "hello"}`, "hello", true, false},
		{"mpv success", `{"data":"hola\nmundo","request_id":0,"error":"success"}`, "hola\nmundo", true, false},
		{"null data", `{"data": null}`, "", false, false},
		{"unavailable", `{"request_id":0,"error":"property unavailable"}`, "", false, false},
		{"event first", "{\"event\":\"playback-restart\"}\n{\"data\":\"x\",\"error\":\"success\"}", "x", true, false},
		{"only events", `{"event":"idle"}`, "", false, false},
		{"empty", "", "", false, false},
		{"not json", "socat: connection refused", "", false, true},
		{"missing fields", `{"request_id":1}`, "", false, true},
		{"non-string data", `{"data": 12.5, "error":"success"}`, "", false, true},
		{"empty string", `{"data":"","error":"success"}`, "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseReply(tt.raw)
			var mErr *MalformedResponseError
			if tt.malformed != errors.As(err, &mErr) {
				t.Fatalf("err = %v, malformed want %v", err, tt.malformed)
			}
			if !tt.malformed && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseReply(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEncodeRequest(t *testing.T) {
	if got := string(EncodeRequest(SubTextProperty, 0)); got != `{"command":["get_property","sub-text"]}` {
		t.Errorf("EncodeRequest = %s", got)
	}
	if got := string(EncodeRequest("pause", 7)); got != `{"command":["get_property","pause"],"request_id":7}` {
		t.Errorf("EncodeRequest with id = %s", got)
	}
}

func TestSocatQuerierCommand(t *testing.T) {
	runner := &funcRunner{fn: func(string) (string, error) { return `{"data":"hi"}`, nil }}
	q := SocatQuerier{Runner: runner}

	out, err := q.GetProperty(context.Background(), "/tmp/mpv sock", SubTextProperty)
	if err != nil || out != `{"data":"hi"}` {
		t.Fatalf("got (%q, %v)", out, err)
	}
	want := `printf '%s\n' '{"command":["get_property","sub-text"]}' | socat - '/tmp/mpv sock'`
	if runner.commands[0] != want {
		t.Errorf("command =\n%s\nwant\n%s", runner.commands[0], want)
	}
}

// fakeMPV answers get_property requests on a unix socket the way mpv does,
// with an unsolicited event line before each reply.
func fakeMPV(t *testing.T, value string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				scanner := bufio.NewScanner(c)
				for scanner.Scan() {
					var req struct {
						Command   []string `json:"command"`
						RequestID int64    `json:"request_id"`
					}
					if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
						return
					}
					reply, _ := json.Marshal(map[string]any{
						"data":       value,
						"request_id": req.RequestID,
						"error":      "success",
					})
					c.Write([]byte("{\"event\":\"audio-reconfig\"}\n"))
					c.Write(append(reply, '\n'))
				}
			}(conn)
		}
	}()
	return path
}

func TestSocketQuerier(t *testing.T) {
	path := fakeMPV(t, "¿Qué pasa?")
	q := &SocketQuerier{Timeout: time.Second}

	for i := 0; i < 2; i++ {
		raw, err := q.GetProperty(context.Background(), mediaEndpoint(path), SubTextProperty)
		if err != nil {
			t.Fatalf("GetProperty() error: %v", err)
		}
		if strings.Contains(raw, "event") {
			t.Fatalf("event line returned as reply: %s", raw)
		}
		text, ok, err := ParseReply(raw)
		if err != nil || !ok || text != "¿Qué pasa?" {
			t.Fatalf("ParseReply = (%q, %v, %v)", text, ok, err)
		}
	}
}

func TestSocketQuerierDialError(t *testing.T) {
	q := &SocketQuerier{Timeout: 100 * time.Millisecond}
	_, err := q.GetProperty(context.Background(), mediaEndpoint(filepath.Join(t.TempDir(), "missing.sock")), SubTextProperty)
	if err == nil {
		t.Fatal("expected dial error")
	}
}

func TestSocketQuerierSilentPeer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mute.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	held := make(chan net.Conn, 1)
	t.Cleanup(func() {
		ln.Close()
		select {
		case conn := <-held:
			conn.Close()
		default:
		}
	})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			held <- conn
		}
	}()

	q := &SocketQuerier{Timeout: 100 * time.Millisecond}
	start := time.Now()
	if _, err := q.GetProperty(context.Background(), mediaEndpoint(path), SubTextProperty); err == nil {
		t.Fatal("expected an error from a peer that never replies")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("GetProperty blocked for %v", elapsed)
	}
}
