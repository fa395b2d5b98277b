package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"sublookup/internal/media"
	"sublookup/internal/shell"
)

// SubTextProperty is the mpv property holding the subtitle currently on screen.
const SubTextProperty = "sub-text"

// Querier asks an endpoint for a property and returns the raw reply text.
type Querier interface {
	GetProperty(ctx context.Context, endpoint media.Endpoint, property string) (string, error)
}

type request struct {
	Command   []string `json:"command"`
	RequestID int64    `json:"request_id,omitempty"`
}

// EncodeRequest builds the JSON line for a get_property call. A zero id is
// omitted from the object.
func EncodeRequest(property string, id int64) []byte {
	data, _ := json.Marshal(request{
		Command:   []string{"get_property", property},
		RequestID: id,
	})
	return data
}

// SocatQuerier pipes the request through socat using the shell executor.
type SocatQuerier struct {
	Runner shell.Runner
}

func (q SocatQuerier) GetProperty(ctx context.Context, endpoint media.Endpoint, property string) (string, error) {
	command := fmt.Sprintf("printf '%%s\\n' %s | socat - %s",
		shell.Quote(string(EncodeRequest(property, 0))),
		shell.Quote(endpoint.String()))
	return q.Runner.Run(ctx, command)
}

// SocketQuerier dials the unix socket directly. Each call opens a fresh
// connection and waits for the reply carrying its request id.
type SocketQuerier struct {
	Timeout time.Duration
	nextID  atomic.Int64
}

func (q *SocketQuerier) GetProperty(ctx context.Context, endpoint media.Endpoint, property string) (string, error) {
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", endpoint.String())
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", endpoint, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("setting deadline: %w", err)
	}

	id := q.nextID.Add(1)
	line := append(EncodeRequest(property, id), '\n')
	if _, err := conn.Write(line); err != nil {
		return "", fmt.Errorf("writing request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		text := scanner.Text()
		var header struct {
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal([]byte(text), &header); err != nil {
			continue
		}
		if header.RequestID == id {
			return text, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading reply: %w", err)
	}
	return "", fmt.Errorf("reading reply: %w", io.ErrUnexpectedEOF)
}

// MalformedResponseError is a reply that is not JSON or lacks the fields of
// a command reply.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed ipc reply %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("malformed ipc reply %q", e.Raw)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ParseReply extracts the string data of a command reply. Event lines that
// mpv interleaves on the socket are skipped. ok is false when the reply
// carries null or no data, e.g. mpv's "property unavailable" while no
// subtitle is shown.
func ParseReply(raw string) (data string, ok bool, err error) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &fields); err != nil {
			return "", false, &MalformedResponseError{Raw: line, Err: err}
		}
		if _, isEvent := fields["event"]; isEvent {
			continue
		}
		value, hasData := fields["data"]
		_, hasError := fields["error"]
		if !hasData && !hasError {
			return "", false, &MalformedResponseError{Raw: line}
		}
		if !hasData || len(value) == 0 || string(value) == "null" {
			return "", false, nil
		}

		if err := json.Unmarshal(value, &data); err != nil {
			return "", false, &MalformedResponseError{Raw: line, Err: err}
		}
		return data, true, nil
	}
	return "", false, nil
}
