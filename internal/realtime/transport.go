package realtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	transportWebsocket = "websocket"
	transportPolling   = "polling"
)

// maxPollBody bounds a single long-polling response.
const maxPollBody = 8 << 20

var errTransportClosed = errors.New("transport closed")

// transport moves Engine.IO packets. Read blocks until at least one packet
// arrives.
type transport interface {
	Name() string
	Read() ([]string, error)
	Write(ctx context.Context, packet string) error
	SetReadTimeout(d time.Duration)
	Close() error
}

// endpoint derives the Engine.IO URL from the API base URL. Only scheme and
// host are kept.
func endpoint(baseURL, transportName string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", baseURL)
	}

	scheme := u.Scheme
	if transportName == transportWebsocket {
		switch scheme {
		case "https":
			scheme = "wss"
		default:
			scheme = "ws"
		}
	}

	out := url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     "/socket.io/",
		RawQuery: "EIO=4&transport=" + transportName,
	}
	return out.String(), nil
}

// wsTransport carries one packet per websocket text frame.
type wsTransport struct {
	conn *websocket.Conn

	writeMu     sync.Mutex
	readTimeout time.Duration
}

func dialWebsocket(ctx context.Context, dialer *websocket.Dialer, baseURL string) (*wsTransport, error) {
	target, err := endpoint(baseURL, transportWebsocket)
	if err != nil {
		return nil, err
	}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Name() string { return transportWebsocket }

func (t *wsTransport) SetReadTimeout(d time.Duration) {
	t.readTimeout = d
}

func (t *wsTransport) Read() ([]string, error) {
	if t.readTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
			return nil, err
		}
	}
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return []string{string(data)}, nil
}

func (t *wsTransport) Write(_ context.Context, packet string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(packet))
}

func (t *wsTransport) Close() error {
	t.writeMu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	t.writeMu.Unlock()
	return t.conn.Close()
}

// pollingTransport emulates a stream with HTTP long-polling: GET receives,
// POST sends.
type pollingTransport struct {
	client  *http.Client
	url     string
	ctx     context.Context
	cancel  context.CancelFunc
	pending []string
}

// openPolling performs the polling handshake and returns the transport plus
// the raw open packet.
func openPolling(ctx context.Context, client *http.Client, baseURL string) (*pollingTransport, string, error) {
	target, err := endpoint(baseURL, transportPolling)
	if err != nil {
		return nil, "", err
	}

	tctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := &pollingTransport{client: client, url: target, ctx: tctx, cancel: cancel}

	packets, err := t.get(ctx, target)
	if err != nil {
		cancel()
		return nil, "", fmt.Errorf("polling handshake: %w", err)
	}
	if len(packets) == 0 {
		cancel()
		return nil, "", fmt.Errorf("polling handshake: %w: empty response", errBadPacket)
	}
	open, err := parseOpen(packets[0])
	if err != nil {
		cancel()
		return nil, "", err
	}
	t.url = target + "&sid=" + url.QueryEscape(open.SID)
	t.pending = packets[1:]
	return t, packets[0], nil
}

func (t *pollingTransport) Name() string { return transportPolling }

// SetReadTimeout is a no-op; the HTTP client timeout bounds each poll.
func (t *pollingTransport) SetReadTimeout(time.Duration) {}

func (t *pollingTransport) Read() ([]string, error) {
	if len(t.pending) > 0 {
		out := t.pending
		t.pending = nil
		return out, nil
	}
	for {
		packets, err := t.get(t.ctx, t.url)
		if err != nil {
			if t.ctx.Err() != nil {
				return nil, errTransportClosed
			}
			return nil, err
		}
		if len(packets) > 0 {
			return packets, nil
		}
	}
}

func (t *pollingTransport) Write(ctx context.Context, packet string) error {
	if t.ctx.Err() != nil {
		return errTransportClosed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(packet))
	if err != nil {
		return fmt.Errorf("build poll write: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("poll write: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poll write: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (t *pollingTransport) Close() error {
	if t.ctx.Err() != nil {
		return nil
	}
	wctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := t.Write(wctx, string(eioClose))
	t.cancel()
	return err
}

func (t *pollingTransport) get(ctx context.Context, target string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPollBody))
	if err != nil {
		return nil, fmt.Errorf("read poll: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll: HTTP %d", resp.StatusCode)
	}
	return splitPayload(string(bytes.TrimSpace(body))), nil
}
