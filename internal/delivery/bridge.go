package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumensuite/lumen-core/internal/visual"
)

// defaultBridgeTimeout bounds both the dial and each frame write.
const defaultBridgeTimeout = 2 * time.Second

// bridgeMessage is the frame envelope the bridge process consumes. The
// bridge performs the final low-level strip protocol framing; we only
// tell it which device and which pixels.
type bridgeMessage struct {
	Address string       `json:"address"`
	LedData []visual.RGB `json:"ledData"`
}

// BridgeTransport delivers frames over one persistent WebSocket
// connection to a local bridge process, for installations that need
// higher sustained frame rates than per-frame HTTP requests allow.
//
// The connection is dialled lazily on first use and redialled after a
// write failure. Writes are serialised by a mutex; the per-device
// single-in-flight discipline lives in the compositor, so contention
// here is short.
type BridgeTransport struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewBridgeTransport creates a bridge transport talking to the given
// WebSocket URL (e.g. "ws://127.0.0.1:8780/frames"). A zero timeout
// selects the default.
func NewBridgeTransport(url string, timeout time.Duration) *BridgeTransport {
	if timeout <= 0 {
		timeout = defaultBridgeTimeout
	}
	return &BridgeTransport{
		url:     url,
		timeout: timeout,
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
	}
}

// Name implements Transport.
func (t *BridgeTransport) Name() string { return "bridge" }

// Deliver implements Transport.
func (t *BridgeTransport) Deliver(ctx context.Context, target Target, pixels visual.Buffer) error {
	wired := prepare(target, pixels)

	msg := bridgeMessage{
		Address: target.Address,
		LedData: wired,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		if err := t.dial(ctx); err != nil {
			return err
		}
	}

	if err := t.write(msg); err != nil {
		// One reconnect attempt per delivery; the compositor's tick
		// cadence provides the retry schedule beyond that.
		t.closeLocked()
		if dialErr := t.dial(ctx); dialErr != nil {
			return dialErr
		}
		if err := t.write(msg); err != nil {
			t.closeLocked()
			return fmt.Errorf("%w: bridge write: %v", ErrDeviceUnreachable, err)
		}
	}

	return nil
}

// Close shuts the bridge connection down. Safe to call when never
// connected.
func (t *BridgeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	return nil
}

func (t *BridgeTransport) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, _, err := t.dialer.DialContext(dialCtx, t.url, nil)
	if err != nil {
		return fmt.Errorf("%w: dialling bridge %s: %v", ErrDeviceUnreachable, t.url, err)
	}
	t.conn = conn
	return nil
}

func (t *BridgeTransport) write(msg bridgeMessage) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return err
	}
	return t.conn.WriteJSON(msg)
}

func (t *BridgeTransport) closeLocked() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}
