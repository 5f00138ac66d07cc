package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lumensuite/lumen-core/internal/visual"
)

// HTTP transport limits.
const (
	// defaultHTTPTimeout keeps one slow device from stalling its sender
	// loop for long.
	defaultHTTPTimeout = 2 * time.Second

	// maxHTTPPixels is the practical firmware JSON buffer limit; larger
	// installations must use the bridge transport.
	maxHTTPPixels = 4096
)

// statePayload is the device-native JSON body: one 6-character hex
// string per pixel, in wiring order.
type statePayload struct {
	Seg segment `json:"seg"`
}

type segment struct {
	I []string `json:"i"`
}

// HTTPTransport delivers frames with a stateless POST per frame,
// suitable for modest frame rates. The response body carries no
// application payload; only the status code matters.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates the HTTP transport. A zero timeout selects
// the default.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

// Name implements Transport.
func (t *HTTPTransport) Name() string { return "http" }

// Deliver implements Transport.
func (t *HTTPTransport) Deliver(ctx context.Context, target Target, pixels visual.Buffer) error {
	if len(pixels) > maxHTTPPixels {
		return fmt.Errorf("%w: %d pixels over http limit %d", ErrBufferTooLarge, len(pixels), maxHTTPPixels)
	}

	wired := prepare(target, pixels)

	payload := statePayload{Seg: segment{I: make([]string, len(wired))}}
	for i, p := range wired {
		payload.Seg.I[i] = p.Hex()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding state payload: %w", err)
	}

	url := fmt.Sprintf("http://%s/json/state", target.Address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeviceUnreachable, target.Address, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do with a close error

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrRejected, target.Address, resp.StatusCode)
	}

	return nil
}
