package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

// Dispatcher performs the outbound webhook call. Failures degrade to a
// false return so a bad endpoint never aborts the caller; no retries are
// performed here.
type Dispatcher struct {
	httpClient *http.Client
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send POSTs the payload as JSON and reports whether the endpoint accepted
// it (2xx). Non-2xx responses and transport failures are logged and
// reported as false.
func (d *Dispatcher) Send(ctx context.Context, url string, payload Payload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[error] operation=alert_send error=marshal payload: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[error] operation=alert_send error=build request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		log.Printf("[warn] operation=alert_send message=webhook unreachable error=%v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[warn] operation=alert_send message=webhook returned status %d body=%s",
			resp.StatusCode, string(respBody))
		return false
	}

	return true
}
