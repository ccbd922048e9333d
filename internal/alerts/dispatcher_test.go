package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherSend(t *testing.T) {
	payload := Payload{
		Title:    "[AWS] CRITICAL: S3 bucket public",
		Message:  "Bucket data is world readable",
		Status:   StatusCritical,
		Priority: PriorityP1,
		Source:   Source,
	}

	t.Run("2xx response reports delivered", func(t *testing.T) {
		var got Payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		d := NewDispatcher(2 * time.Second)
		assert.True(t, d.Send(context.Background(), srv.URL, payload))
		assert.Equal(t, payload.Title, got.Title)
		assert.Equal(t, payload.Priority, got.Priority)
	})

	t.Run("5xx response reports failure without panicking", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		d := NewDispatcher(2 * time.Second)
		assert.False(t, d.Send(context.Background(), srv.URL, payload))
	})

	t.Run("unreachable endpoint reports failure", func(t *testing.T) {
		d := NewDispatcher(500 * time.Millisecond)
		assert.False(t, d.Send(context.Background(), "http://127.0.0.1:1/webhook", payload))
	})

	t.Run("cancelled context reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := NewDispatcher(2 * time.Second)
		assert.False(t, d.Send(ctx, srv.URL, payload))
	})
}
