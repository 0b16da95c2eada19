package assistant

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voice-support-agent/internal/config"
)

func TestWttrClientCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Pune", r.URL.Path)
		assert.Equal(t, "%C+%t", r.URL.Query().Get("format"))
		fmt.Fprint(w, "Sunny +31°C\n")
	}))
	defer srv.Close()

	client := NewWttrClient(config.WeatherConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	got, err := client.Current(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Sunny +31°C", got)
}

func TestWttrClientNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewWttrClient(config.WeatherConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	_, err := client.Current(context.Background(), "Nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

// A caller whose context ends mid-lookup must get ctx.Err() promptly while
// the in-flight request finishes in the background without touching anything
// the caller sees.
func TestWttrClientCancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewWttrClient(config.WeatherConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Current(ctx, "Pune")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
