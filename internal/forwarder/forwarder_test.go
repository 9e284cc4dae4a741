package forwarder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := New()
	resp, err := p.Forward(context.Background(), http.MethodPost, srv.URL, []byte(`{"id":1}`))
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
}

func TestForward_NonSuccessStatusIsStillAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	p := New()
	resp, err := p.Forward(context.Background(), http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	assert.False(t, resp.Success())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestForward_TransportErrorOnUnreachableHost(t *testing.T) {
	p := New()
	_, err := p.Forward(context.Background(), http.MethodPost, "http://127.0.0.1:1", nil)
	assert.Error(t, err)
}

func TestForward_ContextCancellationAbortsInFlightRequest(t *testing.T) {
	received := make(chan struct{})
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(received)
		<-blocked
	}))
	defer func() {
		close(blocked)
		srv.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-received
		cancel()
	}()

	p := New()
	_, err := p.Forward(ctx, http.MethodPost, srv.URL, nil)
	assert.Error(t, err)
}
