package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/linkpage/internal/config"
)

func wsURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

func newDevServer(t *testing.T) (*fixture, *httptest.Server) {
	t.Helper()

	ts := httptest.NewUnstartedServer(nil)
	origin := "http://" + ts.Listener.Addr().String()

	f := newFixture(t, func(c *config.Config) {
		c.Server.Environment = config.EnvironmentDevelopment
		c.Server.AllowedOrigins = []string{origin}
	})
	ts.Config.Handler = f.server.Routes()
	ts.Start()
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	f.server.hub.Start(ctx)

	return f, ts
}

func TestLiveReloadBroadcastOnRevalidate(t *testing.T) {
	f, ts := newDevServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(ts.URL), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": {ts.URL}},
	})
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return f.server.hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.URL + "/api/revalidate")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageFullReload, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return f.server.hub.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestLiveReloadRejectsForeignOrigin(t *testing.T) {
	_, ts := newDevServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, origin := range []string{"http://evil.example", "file://local", ""} {
		conn, resp, err := websocket.Dial(ctx, wsURL(ts.URL), &websocket.DialOptions{
			HTTPHeader: http.Header{"Origin": {origin}},
		})
		require.Error(t, err, origin)
		if conn != nil {
			conn.CloseNow()
		}
		if resp != nil {
			assert.Equal(t, http.StatusForbidden, resp.StatusCode, origin)
		}
	}
}

func TestHubStopsWithContext(t *testing.T) {
	h := NewHub(nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	h.Start(ctx)
	h.Start(ctx)

	cancel()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}

	// Broadcasting to a stopped hub must not block.
	for range clientBuffer + 1 {
		h.Broadcast(context.Background(), MessageFullReload)
	}
}

func TestNoLiveReloadInProduction(t *testing.T) {
	f := newFixture(t, nil)
	assert.Nil(t, f.server.hub)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/ws", nil).Code)
}
