package streamdeck

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"deckcounter/config"
	"deckcounter/logger"
	wsclient "deckcounter/websocket"
)

const counterAction = "com.example.counter.action"

func testLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, "debug", "text")
}

// startHost runs script against the first plugin connection and returns the
// port the plugin should dial.
func startHost(t *testing.T, script func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(websocket.Handler(script))
	t.Cleanup(srv.Close)

	idx := strings.LastIndex(srv.URL, ":")
	return srv.URL[idx+1:]
}

func newTestClient(t *testing.T, port string) *Client {
	t.Helper()
	cfg := &config.PluginConfig{Host: "127.0.0.1", CounterAction: counterAction, ConnectAttempts: 1}
	params := config.StartupParams{
		Port:          port,
		PluginUUID:    "PLUGIN-UUID",
		RegisterEvent: "registerPlugin",
		Info:          `{"application":{"version":"6.0"}}`,
	}
	client, err := NewClient(cfg, params, testLogger(), nil)
	require.NoError(t, err)
	return client
}

func TestClient_SessionFlow(t *testing.T) {
	received := make(chan string, 16)

	port := startHost(t, func(ws *websocket.Conn) {
		recv := func() {
			var msg string
			if err := websocket.Message.Receive(ws, &msg); err == nil {
				received <- msg
			}
		}
		send := func(frame string) {
			_ = websocket.Message.Send(ws, frame)
		}

		recv()
		send(`{"event":"willAppear","context":"K1","action":"` + counterAction + `","payload":{"settings":{}}}`)
		recv()
		send(`{"event":"didReceiveSettings","context":"K1","action":"` + counterAction + `","payload":{"settings":{"count":3}}}`)
		recv()
		send(`{not json`)
		send(`{"event":"keyDown","context":"K1","action":"` + counterAction + `"}`)
		recv()
		recv()
	})

	client := newTestClient(t, port)
	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.IsConnected())

	require.NoError(t, client.Run(context.Background()))
	close(received)

	var got []string
	for msg := range received {
		got = append(got, msg)
	}

	require.Len(t, got, 5)
	assert.JSONEq(t, `{"event":"registerPlugin","uuid":"PLUGIN-UUID"}`, got[0])
	assert.JSONEq(t, `{"event":"getSettings","context":"K1"}`, got[1])
	assert.JSONEq(t, `{"event":"setTitle","context":"K1","payload":{"title":"3","target":0}}`, got[2])
	assert.JSONEq(t, `{"event":"setTitle","context":"K1","payload":{"title":"4","target":0}}`, got[3])
	assert.JSONEq(t, `{"event":"setSettings","context":"K1","payload":{"count":4}}`, got[4])

	assert.Equal(t, 4, client.Counters().Get("K1"))
	assert.Equal(t, wsclient.WEB_SOCKET_STATE_STOPPED, client.GetState())
}

func TestClient_RunStopsOnCancel(t *testing.T) {
	done := make(chan struct{})
	port := startHost(t, func(ws *websocket.Conn) { <-done })
	t.Cleanup(func() { close(done) })

	client := newTestClient(t, port)
	require.NoError(t, client.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- client.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, client.IsConnected())
}

func TestClient_ConnectFailure(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {}))
	idx := strings.LastIndex(srv.URL, ":")
	port := srv.URL[idx+1:]
	srv.Close()

	client := newTestClient(t, port)
	err := client.Connect(context.Background())
	require.Error(t, err)

	var connectErr *wsclient.ConnectError
	assert.True(t, errors.As(err, &connectErr))
}

func TestNewClient_RejectsMissingParams(t *testing.T) {
	cfg := &config.PluginConfig{Host: "localhost", CounterAction: counterAction, ConnectAttempts: 1}

	_, err := NewClient(cfg, config.StartupParams{Port: strconv.Itoa(28196)}, testLogger(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required arguments")
}
