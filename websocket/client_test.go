package websocket

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"deckcounter/logger"
)

type recordingListener struct {
	mu     sync.Mutex
	states []string
	errs   []error
}

func (l *recordingListener) OnStateChanged(state string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
}

func (l *recordingListener) OnException(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *recordingListener) States() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.states...)
}

func testLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, "debug", "text")
}

func newHost(t *testing.T, handler func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(websocket.Handler(handler))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketClient_SendReachesHost(t *testing.T) {
	received := make(chan string, 1)
	url := newHost(t, func(ws *websocket.Conn) {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err == nil {
			received <- msg
		}
	})

	listener := &recordingListener{}
	client := NewWebSocketClient(url, listener, testLogger())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect()

	assert.True(t, client.IsConnected())
	require.NoError(t, client.Send([]byte(`{"event":"registerPlugin","uuid":"abc"}`)))

	select {
	case msg := <-received:
		assert.JSONEq(t, `{"event":"registerPlugin","uuid":"abc"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("host did not receive frame")
	}

	assert.Equal(t, []string{WEB_SOCKET_STATE_CONNECTING, WEB_SOCKET_STATE_CONNECTED}, listener.States())
}

func TestWebSocketClient_ReceiveInOrderThenEOF(t *testing.T) {
	frames := []string{`{"event":"a"}`, `{"event":"b"}`, `{"event":"c"}`}
	url := newHost(t, func(ws *websocket.Conn) {
		for _, f := range frames {
			if err := websocket.Message.Send(ws, f); err != nil {
				return
			}
		}
	})

	client := NewWebSocketClient(url, nil, testLogger())
	require.NoError(t, client.Connect(context.Background()))

	for _, want := range frames {
		got, err := client.Receive()
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}

	_, err := client.Receive()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, WEB_SOCKET_STATE_STOPPED, client.GetState())
}

func TestWebSocketClient_SendWhenNotConnected(t *testing.T) {
	client := NewWebSocketClient("ws://localhost:1", nil, testLogger())

	err := client.Send([]byte(`{}`))
	require.Error(t, err)

	var sendErr *SendError
	assert.True(t, errors.As(err, &sendErr))
	var notConnected *ClientNotConnectedError
	assert.True(t, errors.As(err, &notConnected))
}

func TestWebSocketClient_ConnectFailure(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	listener := &recordingListener{}
	client := NewWebSocketClient(url, listener, testLogger())

	err := client.Connect(context.Background())
	require.Error(t, err)

	var connectErr *ConnectError
	assert.True(t, errors.As(err, &connectErr))
	assert.Equal(t, WEB_SOCKET_STATE_STOPPED, client.GetState())
	assert.Len(t, listener.errs, 1)
}

func TestWebSocketClient_ConnectTwice(t *testing.T) {
	done := make(chan struct{})
	url := newHost(t, func(ws *websocket.Conn) { <-done })
	t.Cleanup(func() { close(done) })

	client := NewWebSocketClient(url, nil, testLogger())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect()

	err := client.Connect(context.Background())
	var already *ClientAlreadyConnectedError
	assert.True(t, errors.As(err, &already))
}

func TestWebSocketClient_DisconnectUnblocksReceive(t *testing.T) {
	done := make(chan struct{})
	url := newHost(t, func(ws *websocket.Conn) { <-done })
	t.Cleanup(func() { close(done) })

	client := NewWebSocketClient(url, nil, testLogger())
	require.NoError(t, client.Connect(context.Background()))

	result := make(chan error, 1)
	go func() {
		_, err := client.Receive()
		result <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, client.Disconnect())

	select {
	case err := <-result:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after Disconnect")
	}
}

type blockingListener struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (l *blockingListener) OnStateChanged(state string) {
	if state != WEB_SOCKET_STATE_CONNECTED {
		return
	}
	l.once.Do(func() { close(l.entered) })
	<-l.release
}

func (l *blockingListener) OnException(err error) {}

func TestWebSocketClient_SlowListenerDoesNotBlockSocket(t *testing.T) {
	received := make(chan string, 1)
	url := newHost(t, func(ws *websocket.Conn) {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err == nil {
			received <- msg
		}
	})

	listener := &blockingListener{entered: make(chan struct{}), release: make(chan struct{})}
	client := NewWebSocketClient(url, listener, testLogger())
	defer client.Disconnect()
	release := sync.OnceFunc(func() { close(listener.release) })
	defer release()

	connectDone := make(chan error, 1)
	go func() {
		connectDone <- client.Connect(context.Background())
	}()

	select {
	case <-listener.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not notified of the connection")
	}

	stateDone := make(chan string, 1)
	go func() {
		stateDone <- client.GetState()
	}()
	select {
	case state := <-stateDone:
		assert.Equal(t, WEB_SOCKET_STATE_CONNECTED, state)
	case <-time.After(time.Second):
		t.Fatal("GetState blocked behind the state listener")
	}

	require.NoError(t, client.Send([]byte(`{"event":"getSettings","context":"C"}`)))
	select {
	case msg := <-received:
		assert.JSONEq(t, `{"event":"getSettings","context":"C"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("host did not receive frame")
	}

	release()
	require.NoError(t, <-connectDone)
}
