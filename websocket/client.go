package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"golang.org/x/net/websocket"

	"deckcounter/logger"
)

type WebSocketClient struct {
	url       string
	listener  StatusListener
	conn      *websocket.Conn
	state     string
	pending   []string
	stateMux  sync.RWMutex
	notifyMux sync.Mutex
	writeMux  sync.Mutex
	logger    logger.Logger
}

func NewWebSocketClient(wsURL string, listener StatusListener, logger logger.Logger) *WebSocketClient {
	return &WebSocketClient{
		url:      wsURL,
		listener: listener,
		state:    WEB_SOCKET_STATE_STOPPED,
		logger:   logger,
	}
}

func (c *WebSocketClient) Connect(ctx context.Context) error {
	err, dialErr := c.connect(ctx)
	c.flushState()

	if dialErr != nil && c.listener != nil {
		c.listener.OnException(NewWebSocketError("connection failed", dialErr))
	}
	return err
}

func (c *WebSocketClient) connect(ctx context.Context) (error, error) {
	c.stateMux.Lock()
	defer c.stateMux.Unlock()

	if c.state != WEB_SOCKET_STATE_STOPPED {
		return NewClientAlreadyConnectedError("client already connecting or connected"), nil
	}

	c.setState(WEB_SOCKET_STATE_CONNECTING)

	u, err := url.Parse(c.url)
	if err != nil {
		c.setState(WEB_SOCKET_STATE_STOPPED)
		return NewConnectError(c.url, fmt.Errorf("invalid WebSocket URL: %w", err)), nil
	}

	wsConfig, err := websocket.NewConfig(c.url, "http://"+u.Host)
	if err != nil {
		c.setState(WEB_SOCKET_STATE_STOPPED)
		return NewConnectError(c.url, fmt.Errorf("failed to create WebSocket config: %w", err)), nil
	}

	conn, err := wsConfig.DialContext(ctx)
	if err != nil {
		c.setState(WEB_SOCKET_STATE_STOPPED)
		return NewConnectError(c.url, err), err
	}

	c.conn = conn
	c.setState(WEB_SOCKET_STATE_CONNECTED)

	c.logger.Info("Connected to host at %s", c.url)
	return nil, nil
}

func (c *WebSocketClient) Disconnect() error {
	defer c.flushState()

	c.stateMux.Lock()
	defer c.stateMux.Unlock()

	if c.state == WEB_SOCKET_STATE_STOPPED {
		return nil
	}

	c.setState(WEB_SOCKET_STATE_STOPPING)

	if c.conn != nil {
		if closeErr := c.conn.Close(); closeErr != nil {
			c.logger.Debug("WebSocket connection closed during shutdown: %v", closeErr)
		}
		c.conn = nil
	}

	c.setState(WEB_SOCKET_STATE_STOPPED)
	c.logger.Info("Disconnected from host")
	return nil
}

func (c *WebSocketClient) GetState() string {
	c.stateMux.RLock()
	defer c.stateMux.RUnlock()
	return c.state
}

func (c *WebSocketClient) IsConnected() bool {
	return c.GetState() == WEB_SOCKET_STATE_CONNECTED
}

// setState must be called with stateMux held. The listener is told later by
// flushState, once the lock is released.
func (c *WebSocketClient) setState(newState string) {
	if c.state == newState {
		return
	}
	c.state = newState
	c.pending = append(c.pending, newState)
}

// flushState delivers queued state changes in the order they happened. It
// must not be called with stateMux held.
func (c *WebSocketClient) flushState() {
	c.notifyMux.Lock()
	defer c.notifyMux.Unlock()

	c.stateMux.Lock()
	states := c.pending
	c.pending = nil
	c.stateMux.Unlock()

	if c.listener == nil {
		return
	}
	for _, state := range states {
		c.listener.OnStateChanged(state)
	}
}

func (c *WebSocketClient) currentConn() *websocket.Conn {
	c.stateMux.RLock()
	defer c.stateMux.RUnlock()
	if c.state != WEB_SOCKET_STATE_CONNECTED {
		return nil
	}
	return c.conn
}

// Send writes frame as a single text message. Concurrent callers are
// serialized so frames leave in call order.
func (c *WebSocketClient) Send(frame []byte) error {
	conn := c.currentConn()
	if conn == nil {
		return NewSendError(NewClientNotConnectedError("not connected"))
	}

	c.writeMux.Lock()
	defer c.writeMux.Unlock()

	if err := websocket.Message.Send(conn, string(frame)); err != nil {
		c.logger.Error("Write error: %v", err)
		if c.listener != nil {
			c.listener.OnException(NewWebSocketError("write error", err))
		}
		return NewSendError(err)
	}

	c.logger.Debug("Sent frame: %s", frame)
	return nil
}

// Receive blocks until the next frame arrives. It returns io.EOF when the host
// closes the connection or Disconnect was called.
func (c *WebSocketClient) Receive() ([]byte, error) {
	conn := c.currentConn()
	if conn == nil {
		return nil, NewClientNotConnectedError("not connected")
	}

	var message string
	err := websocket.Message.Receive(conn, &message)
	if err == nil {
		return []byte(message), nil
	}

	state := c.GetState()
	if errors.Is(err, io.EOF) {
		c.logger.Info("Connection closed by host")
		c.markStopped()
		return nil, io.EOF
	}

	if state == WEB_SOCKET_STATE_STOPPING || state == WEB_SOCKET_STATE_STOPPED {
		c.logger.Debug("Read error during shutdown (expected): %v", err)
		return nil, io.EOF
	}

	c.logger.Error("Read error: %v, State: %s", err, state)
	if c.listener != nil {
		c.listener.OnException(NewWebSocketError("read error", err))
	}
	c.markStopped()
	return nil, NewWebSocketError("read error", err)
}

func (c *WebSocketClient) markStopped() {
	defer c.flushState()

	c.stateMux.Lock()
	defer c.stateMux.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.setState(WEB_SOCKET_STATE_STOPPED)
}
