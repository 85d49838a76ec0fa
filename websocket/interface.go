package websocket

import (
	"context"
)

type StatusListener interface {
	OnStateChanged(state string)
	OnException(err error)
}

// Client is one WebSocket connection to the host. Receive yields text frames
// in arrival order and returns io.EOF once the connection has closed.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	GetState() string
	Send(frame []byte) error
	Receive() ([]byte, error)
}
