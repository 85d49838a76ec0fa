package websocket

import "fmt"

type (
	ClientNotConnectedError struct {
		message string
	}

	ClientAlreadyConnectedError struct {
		message string
	}

	ConnectError struct {
		url string
		err error
	}

	SendError struct {
		err error
	}

	WebSocketError struct {
		message string
		err     error
	}
)

func (e *ClientNotConnectedError) Error() string {
	if e.message != "" {
		return e.message
	}
	return "client not connected to server"
}

func (e *ClientAlreadyConnectedError) Error() string {
	if e.message != "" {
		return e.message
	}
	return "client already connected to server"
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.url, e.err)
}

func (e *ConnectError) Unwrap() error {
	return e.err
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send frame: %v", e.err)
}

func (e *SendError) Unwrap() error {
	return e.err
}

func (e *WebSocketError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("websocket error: %s - %v", e.message, e.err)
	}
	return fmt.Sprintf("websocket error: %s", e.message)
}

func (e *WebSocketError) Unwrap() error {
	return e.err
}

func NewClientNotConnectedError(message string) *ClientNotConnectedError {
	return &ClientNotConnectedError{message: message}
}

func NewClientAlreadyConnectedError(message string) *ClientAlreadyConnectedError {
	return &ClientAlreadyConnectedError{message: message}
}

func NewConnectError(url string, err error) *ConnectError {
	return &ConnectError{url: url, err: err}
}

func NewSendError(err error) *SendError {
	return &SendError{err: err}
}

func NewWebSocketError(message string, err error) *WebSocketError {
	return &WebSocketError{message: message, err: err}
}
