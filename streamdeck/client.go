package streamdeck

import (
	"context"
	"fmt"

	"deckcounter/config"
	"deckcounter/counter"
	"deckcounter/dispatcher"
	"deckcounter/logger"
	"deckcounter/protocol"
	"deckcounter/retry"
	"deckcounter/websocket"
)

type Listener interface {
	OnStateChanged(state string)
	OnException(err error)
}

// Client is one plugin session with the host: it connects, registers and then
// feeds host events to the dispatcher until the connection ends.
type Client struct {
	wsClient   websocket.Client
	params     config.StartupParams
	store      *counter.Store
	dispatcher *dispatcher.Dispatcher
	retry      *retry.Manager
	logger     logger.Logger
}

type clientListener struct {
	parent Listener
}

func NewClient(cfg *config.PluginConfig, params config.StartupParams, logger logger.Logger, listener Listener) (*Client, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	port, err := params.PortNumber()
	if err != nil {
		return nil, err
	}

	wsClient := websocket.NewWebSocketClient(cfg.GetWebSocketURL(port), &clientListener{
		parent: listener,
	}, logger)

	return newClient(wsClient, cfg, params, retry.NewManager(cfg.ConnectAttempts, logger), logger), nil
}

func newClient(wsClient websocket.Client, cfg *config.PluginConfig, params config.StartupParams, retryManager *retry.Manager, logger logger.Logger) *Client {
	store := counter.NewStore()

	return &Client{
		wsClient:   wsClient,
		params:     params,
		store:      store,
		dispatcher: dispatcher.New(store, wsClient, cfg.CounterAction, logger),
		retry:      retryManager,
		logger:     logger,
	}
}

// Connect dials the host and sends the registration frame. A failure here is
// fatal: the host restarts plugins that exit.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.retry.Do(ctx, c.wsClient.Connect); err != nil {
		return err
	}

	if c.params.Info != "" {
		c.logger.Debug("Host info: %s", c.params.Info)
	}

	if err := c.Register(); err != nil {
		if disconnectErr := c.wsClient.Disconnect(); disconnectErr != nil {
			c.logger.Debug("Disconnect after failed registration: %v", disconnectErr)
		}
		return err
	}

	return nil
}

func (c *Client) Register() error {
	frame, err := protocol.Encode(protocol.NewRegister(c.params.RegisterEvent, c.params.PluginUUID))
	if err != nil {
		return fmt.Errorf("failed to encode registration: %w", err)
	}

	if err := c.wsClient.Send(frame); err != nil {
		return fmt.Errorf("failed to register plugin: %w", err)
	}

	c.logger.Info("Registered plugin %s with event %s", c.params.PluginUUID, c.params.RegisterEvent)
	return nil
}

// Run processes host events until the host closes the connection or ctx is
// cancelled. Cancellation closes the socket to unblock the pending read.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			if err := c.wsClient.Disconnect(); err != nil {
				c.logger.Error("Failed to disconnect from host: %v", err)
			}
		case <-done:
		}
	}()

	return c.dispatcher.Run(ctx, c.wsClient)
}

func (c *Client) Disconnect() error {
	return c.wsClient.Disconnect()
}

func (c *Client) IsConnected() bool {
	return c.wsClient.IsConnected()
}

func (c *Client) GetState() string {
	return c.wsClient.GetState()
}

func (c *Client) Counters() *counter.Store {
	return c.store
}

func (c *Client) SetObserver(observer dispatcher.Observer) {
	c.dispatcher.SetObserver(observer)
}

func (l *clientListener) OnStateChanged(state string) {
	if l.parent != nil {
		l.parent.OnStateChanged(state)
	}
}

func (l *clientListener) OnException(err error) {
	if l.parent != nil {
		l.parent.OnException(err)
	}
}
