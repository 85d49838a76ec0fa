package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"deckcounter/counter"
	"deckcounter/logger"
	"deckcounter/protocol"
)

// Dispatcher routes decoded host events to the counter handlers. Events are
// handled one at a time on the caller's goroutine, so the read-modify-send
// sequence for a context is never interleaved with another event.
type Dispatcher struct {
	store         *counter.Store
	sender        Sender
	counterAction string
	observer      Observer
	logger        logger.Logger
}

func New(store *counter.Store, sender Sender, counterAction string, logger logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:         store,
		sender:        sender,
		counterAction: counterAction,
		logger:        logger,
	}
}

func (d *Dispatcher) SetObserver(observer Observer) {
	d.observer = observer
}

// Run consumes frames until the source reports end of stream. Per-frame
// failures are logged and never stop the loop.
func (d *Dispatcher) Run(ctx context.Context, source FrameSource) error {
	for {
		frame, err := source.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				d.logger.Info("Event stream ended")
				return nil
			}
			return fmt.Errorf("receive failed: %w", err)
		}

		if err := d.HandleFrame(frame); err != nil {
			d.logger.Warn("Frame not handled: %v", err)
		}
	}
}

func (d *Dispatcher) HandleFrame(frame []byte) error {
	event, err := protocol.Decode(frame)
	if err != nil {
		return err
	}
	return d.Route(event)
}

func (d *Dispatcher) Route(event *protocol.Event) error {
	switch event.Kind() {
	case protocol.KindKeyDown:
		return d.handleKeyDown(event)
	case protocol.KindWillAppear:
		return d.handleWillAppear(event)
	case protocol.KindDidReceiveSettings:
		return d.handleDidReceiveSettings(event)
	default:
		d.logger.Debug("Ignoring event %s", event.Name)
		return nil
	}
}

func (d *Dispatcher) handleKeyDown(event *protocol.Event) error {
	ctx, action, err := requireContextAndAction(event)
	if err != nil {
		return err
	}
	if action != d.counterAction {
		return nil
	}

	value := d.store.Increment(ctx)
	d.logger.Debug("Counter %s incremented to %d", ctx, value)

	// Title first so the key updates before the host persists the value.
	errs := []error{
		d.send(protocol.NewSetTitle(ctx, strconv.Itoa(value), protocol.TargetHardwareAndSoftware)),
		d.send(protocol.NewSetSettings(ctx, value)),
	}
	d.notify(ctx, value)

	return errors.Join(errs...)
}

func (d *Dispatcher) handleWillAppear(event *protocol.Event) error {
	ctx, action, err := requireContextAndAction(event)
	if err != nil {
		return err
	}
	if action != d.counterAction {
		return nil
	}

	return d.send(protocol.NewGetSettings(ctx))
}

// didReceiveSettings is applied whatever the action, unlike keyDown and
// willAppear.
func (d *Dispatcher) handleDidReceiveSettings(event *protocol.Event) error {
	ctx, ok := event.ContextID()
	if !ok {
		return NewMissingFieldError(event.Name, "context")
	}

	value, _, err := event.SettingsCount()
	if err != nil {
		return err
	}
	if value < 0 {
		d.logger.Warn("Negative count %d for %s, using 0", value, ctx)
		value = 0
	}

	d.store.Set(ctx, value)
	d.logger.Debug("Counter %s set to %d from settings", ctx, value)

	err = d.send(protocol.NewSetTitle(ctx, strconv.Itoa(value), protocol.TargetHardwareAndSoftware))
	d.notify(ctx, value)

	return err
}

func requireContextAndAction(event *protocol.Event) (string, string, error) {
	ctx, ok := event.ContextID()
	if !ok {
		return "", "", NewMissingFieldError(event.Name, "context")
	}
	action, ok := event.ActionID()
	if !ok {
		return "", "", NewMissingFieldError(event.Name, "action")
	}
	return ctx, action, nil
}

func (d *Dispatcher) send(cmd *protocol.Command) error {
	frame, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	if err := d.sender.Send(frame); err != nil {
		return fmt.Errorf("%s for %s: %w", cmd.Event, cmd.Context, err)
	}
	return nil
}

func (d *Dispatcher) notify(ctx string, value int) {
	if d.observer != nil {
		d.observer.OnCounterChanged(ctx, value)
	}
}
