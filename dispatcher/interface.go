package dispatcher

// Sender delivers one encoded frame to the host.
type Sender interface {
	Send(frame []byte) error
}

// FrameSource yields inbound frames in order and io.EOF at end of stream.
type FrameSource interface {
	Receive() ([]byte, error)
}

// Observer is told about every counter change after the host has been updated.
type Observer interface {
	OnCounterChanged(context string, value int)
}
