package protocol

import "fmt"

type DecodeError struct {
	message string
	err     error
}

func (e *DecodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("decode error: %s - %v", e.message, e.err)
	}
	return fmt.Sprintf("decode error: %s", e.message)
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

func NewDecodeError(message string, err error) *DecodeError {
	return &DecodeError{message: message, err: err}
}
