package dispatcher

import "fmt"

type MissingFieldError struct {
	event string
	field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s event is missing required field '%s'", e.event, e.field)
}

func NewMissingFieldError(event, field string) *MissingFieldError {
	return &MissingFieldError{event: event, field: field}
}
