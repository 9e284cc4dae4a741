package config

import "fmt"

// Error reports a configuration load or validation failure. These are
// always fatal at startup — never surfaced to an inbound HTTP client.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error in %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("config error in %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
