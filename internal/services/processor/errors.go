package processor

import (
	"errors"
	"fmt"
)

var (
	ErrDecode           = errors.New("image decode failed")
	ErrEncode           = errors.New("image encode failed")
	ErrInvalidWatermark = errors.New("invalid watermark")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ParameterError names the parameter that was rejected.
type ParameterError struct {
	Name   string
	Value  interface{}
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
