package pipeline

import "errors"

// ValidationError is a local rejection raised before any network call
// (blank text, oversized text, empty segment list, illegal stage).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteError wraps a failed analysis or generation call. Message carries the
// server-supplied detail when present, else a generic failure message.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
