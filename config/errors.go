package config

import "fmt"

// NotFoundError indicates a required key is absent from the
// configuration and its entire fallback chain.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("missing required configuration key %q", e.Key)
}

// DecodeError indicates a value exists but cannot be decoded to the
// requested type.
type DecodeError struct {
	Key      string
	Expected string
	Actual   Kind
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf(
			"cannot decode %s value as %s",
			e.Actual, e.Expected,
		)
	}

	return fmt.Sprintf(
		"cannot decode %s value at key %q as %s",
		e.Actual, e.Key, e.Expected,
	)
}

// withKey attaches the key being decoded to decode errors bubbling up
// from nested decoders.
func withKey(key string, err error) error {
	if decodeErr, ok := err.(*DecodeError); ok && decodeErr.Key == "" {
		return &DecodeError{
			Key:      key,
			Expected: decodeErr.Expected,
			Actual:   decodeErr.Actual,
		}
	}

	return err
}
