package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fieldcheck/pkg/e"
	"fieldcheck/pkg/validator"
)

const maxBodyBytes = 64 << 10

// DecodeAndValidate decodes exactly one JSON object from the request body
// into dst and runs struct validation on it. Every failure wraps
// e.ErrInvalidInput.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body: %w", e.ErrInvalidInput)
		}
		return fmt.Errorf("invalid JSON: %w", e.ErrInvalidInput)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing data after JSON object: %w", e.ErrInvalidInput)
	}

	if err := validator.ValidateStruct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), e.ErrInvalidInput)
	}
	return nil
}
