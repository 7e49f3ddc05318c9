package connpass

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Decoder turns one raw JSON value into a T. Decoders are composed with
// object, required, optional, listOf and firstOf so that every wire name
// appears literally in a model's decode function.
type Decoder[T any] func(raw json.RawMessage) (T, error)

// fields is a decoded JSON object keyed by wire name.
type fields map[string]json.RawMessage

var null = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), null)
}

// decodeBody runs dec over a whole response body and guarantees the
// result is a *DecodingError.
func decodeBody[T any](body []byte, dec Decoder[T]) (T, error) {
	v, err := dec(body)
	if err != nil {
		var zero T
		var de *DecodingError
		if errors.As(err, &de) {
			return zero, de
		}
		return zero, &DecodingError{Err: err}
	}
	return v, nil
}

// object decodes a JSON object into fields and hands it to build.
func object[T any](build func(fields) (T, error)) Decoder[T] {
	return func(raw json.RawMessage) (T, error) {
		var zero T
		if isNull(raw) {
			return zero, errors.New("expected object, got null")
		}
		var f fields
		if err := json.Unmarshal(raw, &f); err != nil {
			return zero, fmt.Errorf("expected object: %w", err)
		}
		return build(f)
	}
}

// required reads the named field. An absent or null value is an error
// wrapping ErrMissingField.
func required[T any](f fields, name string, dec Decoder[T]) (T, error) {
	raw, ok := f[name]
	if !ok || isNull(raw) {
		var zero T
		return zero, &DecodingError{Field: name, Err: ErrMissingField}
	}
	v, err := dec(raw)
	if err != nil {
		return v, atField(name, err)
	}
	return v, nil
}

// optional reads the named field, returning nil when it is absent or null.
// A present value that fails to decode is still an error.
func optional[T any](f fields, name string, dec Decoder[T]) (*T, error) {
	raw, ok := f[name]
	if !ok || isNull(raw) {
		return nil, nil
	}
	v, err := dec(raw)
	if err != nil {
		return nil, atField(name, err)
	}
	return &v, nil
}

// reader reads fields of one object and keeps the first error, so model
// decoders can list their wire names one per line.
type reader struct {
	f   fields
	err error
}

func req[T any](r *reader, name string, dec Decoder[T]) T {
	var v T
	if r.err == nil {
		v, r.err = required(r.f, name, dec)
	}
	return v
}

func opt[T any](r *reader, name string, dec Decoder[T]) *T {
	var v *T
	if r.err == nil {
		v, r.err = optional(r.f, name, dec)
	}
	return v
}

// listOf decodes a JSON array element by element.
func listOf[T any](dec Decoder[T]) Decoder[[]T] {
	return func(raw json.RawMessage) ([]T, error) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("expected array: %w", err)
		}
		out := make([]T, 0, len(items))
		for i, item := range items {
			v, err := dec(item)
			if err != nil {
				return nil, atField("["+strconv.Itoa(i)+"]", err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// firstOf tries each decoder in turn and returns the first success. If all
// fail the errors are joined.
func firstOf[T any](decs ...Decoder[T]) Decoder[T] {
	return func(raw json.RawMessage) (T, error) {
		errs := make([]error, 0, len(decs))
		for _, dec := range decs {
			v, err := dec(raw)
			if err == nil {
				return v, nil
			}
			errs = append(errs, err)
		}
		var zero T
		return zero, errors.Join(errs...)
	}
}

// atField prefixes the path of a nested DecodingError, or wraps a plain
// error at name.
func atField(name string, err error) error {
	var de *DecodingError
	if !errors.As(err, &de) {
		return &DecodingError{Field: name, Err: err}
	}
	switch {
	case de.Field == "":
		return &DecodingError{Field: name, Err: de.Err}
	case strings.HasPrefix(de.Field, "["):
		return &DecodingError{Field: name + de.Field, Err: de.Err}
	default:
		return &DecodingError{Field: name + "." + de.Field, Err: de.Err}
	}
}

// Scalar decoders.

func decodeInt(raw json.RawMessage) (int, error) {
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("expected integer: %w", err)
	}
	return v, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("expected string: %w", err)
	}
	return v, nil
}

// floatFromNumber accepts a JSON number.
func floatFromNumber(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("expected number: %w", err)
	}
	return v, nil
}

// floatFromString accepts a JSON string holding a finite decimal number.
func floatFromString(raw json.RawMessage) (float64, error) {
	s, err := decodeString(raw)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected numeric string: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("expected finite number, got %q", s)
	}
	return v, nil
}

// decodeCoordinate accepts "35.672968" as well as 35.672968.
var decodeCoordinate = firstOf[float64](floatFromString, floatFromNumber)

// decodeTime parses an RFC 3339 timestamp with offset.
func decodeTime(raw json.RawMessage) (time.Time, error) {
	s, err := decodeString(raw)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp: %w", err)
	}
	return t, nil
}

// enum adapts a string parser into a Decoder.
func enum[T any](parse func(string) (T, error)) Decoder[T] {
	return func(raw json.RawMessage) (T, error) {
		s, err := decodeString(raw)
		if err != nil {
			var zero T
			return zero, err
		}
		return parse(s)
	}
}
