package telemetry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/sirupsen/logrus"
)

// MaxPropertyLength is the longest string value a sanitized property may
// carry; longer values are cut off.
const MaxPropertyLength = 8192

// SanitizeProperties normalizes an arbitrary key-indexed bag into a
// string-only map safe for transmission. The second return value is false
// when the input is not a keyed bag at all; callers must treat that as "no
// properties". Function-typed values are dropped, unserializable values are
// replaced by a diagnostic string, and every value is truncated to
// MaxPropertyLength. Failures are logged, never raised.
func SanitizeProperties(bag any, logger logrus.FieldLogger) (map[string]string, bool) {
	switch m := bag.(type) {
	case nil:
		return nil, false
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = truncate(v, MaxPropertyLength)
		}
		return out, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			s, keep := sanitizeValue(k, v, logger)
			if !keep {
				continue
			}
			out[k] = truncate(s, MaxPropertyLength)
		}
		return out, true
	default:
		logger.WithField("type", fmt.Sprintf("%T", bag)).Info("invalid properties dropped from telemetry")
		return nil, false
	}
}

// sanitizeValue stringifies one property value. The second return value is
// false when the entry must be dropped entirely.
func sanitizeValue(key string, value any, logger logrus.FieldLogger) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case error:
		return stringifyError(v), true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func:
		logger.WithField("key", key).Info("property value is a function, will not serialize")
		return "", false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(value), true
	}

	// Everything else goes through structured serialization. json.Marshal
	// honors a value's own MarshalJSON, which covers objects exposing a
	// custom serialization method.
	b, err := json.Marshal(value)
	if err != nil {
		logger.WithField("key", key).WithError(err).Info("could not serialize property value")
		return fmt.Sprintf("%s (Error: %s)", reflect.TypeOf(value).String(), err.Error()), true
	}
	return string(b), true
}

// stringifyError reduces an error value to its {message, code} pair. The code
// falls back from a Code method to an ID method to empty.
func stringifyError(err error) string {
	code := ""
	switch v := err.(type) { //nolint:errorlint
	case interface{ Code() string }:
		code = v.Code()
	case interface{ ID() string }:
		code = v.ID()
	}
	payload := struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}{err.Error(), code}
	b, merr := json.Marshal(payload)
	if merr != nil {
		return err.Error()
	}
	return string(b)
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
