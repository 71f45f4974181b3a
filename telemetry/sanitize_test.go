package telemetry

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightwire/insightwire-go/lib/testutils"
)

type codedError struct{ msg, code string }

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

type customJSON struct{}

func (customJSON) MarshalJSON() ([]byte, error) { return []byte(`{"custom":true}`), nil }

func TestSanitizeProperties(t *testing.T) {
	t.Parallel()

	logger := testutils.NewLogger(t)
	props, ok := SanitizeProperties(map[string]any{
		"str":    "value",
		"nil":    nil,
		"bool":   true,
		"int":    42,
		"float":  1.5,
		"err":    errors.New("plain failure"),
		"coded":  &codedError{msg: "boom", code: "E42"},
		"custom": customJSON{},
		"slice":  []int{1, 2, 3},
	}, logger)
	require.True(t, ok)

	assert.Equal(t, "value", props["str"])
	assert.Equal(t, "", props["nil"])
	assert.Equal(t, "true", props["bool"])
	assert.Equal(t, "42", props["int"])
	assert.Equal(t, "1.5", props["float"])
	assert.Equal(t, `{"message":"plain failure","code":""}`, props["err"])
	assert.Equal(t, `{"message":"boom","code":"E42"}`, props["coded"])
	assert.Equal(t, `{"custom":true}`, props["custom"])
	assert.Equal(t, "[1,2,3]", props["slice"])
}

func TestSanitizePropertiesStringMap(t *testing.T) {
	t.Parallel()

	props, ok := SanitizeProperties(map[string]string{
		"short": "ok",
		"long":  strings.Repeat("x", MaxPropertyLength+500),
	}, testutils.NewLogger(t))
	require.True(t, ok)
	assert.Equal(t, "ok", props["short"])
	assert.Len(t, props["long"], MaxPropertyLength)
}

func TestSanitizePropertiesTruncation(t *testing.T) {
	t.Parallel()

	props, ok := SanitizeProperties(map[string]any{
		"long": strings.Repeat("y", MaxPropertyLength*2),
	}, testutils.NewLogger(t))
	require.True(t, ok)
	assert.Len(t, props["long"], MaxPropertyLength)
}

func TestSanitizePropertiesDropsFunctions(t *testing.T) {
	t.Parallel()

	logger, hook := testutils.NewLoggerWithHook(t, logrus.InfoLevel)
	props, ok := SanitizeProperties(map[string]any{
		"fn":   func() {},
		"kept": "v",
	}, logger)
	require.True(t, ok)

	_, present := props["fn"]
	assert.False(t, present)
	assert.Equal(t, "v", props["kept"])
	assert.True(t, testutils.LogContains(hook.Drain(), logrus.InfoLevel, "function"))
}

func TestSanitizePropertiesUnserializable(t *testing.T) {
	t.Parallel()

	logger, hook := testutils.NewLoggerWithHook(t, logrus.InfoLevel)
	props, ok := SanitizeProperties(map[string]any{"ch": make(chan int)}, logger)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(props["ch"], "chan int (Error:"), props["ch"])
	assert.True(t, testutils.LogContains(hook.Drain(), logrus.InfoLevel, "could not serialize"))
}

func TestSanitizePropertiesNotAMap(t *testing.T) {
	t.Parallel()

	logger, hook := testutils.NewLoggerWithHook(t, logrus.InfoLevel)
	props, ok := SanitizeProperties("not a bag", logger)
	assert.False(t, ok)
	assert.Nil(t, props)
	assert.True(t, testutils.LogContains(hook.Drain(), logrus.InfoLevel, "invalid properties"))

	props, ok = SanitizeProperties(nil, testutils.NewLogger(t))
	assert.False(t, ok)
	assert.Nil(t, props)
}
