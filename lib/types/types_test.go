package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"2s"`), &d))
	assert.Equal(t, Duration(2*time.Second), d)

	require.NoError(t, json.Unmarshal([]byte(`1500`), &d))
	assert.Equal(t, Duration(1500*time.Millisecond), d)

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}

func TestDurationMarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestNullDuration(t *testing.T) {
	t.Parallel()

	var nd NullDuration
	require.NoError(t, json.Unmarshal([]byte(`null`), &nd))
	assert.False(t, nd.Valid)

	require.NoError(t, json.Unmarshal([]byte(`"30s"`), &nd))
	assert.True(t, nd.Valid)
	assert.Equal(t, 30*time.Second, nd.TimeDuration())

	b, err := json.Marshal(nd)
	require.NoError(t, err)
	assert.Equal(t, `"30s"`, string(b))

	b, err = json.Marshal(NullDuration{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(b))
}

func TestNullDurationUnmarshalText(t *testing.T) {
	t.Parallel()

	var nd NullDuration
	require.NoError(t, nd.UnmarshalText([]byte("250")))
	assert.True(t, nd.Valid)
	assert.Equal(t, 250*time.Millisecond, nd.TimeDuration())

	require.NoError(t, nd.UnmarshalText(nil))
	assert.False(t, nd.Valid)
}
