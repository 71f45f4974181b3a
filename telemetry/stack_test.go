package telemetry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStack(t *testing.T) {
	t.Parallel()

	stack := "Error: boom\n" +
		"    at handleRequest (/srv/app/handlers.js:42:13)\n" +
		"    at process (/srv/app/router.js:101:5)\n" +
		"    at /srv/app/server.js:7:1"

	frames, ok := parseStack(stack)
	require.True(t, ok)
	require.Len(t, frames, 3)

	for i, frame := range frames {
		assert.Equal(t, i, frame.Level)
	}
	assert.Equal(t, "handleRequest", frames[0].Method)
	assert.Equal(t, "/srv/app/handlers.js", frames[0].FileName)
	assert.Equal(t, 42, frames[0].Line)
	assert.Equal(t, "at handleRequest (/srv/app/handlers.js:42:13)", frames[0].Assembly)

	assert.Equal(t, "process", frames[1].Method)
	assert.Equal(t, 101, frames[1].Line)
}

func TestParseStackNonFrameLines(t *testing.T) {
	t.Parallel()

	frames, ok := parseStack("just some text\nwith no frames at all")
	assert.False(t, ok)
	assert.Empty(t, frames)

	frames, ok = parseStack("")
	assert.False(t, ok)
	assert.Nil(t, frames)
}

func TestParseStackFallbackNames(t *testing.T) {
	t.Parallel()

	frames, ok := parseStack("    at /srv/app/anon.js:3:9")
	require.True(t, ok)
	require.Len(t, frames, 1)
	assert.Equal(t, noMethod, frames[0].Method)
	assert.Equal(t, "/srv/app/anon.js", frames[0].FileName)
}

func TestParseStackTruncation(t *testing.T) {
	t.Parallel()

	const total = 300
	var sb strings.Builder
	sb.WriteString("Error: oversized\n")
	for i := 0; i < total; i++ {
		fmt.Fprintf(&sb, "    at method%04d%s (/srv/app/deeply/nested/module%04d.js:%d:1)\n",
			i, strings.Repeat("x", 120), i, i+1)
	}

	frames, ok := parseStack(sb.String())
	require.True(t, ok)
	require.NotEmpty(t, frames)
	assert.Less(t, len(frames), total)

	// top and bottom survive, a contiguous middle block is gone
	assert.Equal(t, 0, frames[0].Level)
	assert.Equal(t, total-1, frames[len(frames)-1].Level)
	for i := 1; i < len(frames); i++ {
		assert.Greater(t, frames[i].Level, frames[i-1].Level)
	}

	size := 0
	for _, frame := range frames {
		size += frame.SizeInBytes
	}
	assert.LessOrEqual(t, size, maxParsedStackSize)
}
