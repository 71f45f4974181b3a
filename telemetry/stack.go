package telemetry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightwire/insightwire-go/contracts"
)

// stackFrameRegex matches one stack-trace line, capturing the method name,
// the file or location, and the line number. Lines that don't match (such as
// a leading error-message line) are skipped.
var stackFrameRegex = regexp.MustCompile(`^(\s+at)?(.*?)(@|\s\(|\s)([^(\n]+):(\d+):(\d+)(\)?)$`)

const (
	noMethod   = "<no_method>"
	noFileName = "<no_filename>"

	// stackFrameBaseSize is the fixed per-frame overhead of the serialized
	// JSON representation.
	stackFrameBaseSize = 58

	// maxParsedStackSize bounds the total serialized size of a parsed stack.
	maxParsedStackSize = 32 * 1024
)

// parseStack turns a raw multi-line stack string into ordered frames, bounded
// to maxParsedStackSize by dropping a contiguous middle block when needed.
// The boolean result reports whether at least one frame survived.
func parseStack(stack string) ([]*contracts.StackFrame, bool) {
	if stack == "" {
		return nil, false
	}

	lines := strings.Split(stack, "\n")
	frames := make([]*contracts.StackFrame, 0, len(lines))
	level := 0
	total := 0
	for _, line := range lines {
		m := stackFrameRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		frame := &contracts.StackFrame{
			Level:    level,
			Method:   noMethod,
			FileName: noFileName,
			Assembly: strings.TrimSpace(line),
		}
		if method := strings.TrimSpace(m[2]); method != "" {
			frame.Method = method
		}
		if fileName := strings.TrimSpace(m[4]); fileName != "" {
			frame.FileName = fileName
		}
		frame.Line, _ = strconv.Atoi(m[5])

		frame.SizeInBytes = len(frame.Method) + len(frame.FileName) + len(frame.Assembly) +
			stackFrameBaseSize + len(strconv.Itoa(frame.Level)) + len(strconv.Itoa(frame.Line))

		total += frame.SizeInBytes
		frames = append(frames, frame)
		level++
	}

	if total > maxParsedStackSize {
		frames = truncateFrames(frames)
	}
	return frames, len(frames) > 0
}

// truncateFrames removes a contiguous middle block of frames, consuming
// frames symmetrically from both ends until the next boundary pair would
// push the running total over the budget. Top and bottom frames are retained
// in their original order.
func truncateFrames(frames []*contracts.StackFrame) []*contracts.StackFrame {
	left, right := 0, len(frames)-1
	size := 0
	acceptedLeft, acceptedRight := left, right
	for left < right {
		size += frames[left].SizeInBytes + frames[right].SizeInBytes
		if size > maxParsedStackSize {
			return append(frames[:acceptedLeft], frames[acceptedRight+1:]...)
		}
		acceptedLeft, acceptedRight = left, right
		left++
		right--
	}
	return frames
}
