package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time      string `json:"time"`
		Seq       uint64 `json:"seq"`
		Kind      string `json:"kind"`
		GID       uint64 `json:"gid,omitempty"`
		Depth     int    `json:"depth"`
		Name      string `json:"name,omitempty"`
		Expected  string `json:"expected,omitempty"`
		ElapsedNS int64  `json:"elapsed_ns,omitempty"`
	}

	j := jsonEvent{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		GID:       ev.GID,
		Depth:     ev.Depth,
		Name:      ev.Name,
		Expected:  ev.Expected,
		ElapsedNS: int64(ev.Elapsed),
	}

	data, _ := json.Marshal(j)
	return append(data, '\n')
}

// formatText renders "#seq g<gid> [indent]→ name" style lines.
func formatText(ev *Event) []byte {
	var sb strings.Builder

	sb.WriteByte('#')
	sb.WriteString(strconv.FormatUint(ev.Seq, 10))
	sb.WriteString(" g")
	sb.WriteString(strconv.FormatUint(ev.GID, 10))
	sb.WriteByte(' ')

	indent := ev.Depth
	if ev.Kind == KindEnter {
		indent--
	}
	if indent > 0 {
		sb.WriteString(strings.Repeat("  ", indent))
	}

	switch ev.Kind {
	case KindEnter:
		sb.WriteString("→ ")
	case KindExit:
		sb.WriteString("← ")
	case KindMismatch:
		sb.WriteString("✗ ")
	case KindReset:
		sb.WriteString("↺ ")
	}

	switch ev.Kind {
	case KindExit:
		sb.WriteString(ev.Name)
		sb.WriteString(" (")
		sb.WriteString(ev.Elapsed.Round(time.Microsecond).String())
		sb.WriteByte(')')
	case KindMismatch:
		fmt.Fprintf(&sb, "exit %q, top is %q", ev.Name, ev.Expected)
	case KindReset:
		sb.WriteString("reset")
	default:
		sb.WriteString(ev.Name)
	}

	sb.WriteByte('\n')
	return []byte(sb.String())
}
