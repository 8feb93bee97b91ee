package trace

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Format is the encoding of a stream or a dump.
type Format uint8

const (
	FormatAuto   Format = iota // by output path suffix
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
	FormatChrome               // chrome://tracing event objects
)

// FormatEvent encodes ev. The chrome form has no separator; StreamTracer
// frames the array. It returns nil if ev cannot be encoded.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev)
	default:
		return formatText(ev)
	}
}

type ndjsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(ndjsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

type chromeEvent struct {
	Name string            `json:"name"`
	Cat  string            `json:"cat"`
	Ph   string            `json:"ph"`
	Ts   int64             `json:"ts"`
	Pid  int               `json:"pid"`
	Tid  uint64            `json:"tid"`
	S    string            `json:"s,omitempty"`
	Args map[string]string `json:"args,omitempty"`
}

// chromePhase maps kinds to trace-event phases; instants are thread-scoped.
var chromePhase = [...]string{
	KindSpanBegin: "B",
	KindSpanEnd:   "E",
	KindPoint:     "i",
	KindHeartbeat: "i",
}

func formatChrome(ev *Event) []byte {
	ce := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   "i",
		Ts:   ev.Time.UnixMicro(),
		Pid:  1,
		Tid:  ev.GID,
		Args: ev.Extra,
	}
	if int(ev.Kind) < len(chromePhase) && chromePhase[ev.Kind] != "" {
		ce.Ph = chromePhase[ev.Kind]
	}
	if ce.Ph == "i" {
		ce.S = "t"
	}
	if ev.Detail != "" {
		ce.Args = maps.Clone(ev.Extra)
		if ce.Args == nil {
			ce.Args = make(map[string]string, 1)
		}
		ce.Args["detail"] = ev.Detail
	}
	data, err := json.Marshal(ce)
	if err != nil {
		return nil
	}
	return data
}

var textGlyph = [...]string{
	KindSpanBegin: "→",
	KindSpanEnd:   "←",
	KindPoint:     "•",
	KindHeartbeat: "♡",
}

// formatText: "[seq] <indent><glyph> name (detail) {k=v, ...}". Indent grows
// with scope, so body and node events sit under their file.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteByte('[')
	seq := strconv.FormatUint(ev.Seq, 10)
	sb.WriteString(strings.Repeat(" ", max(0, 6-len(seq))))
	sb.WriteString(seq)
	sb.WriteString("] ")
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	if int(ev.Kind) < len(textGlyph) && textGlyph[ev.Kind] != "" {
		sb.WriteString(textGlyph[ev.Kind])
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (" + ev.Detail + ")")
	}
	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Extra[k])
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
