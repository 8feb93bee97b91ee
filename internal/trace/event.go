package trace

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant event, e.g. a recorded move
	KindHeartbeat // periodic liveness signal
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Smaller values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // whole run
	ScopeFile                    // one fixture: parse, validate
	ScopeBody                    // gathering one function body
	ScopeNode                    // single statement, move or init
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopeFile:   "file",
	ScopeBody:   "body",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // глобальный монотонный номер
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 у корневых
	GID      uint64 // горутина, выпустившая событие
	Name     string // "file", "gather", "move" ...
	Detail   string
	Extra    map[string]string
}

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// newEvent stamps time, sequence number and goroutine.
func newEvent(kind Kind, scope Scope, name string) *Event {
	return &Event{
		Time:  time.Now(),
		Seq:   seqCounter.Add(1),
		Kind:  kind,
		Scope: scope,
		GID:   goroutineID(),
		Name:  name,
	}
}

// pairs reads kv as alternating keys and values. A trailing key is dropped.
func pairs(kv []string) map[string]string {
	if len(kv) < 2 {
		return nil
	}
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

// goroutineID parses the header line of runtime.Stack: "goroutine 17 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	head, ok := strings.CutPrefix(string(buf[:runtime.Stack(buf[:], false)]), "goroutine ")
	if !ok {
		return 0
	}
	if end := strings.IndexByte(head, ' '); end >= 0 {
		head = head[:end]
	}
	id, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
