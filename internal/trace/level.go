package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // tracing disabled
	LevelError               // nothing is streamed; the ring is dumped on a crash
	LevelPhase               // driver phases
	LevelDetail              // plus file and body spans
	LevelDebug               // plus every move and init
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepestScope[l] is the finest scope level l lets through. Zero lets nothing through.
var deepestScope = [...]Scope{
	LevelPhase:  ScopeDriver,
	LevelDetail: ScopeBody,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts level names in any case.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(deepestScope) || scope == 0 {
		return false
	}
	return scope <= deepestScope[l]
}

// accepts is ShouldEmit plus heartbeats, which pass at every enabled level.
func (l Level) accepts(ev *Event) bool {
	if ev.Kind == KindHeartbeat {
		return l > LevelOff
	}
	return l.ShouldEmit(ev.Scope)
}
