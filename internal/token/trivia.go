package token

import "moveflow/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
