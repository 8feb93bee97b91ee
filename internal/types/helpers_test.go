package types

import "moveflow/internal/source"

func sourceSpan() source.Span {
	return source.Span{}
}
