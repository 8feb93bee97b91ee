package token

var keywords = map[string]Kind{
	"fn":     KwFn,
	"let":    KwLet,
	"mut":    KwMut,
	"type":   KwType,
	"struct": KwStruct,
	"union":  KwUnion,
	"enum":   KwEnum,
	"const":  KwConst,
	"move":   KwMove,
	"copy":   KwCopy,
	"as":     KwAs,
	"of":     KwOf,
	"raw":    KwRaw,
	"box":    KwBox,
	"true":   KwTrue,
	"false":  KwFalse,
}

// LookupKeyword returns the keyword kind for ident. Keywords are lowercase
// and case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
