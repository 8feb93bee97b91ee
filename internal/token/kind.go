package token

// Kind represents the category of a fixture token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the input.
	EOF

	Ident
	IntLit
	FloatLit
	StringLit

	KwFn     // fn
	KwLet    // let
	KwMut    // mut
	KwType   // type
	KwStruct // struct
	KwUnion  // union
	KwEnum   // enum
	KwConst  // const
	KwMove   // move
	KwCopy   // copy
	KwAs     // as
	KwOf     // of
	KwRaw    // raw
	KwBox    // box
	KwTrue   // true
	KwFalse  // false

	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	Comma      // ,
	Semicolon  // ;
	Colon      // :
	ColonColon // ::
	Dot        // .
	DotDot     // ..
	Arrow      // ->
	FatArrow   // =>
	LArrow     // <-
	Assign     // =
	Amp        // &
	Star       // *
	Minus      // -
	Bang       // !
	Lt         // <
	Gt         // >
	Underscore // _
)

var kindNames = [...]string{
	Invalid:    "invalid",
	EOF:        "end of file",
	Ident:      "identifier",
	IntLit:     "integer",
	FloatLit:   "float",
	StringLit:  "string",
	KwFn:       "'fn'",
	KwLet:      "'let'",
	KwMut:      "'mut'",
	KwType:     "'type'",
	KwStruct:   "'struct'",
	KwUnion:    "'union'",
	KwEnum:     "'enum'",
	KwConst:    "'const'",
	KwMove:     "'move'",
	KwCopy:     "'copy'",
	KwAs:       "'as'",
	KwOf:       "'of'",
	KwRaw:      "'raw'",
	KwBox:      "'box'",
	KwTrue:     "'true'",
	KwFalse:    "'false'",
	LParen:     "'('",
	RParen:     "')'",
	LBrace:     "'{'",
	RBrace:     "'}'",
	LBracket:   "'['",
	RBracket:   "']'",
	Comma:      "','",
	Semicolon:  "';'",
	Colon:      "':'",
	ColonColon: "'::'",
	Dot:        "'.'",
	DotDot:     "'..'",
	Arrow:      "'->'",
	FatArrow:   "'=>'",
	LArrow:     "'<-'",
	Assign:     "'='",
	Amp:        "'&'",
	Star:       "'*'",
	Minus:      "'-'",
	Bang:       "'!'",
	Lt:         "'<'",
	Gt:         "'>'",
	Underscore: "'_'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "token?"
}
