// Package token defines the lexical tokens of the textual MIR fixture format.
// Invariants:
//   - Token.Span matches the source slice the token was scanned from.
//   - Token.Text is the scanned text; identifiers are NFC-normalised, so Text
//     may differ from the raw bytes for non-ASCII names.
//   - Statement and terminator names (goto, drop, StorageDead, ...) and
//     primitive type names are identifiers. The parser recognises them by text.
package token
