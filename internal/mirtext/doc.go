// Package mirtext reads the textual MIR fixture format, the same syntax
// mir.DumpModule writes. A file holds nominal type declarations followed by
// function bodies:
//
//	type Pair = struct { int, Box<int> };
//
//	fn f(_1: Pair) -> () {
//	    let _2: Box<int>;
//	    bb0: {
//	        _2 = move _1.1;
//	        return;
//	    }
//	}
//
// Syntax errors are reported through diag and parsing resumes at the next
// statement or item.
package mirtext
