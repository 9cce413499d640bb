// Package toml implements a format-preserving TOML parser, query engine,
// and mutator: parsing builds a concrete syntax tree that retains every
// byte of whitespace and comment trivia, so a document that is never
// mutated serializes back out identical to what was read, and a document
// that is mutated keeps everything it didn't touch untouched.
package toml

// Facade is the single entry point for parsing, querying, and mutating a
// TOML document (§4.G, §6.3). The zero value holds no document and behaves
// like the result of New; Parse returns a Facade holding a parsed document.
type Facade struct {
	doc *Document
	res resolver
}

// New returns an empty Facade with no parsed document. GetValue,
// GetChildren and SetValue on it return ErrNilInput. Parse is a package
// function that returns a new Facade; it does not fill an existing one.
func New() *Facade {
	return &Facade{}
}

// Parse parses input into a document held by the returned Facade and
// reports what happened as a ParseResult (§6.4, §7):
//
//   - Full: the entire input was consumed, no semantic errors.
//   - FullError: the entire input was consumed, but semantic errors (mixed
//     arrays, duplicate keys, invalid literals, malformed lines that were
//     skipped and resynchronized past) were recorded along the way.
//   - Partial / PartialError: a fatal lexical error (an unterminated
//     string, or a token with no valid spelling) left no safe point to
//     resume; everything parsed before the failure is kept, and the
//     unparsed tail is reported as Remainder().
//
// The Facade is usable (GetValue/GetChildren over whatever was parsed)
// for every variant, including the two Partial ones.
func Parse(input string) (*Facade, ParseResult) {
	errs := &errorList{}
	p := newParser(input, errs)
	doc := p.parse()

	validateDocument(doc, errs)

	f := &Facade{doc: doc}

	if p.fatal {
		remainder := ""
		if p.fatalPos >= 0 && p.fatalPos <= len(input) {
			remainder = input[p.fatalPos:]
		}
		return f, buildParseResult(remainder, errs)
	}
	return f, buildParseResult("", errs)
}

func (f *Facade) resolver() *resolver {
	if f.res.doc != f.doc {
		f.res = *newResolver(f.doc)
	}
	return &f.res
}

// Document returns the underlying parsed document, for callers that want
// to serialize it (Document.String) or walk it directly (Document.Walk).
func (f *Facade) Document() *Document { return f.doc }
