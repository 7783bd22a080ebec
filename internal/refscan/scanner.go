// Package refscan implements the streaming reference scanner for OpenSCAD
// source text. The scanner copies input bytes to an output buffer verbatim,
// recognizes include/use/import statements outside comments, and substitutes
// rewritten path literals supplied by a Resolver. It has no notion of the
// language beyond the three statement shapes and comment skipping; anything
// else passes through untouched.
package refscan

import (
	"bytes"
	"context"
)

// Resolver reacts to references recognized by the Scanner. Implementations
// perform the filesystem side effects; the Scanner only rewrites text.
type Resolver interface {
	// ResolveInclude is called with the path text of an include or use
	// statement and returns the literal to write between the angle brackets.
	// The implementation is expected to copy the target into the output tree
	// and scan it in turn before returning.
	ResolveInclude(ctx context.Context, path string) (string, error)

	// ResolveImport is called with the first quoted string argument of an
	// import call and returns the literal to write back inside the quotes.
	// The target is copied but never scanned.
	ResolveImport(ctx context.Context, path string) (string, error)

	// UnresolvedImport reports an import statement whose argument is not a
	// string literal (a variable or expression). The statement text is left
	// exactly as written.
	UnresolvedImport(stmt string)
}

// state is the scanner's current mode. The machine is dispatched by a single
// switch in step; each state carries no data beyond the shared accumulator.
type state int

const (
	// scanningText copies bytes until a non-whitespace byte starts a token.
	scanningText state = iota
	// buildingToken accumulates a keyword candidate and watches for comment
	// openers.
	buildingToken
	// inLineComment copies bytes until end of line.
	inLineComment
	// inBlockComment copies bytes until the closing */.
	inBlockComment
	// awaitingIncludeOpen skips whitespace between include/use and <.
	awaitingIncludeOpen
	// buildingIncludePath withholds path bytes until the closing >.
	buildingIncludePath
	// awaitingImportQuote scans an import call for its opening quote.
	awaitingImportQuote
	// buildingImportPath withholds path bytes until the closing quote.
	buildingImportPath
	// skippingToStatementEnd copies remaining call arguments until ;.
	skippingToStatementEnd
)

// Scanner is the per-file state machine. It is fed one byte at a time; every
// input byte is written to out exactly once and in order, except the bytes of
// a recognized path literal, which are replaced by the Resolver's answer.
type Scanner struct {
	out           *bytes.Buffer
	resolver      Resolver
	ignoreImports bool

	state state
	buf   []byte // accumulator for the current token, statement, or path
	prev  byte   // previous byte fed, for block comment termination
}

// New returns a Scanner writing scanned output to out. When ignoreImports is
// set, import statements are treated as plain text.
func New(out *bytes.Buffer, resolver Resolver, ignoreImports bool) *Scanner {
	return &Scanner{out: out, resolver: resolver, ignoreImports: ignoreImports}
}

// Scan feeds the whole input through the machine. The scanner does not
// require a trailing newline; an input ending mid-statement simply stops in
// that state with all copied bytes already written.
func (s *Scanner) Scan(ctx context.Context, data []byte) error {
	for _, c := range data {
		if err := s.Feed(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Feed advances the machine by one byte.
func (s *Scanner) Feed(ctx context.Context, c byte) error {
	err := s.step(ctx, c, true)
	s.prev = c
	return err
}

// step processes c in the current state. write is false when c is being
// replayed into a state it already passed through, so the byte is examined
// again but never written twice.
func (s *Scanner) step(ctx context.Context, c byte, write bool) error {
	switch s.state {
	case scanningText:
		if write {
			s.out.WriteByte(c)
		}
		if isSpace(c) {
			return nil
		}
		s.buf = append(s.buf[:0], c)
		s.state = buildingToken
		return nil

	case buildingToken:
		if write {
			s.out.WriteByte(c)
		}
		var last byte
		if len(s.buf) > 0 {
			last = s.buf[len(s.buf)-1]
		}
		switch {
		case c == '/' && last == '/':
			s.state = inLineComment
			return nil
		case c == '*' && last == '/':
			s.state = inBlockComment
			return nil
		case isWordByte(c):
			s.buf = append(s.buf, c)
			return nil
		}
		// The token ended. The terminator is replayed into whichever state
		// comes next so it is examined exactly once and written exactly once.
		switch token := string(s.buf); {
		case token == "include" || token == "use":
			s.state = awaitingIncludeOpen
		case token == "import" && !s.ignoreImports:
			// Keep the accumulator: awaitingImportQuote extends it with the
			// rest of the statement for suffix checks and warning text.
			s.state = awaitingImportQuote
		default:
			s.state = scanningText
		}
		return s.step(ctx, c, false)

	case inLineComment:
		if write {
			s.out.WriteByte(c)
		}
		if c == '\n' {
			s.state = scanningText
		}
		return nil

	case inBlockComment:
		if write {
			s.out.WriteByte(c)
		}
		if c == '/' && s.prev == '*' {
			s.state = scanningText
		}
		return nil

	case awaitingIncludeOpen:
		if write {
			s.out.WriteByte(c)
		}
		if isSpace(c) {
			return nil
		}
		if c == '<' {
			s.buf = s.buf[:0]
			s.state = buildingIncludePath
			return nil
		}
		// Malformed statement; it already passed through as plain text.
		s.state = scanningText
		return nil

	case buildingIncludePath:
		// Path bytes are withheld; the resolved literal is substituted when
		// the closing bracket arrives.
		if c != '>' {
			s.buf = append(s.buf, c)
			return nil
		}
		lit, err := s.resolver.ResolveInclude(ctx, string(s.buf))
		if err != nil {
			return err
		}
		s.out.WriteString(lit)
		s.out.WriteByte('>')
		s.buf = s.buf[:0]
		s.state = scanningText
		return nil

	case awaitingImportQuote:
		if write {
			s.out.WriteByte(c)
		}
		s.buf = append(s.buf, c)
		if c == ')' {
			// The call closed with no literal argument, e.g. a computed
			// expression. Report and move on; nothing was rewritten.
			s.resolver.UnresolvedImport(string(s.buf))
			s.buf = s.buf[:0]
			s.state = scanningText
			return nil
		}
		if c != '"' {
			return nil
		}
		if bytes.HasSuffix(s.buf, []byte(`("`)) || bytes.HasSuffix(s.buf, []byte(`file="`)) {
			s.buf = s.buf[:0]
			s.state = buildingImportPath
		}
		// Otherwise the quote belongs to some other argument; keep looking.
		return nil

	case buildingImportPath:
		if c != '"' {
			s.buf = append(s.buf, c)
			return nil
		}
		lit, err := s.resolver.ResolveImport(ctx, string(s.buf))
		if err != nil {
			return err
		}
		s.out.WriteString(lit)
		s.out.WriteByte('"')
		s.buf = s.buf[:0]
		s.state = skippingToStatementEnd
		return nil

	case skippingToStatementEnd:
		if write {
			s.out.WriteByte(c)
		}
		if c == ';' {
			s.state = scanningText
		}
		return nil
	}
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// isWordByte reports whether c extends a keyword token.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
