package expect

import (
	"bytes"
	"fmt"
)

// Kind is the pattern kind of a Case
type Kind int

// The case kinds. KindEOF and KindTimeout are pseudo patterns: they never
// look at the buffer, they only attach a value to the EOF and TimedOut
// outcomes.
const (
	KindExact Kind = iota + 1
	KindGlob
	KindRegexp
	KindCompiled
	KindNull
	KindEOF
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindGlob:
		return "glob"
	case KindRegexp:
		return "regexp"
	case KindCompiled:
		return "compiled"
	case KindNull:
		return "null"
	case KindEOF:
		return "eof"
	case KindTimeout:
		return "timeout"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Case is one entry of an ordered case list. The first case whose pattern
// matches wins.
type Case struct {
	Kind    Kind
	Pattern string
	// Re is the precompiled form used by KindCompiled
	Re Matcher
	// Value is returned verbatim in the Result
	Value any
	// On restricts the case to one session when expecting on several.
	// nil means any session.
	On *Session
}

// Exact matches the literal text p
func Exact(p string, value any) Case {
	return Case{Kind: KindExact, Pattern: p, Value: value}
}

// Glob matches the shell style pattern p
func Glob(p string, value any) Case {
	return Case{Kind: KindGlob, Pattern: p, Value: value}
}

// Regexp matches the regular expression p. It is compiled on first use.
func Regexp(p string, value any) Case {
	return Case{Kind: KindRegexp, Pattern: p, Value: value}
}

// Compiled matches the precompiled regular expression re
func Compiled(re Matcher, value any) Case {
	return Case{Kind: KindCompiled, Re: re, Value: value}
}

// Null matches the first NUL byte of the buffer
func Null(value any) Case {
	return Case{Kind: KindNull, Value: value}
}

// EOF attaches value to the EOF outcome
func EOF(value any) Case {
	return Case{Kind: KindEOF, Value: value}
}

// Timeout attaches value to the TimedOut outcome
func Timeout(value any) Case {
	return Case{Kind: KindTimeout, Value: value}
}

func (c Case) validate() error {
	switch c.Kind {
	case KindExact, KindGlob, KindRegexp:
		if c.Pattern == "" {
			return fmt.Errorf("%w: %s case with empty pattern", ErrBadCase, c.Kind)
		}
	case KindCompiled:
		if c.Re == nil {
			return fmt.Errorf("%w: compiled case without a regexp", ErrBadCase)
		}
	case KindNull, KindEOF, KindTimeout:
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrBadCase, c.Kind)
	}
	return nil
}

// pseudo reports whether the case never matches buffer content
func (c Case) pseudo() bool {
	return c.Kind == KindEOF || c.Kind == KindTimeout
}

func (c Case) appliesTo(s *Session) bool {
	return c.On == nil || c.On == s
}

// armedCase is a Case prepared for one expect invocation
type armedCase struct {
	Case
	re Matcher
}

func arm(cases []Case) ([]armedCase, error) {
	armed := make([]armedCase, len(cases))
	for i, c := range cases {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		armed[i] = armedCase{Case: c, re: c.Re}
	}
	return armed, nil
}

// match looks for the case pattern in buf. scanned is the end of the region
// already known not to match; kinds with a bounded match length resume
// from there.
func (c *armedCase) match(compile Compiler, buf []byte, scanned int) (int, int, error) {
	switch c.Kind {
	case KindExact:
		from := scanned - len(c.Pattern) + 1
		if from < 0 {
			from = 0
		}
		if i := bytes.Index(buf[from:], []byte(c.Pattern)); i >= 0 {
			return from + i, from + i + len(c.Pattern), nil
		}
	case KindNull:
		if i := bytes.IndexByte(buf[scanned:], 0); i >= 0 {
			return scanned + i, scanned + i + 1, nil
		}
	case KindGlob:
		start, end := globIndex(c.Pattern, buf)
		return start, end, nil
	case KindRegexp, KindCompiled:
		if c.re == nil {
			if compile == nil {
				compile = RegexpCompiler
			}
			re, err := compile(c.Pattern)
			if err != nil {
				return -1, -1, fmt.Errorf("%w: regexp %q: %v", ErrBadCase, c.Pattern, err)
			}
			c.re = re
		}
		if loc := c.re.FindIndex(buf); loc != nil {
			return loc[0], loc[1], nil
		}
	}
	return -1, -1, nil
}
