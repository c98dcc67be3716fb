package pattern

import (
	"fmt"
	"regexp"
)

// Span marks one occurrence of a pattern as byte offsets into the line text
type Span struct {
	Start int
	End   int
}

// Matcher reports the leftmost occurrence of a pattern in a line of text.
// Implementations must be safe for concurrent use after construction.
type Matcher interface {
	Find(text string) (Span, bool)
}

// Regexp matches lines against a compiled regular expression
type Regexp struct {
	re *regexp.Regexp
}

// NewRegexp compiles expr into a line matcher, folding case when ignoreCase is set
func NewRegexp(expr string, ignoreCase bool) (*Regexp, error) {
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return &Regexp{re: re}, nil
}

// NewLiteral builds a matcher for a fixed string rather than a regular expression
func NewLiteral(lit string, ignoreCase bool) (*Regexp, error) {
	return NewRegexp(regexp.QuoteMeta(lit), ignoreCase)
}

// Find returns the leftmost match in text, or false when text does not match
func (r *Regexp) Find(text string) (Span, bool) {
	loc := r.re.FindStringIndex(text)
	if loc == nil {
		return Span{}, false
	}
	return Span{Start: loc[0], End: loc[1]}, true
}

// String returns the compiled expression, including any case-folding prefix
func (r *Regexp) String() string {
	return r.re.String()
}
