package internal

import (
	"fmt"
	"regexp"
)

// Pattern - name filter applied to raw directory entry names.
type Pattern interface {
	Match(string) bool
	Desc() string // for logs
}

type RegexPattern struct{ re *regexp.Regexp }

func (p *RegexPattern) Match(s string) bool { return p.re.MatchString(s) }
func (p *RegexPattern) Desc() string        { return p.re.String() }

type anyPattern struct{}

func (anyPattern) Match(string) bool { return true }
func (anyPattern) Desc() string      { return "*" }

// CompileFilter builds the entry-name filter. An empty expression accepts
// every name; otherwise the regexp is unanchored, so "foo" matches "xfooy".
func CompileFilter(expr string) (Pattern, error) {
	if expr == "" {
		return anyPattern{}, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, InvalidRange(fmt.Sprintf("invalid filter %q: %v", expr, err))
	}
	return &RegexPattern{re: re}, nil
}
