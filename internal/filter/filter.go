// Package filter selects which patches from a set are applied, by glob
// rules over patch IDs.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a single include or exclude rule.
type Rule struct {
	re      *regexp.Regexp
	include bool
}

// Chain holds an ordered list of rules. Rules are walked in order and the
// first match wins; an ID matching no rule is included.
type Chain struct {
	rules []Rule
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddInclude adds an include rule for the given glob pattern.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

// AddExclude adds an exclude rule for the given glob pattern.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

func (c *Chain) add(pattern string, include bool) error {
	re, err := regexp.Compile("^" + globToRegex(pattern) + "$")
	if err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	c.rules = append(c.rules, Rule{re: re, include: include})
	return nil
}

// Empty reports whether the chain has no rules.
func (c *Chain) Empty() bool {
	return len(c.rules) == 0
}

// Match reports whether the patch with the given ID should be applied.
func (c *Chain) Match(id string) bool {
	for _, rule := range c.rules {
		if rule.re.MatchString(id) {
			return rule.include
		}
	}
	return true
}

// globToRegex converts a glob pattern to a regex string. '*' matches any
// run of characters, '?' matches one.
func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}
