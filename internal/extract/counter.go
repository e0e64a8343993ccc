// Package extract counts elements in rendered page markup.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Counter counts elements matching a fixed CSS selector.
type Counter struct {
	selector string
	matcher  goquery.Matcher
}

// NewCounter compiles selector into a Counter.
func NewCounter(selector string) (*Counter, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return &Counter{selector: selector, matcher: sel}, nil
}

// Selector returns the selector string the Counter was built with.
func (c *Counter) Selector() string {
	return c.selector
}

// Count returns the number of elements in html matching the selector.
// Markup that cannot be parsed counts as zero matches.
func (c *Counter) Count(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	return doc.FindMatcher(c.matcher).Length()
}
