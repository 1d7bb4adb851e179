package query

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Matcher is a compiled selector
type Matcher = goquery.Matcher

// Compile compiles a CSS selector, panicking on invalid syntax.
// Intended for package-level selector tables.
func Compile(selector string) Matcher {
	return cascadia.MustCompile(selector)
}

// Parse builds a queryable document from raw markup
func Parse(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// First returns the first descendant of root matching m, or nil if
// nothing matches or root itself is nil.
func First(root *goquery.Selection, m Matcher) *goquery.Selection {
	if root == nil {
		return nil
	}
	sel := root.FindMatcher(m).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

// All returns every descendant of root matching m in document order
func All(root *goquery.Selection, m Matcher) []*goquery.Selection {
	if root == nil {
		return nil
	}
	found := root.FindMatcher(m)
	out := make([]*goquery.Selection, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// Text returns the normalized text of sel. The second return value is
// false when sel is nil or its text is empty after trimming.
func Text(sel *goquery.Selection) (string, bool) {
	if sel == nil || sel.Length() == 0 {
		return "", false
	}
	text := Flatten(sel)
	if text == "" {
		return "", false
	}
	return text, true
}

// Flatten returns the text of sel with internal whitespace runs collapsed
// to single spaces and the ends trimmed.
func Flatten(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	return collapse(sel.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// HasAttr reports whether the first node of sel carries the attribute
func HasAttr(sel *goquery.Selection, name string) bool {
	_, ok := Attr(sel, name)
	return ok
}

// Attr returns the raw value of an attribute on the first node of sel
func Attr(sel *goquery.Selection, name string) (string, bool) {
	if sel == nil || sel.Length() == 0 {
		return "", false
	}
	for _, a := range sel.Nodes[0].Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Classes returns the class list of the first node of sel
func Classes(sel *goquery.Selection) []string {
	class, ok := Attr(sel, "class")
	if !ok {
		return nil
	}
	return strings.Fields(class)
}

// HasClass reports whether the first node of sel has the given class
func HasClass(sel *goquery.Selection, class string) bool {
	for _, c := range Classes(sel) {
		if c == class {
			return true
		}
	}
	return false
}
