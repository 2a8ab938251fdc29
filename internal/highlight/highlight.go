// Package highlight marks occurrences of a search query inside HTML text.
//
// Matching is literal and case-insensitive. Only text nodes are rewritten, so
// markup, attributes and entities survive a highlight/unhighlight cycle.
package highlight

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkClass is the class carried by every inserted mark element.
const MarkClass = "search-highlight"

// Segment represents a split section of text with optional emphasis.
type Segment struct {
	Text  string
	Match bool
}

// Segments splits text into alternating match and non-match runs. Matches do
// not overlap and are found left to right. An empty query yields the text as a
// single non-matching segment.
func Segments(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if query == "" {
		return []Segment{{Text: text}}
	}

	queryRunes := utf8.RuneCountInString(query)
	var segments []Segment
	plainStart := 0
	cursor := 0
	for cursor < len(text) {
		end, ok := prefixEnd(text[cursor:], queryRunes)
		if ok && strings.EqualFold(text[cursor:cursor+end], query) {
			if cursor > plainStart {
				segments = append(segments, Segment{Text: text[plainStart:cursor]})
			}
			segments = append(segments, Segment{Text: text[cursor : cursor+end], Match: true})
			cursor += end
			plainStart = cursor
			continue
		}
		if !ok {
			break
		}
		_, size := utf8.DecodeRuneInString(text[cursor:])
		cursor += size
	}
	if plainStart < len(text) {
		segments = append(segments, Segment{Text: text[plainStart:]})
	}
	return segments
}

// prefixEnd returns the byte length of the first n runes of s.
func prefixEnd(s string, n int) (int, bool) {
	offset := 0
	for i := 0; i < n; i++ {
		if offset >= len(s) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return offset, true
}

// Contains reports whether text contains query under the same rules as Segments.
func Contains(text, query string) bool {
	if query == "" {
		return true
	}
	for _, seg := range Segments(text, query) {
		if seg.Match {
			return true
		}
	}
	return false
}

// Highlight removes previous marks below root and wraps every occurrence of
// query in a mark element. It reports whether anything matched. An empty query
// only removes marks.
func Highlight(root *html.Node, query string) bool {
	Unhighlight(root)
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	var targets []*html.Node
	collectText(root, &targets)

	matched := false
	for _, node := range targets {
		segments := Segments(node.Data, query)
		if !hasMatch(segments) {
			continue
		}
		matched = true
		parent := node.Parent
		for _, seg := range segments {
			if seg.Match {
				parent.InsertBefore(newMark(seg.Text), node)
				continue
			}
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: seg.Text}, node)
		}
		parent.RemoveChild(node)
	}
	return matched
}

// Unhighlight replaces every mark below root with its text and merges the
// adjacent text nodes it leaves behind.
func Unhighlight(root *html.Node) {
	if root == nil {
		return
	}
	var marks []*html.Node
	collectMarks(root, &marks)
	touched := make(map[*html.Node]struct{}, len(marks))
	for _, mark := range marks {
		parent := mark.Parent
		if parent == nil {
			continue
		}
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: textContent(mark)}, mark)
		parent.RemoveChild(mark)
		touched[parent] = struct{}{}
	}
	for parent := range touched {
		mergeText(parent)
	}
}

// HighlightFragment parses an HTML fragment, highlights query in it and renders
// the result. With an empty query existing marks are removed and matched is true.
func HighlightFragment(fragment, query string) (string, bool, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", false, fmt.Errorf("highlight: parse fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	matched := true
	if strings.TrimSpace(query) == "" {
		Unhighlight(container)
	} else {
		matched = Highlight(container, query)
	}

	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", false, fmt.Errorf("highlight: render fragment: %w", err)
		}
	}
	return buf.String(), matched, nil
}

// TextContent concatenates the text below n, like the DOM property of the same name.
func TextContent(n *html.Node) string {
	return textContent(n)
}

func hasMatch(segments []Segment) bool {
	for _, s := range segments {
		if s.Match {
			return true
		}
	}
	return false
}

func skipped(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Textarea, atom.Noscript:
		return true
	}
	return isMark(n)
}

func collectText(n *html.Node, out *[]*html.Node) {
	if skipped(n) {
		return
	}
	if n.Type == html.TextNode && n.Parent != nil && n.Data != "" {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

func collectMarks(n *html.Node, out *[]*html.Node) {
	if isMark(n) {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectMarks(c, out)
	}
}

func isMark(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Mark {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			for _, class := range strings.Fields(a.Val) {
				if class == MarkClass {
					return true
				}
			}
		}
	}
	return false
}

func newMark(text string) *html.Node {
	mark := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr:     []html.Attribute{{Key: "class", Val: MarkClass}},
	}
	mark.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return mark
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func mergeText(parent *html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			parent.RemoveChild(next)
			continue
		}
		c = next
	}
}
