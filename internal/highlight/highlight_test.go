package highlight

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestSegments(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		query string
		want  []Segment
	}{
		{"empty text", "", "abc", nil},
		{"empty query", "abc", "", []Segment{{Text: "abc"}}},
		{"no match", "xyz", "abc", []Segment{{Text: "xyz"}}},
		{"case insensitive", "xABCy", "abc", []Segment{{Text: "x"}, {Text: "ABC", Match: true}, {Text: "y"}}},
		{"adjacent", "abcabc", "abc", []Segment{{Text: "abc", Match: true}, {Text: "abc", Match: true}}},
		{"overlapping", "aaa", "aa", []Segment{{Text: "aa", Match: true}, {Text: "a"}}},
		{"cyrillic", "Пластик PLA пластик", "ПЛАСТИК", []Segment{
			{Text: "Пластик", Match: true}, {Text: " PLA "}, {Text: "пластик", Match: true},
		}},
		{"literal metacharacters", "PLA+ (1.75) PLA", "a+ (1.", []Segment{
			{Text: "PL"}, {Text: "A+ (1.", Match: true}, {Text: "75) PLA"},
		}},
		{"dot is not a wildcard", "abc", ".", []Segment{{Text: "abc"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Segments(tc.text, tc.query))
		})
	}
}

func TestSegmentsConcatenateToInput(t *testing.T) {
	inputs := []string{"", "abc", "xxabcxxABCabc", "abababab", "Без названия"}
	for _, in := range inputs {
		var sb strings.Builder
		for _, seg := range Segments(in, "abc") {
			sb.WriteString(seg.Text)
		}
		assert.Equal(t, in, sb.String())
	}
}

func parseBody(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + fragment + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, html.Render(&sb, n))
	return sb.String()
}

func TestHighlightThenUnhighlightRestoresDocument(t *testing.T) {
	inputs := []string{
		`<p>nothing here</p>`,
		`<p>one abc inside</p>`,
		`<div class="card"><h3>abcABC</h3><p>x abc <b>abc</b> &amp; abcabc</p></div>`,
		`<p>ababcabc</p><script>var abc = 1;</script>`,
	}
	for _, in := range inputs {
		doc := parseBody(t, in)
		original := render(t, doc)

		Highlight(doc, "abc")
		Unhighlight(doc)
		assert.Equal(t, original, render(t, doc))
	}
}

func TestHighlightMarksTextOnly(t *testing.T) {
	doc := parseBody(t, `<a href="/abc" title="abc">go abc</a><script>abc()</script><textarea>abc</textarea>`)
	require.True(t, Highlight(doc, "ABC"))

	q := goquery.NewDocumentFromNode(doc)
	marks := q.Find("mark." + MarkClass)
	require.Equal(t, 1, marks.Length())
	assert.Equal(t, "abc", marks.Text())
	assert.Equal(t, "/abc", q.Find("a").AttrOr("href", ""))
	assert.Equal(t, "abc()", q.Find("script").Text())
	assert.Equal(t, 0, q.Find("textarea mark").Length())
}

func TestHighlightIsIdempotent(t *testing.T) {
	doc := parseBody(t, `<p>abc and ABC</p>`)
	Highlight(doc, "abc")
	once := render(t, doc)
	Highlight(doc, "abc")
	assert.Equal(t, once, render(t, doc))
	assert.Equal(t, 2, strings.Count(once, "<mark"))
}

func TestHighlightReplacesPreviousQuery(t *testing.T) {
	doc := parseBody(t, `<p>red green</p>`)
	require.True(t, Highlight(doc, "red"))
	require.True(t, Highlight(doc, "green"))

	q := goquery.NewDocumentFromNode(doc)
	assert.Equal(t, "green", q.Find("mark").Text())
	assert.Equal(t, "red green", q.Find("p").Text())
}

func TestHighlightFragment(t *testing.T) {
	out, matched, err := HighlightFragment(`<div class="card">eSun PLA+</div>`, "pla+")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, `<div class="card">eSun <mark class="search-highlight">PLA+</mark></div>`, out)

	cleared, matched, err := HighlightFragment(out, "")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, `<div class="card">eSun PLA+</div>`, cleared)

	_, matched, err = HighlightFragment(`<div>PETG</div>`, "abs")
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Geeetech", "EEE"))
	assert.True(t, Contains("anything", ""))
	assert.False(t, Contains("abc", "a.c"))
}
