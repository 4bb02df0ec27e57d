package preview

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

const sampleDoc = `# Title

Some paragraph with **bold** and a [link](https://example.com).

- item one
- item two

` + "```go\nfunc main() {}\n```" + `

<div><span>x</span></div>
`

func TestRenderDecoratesElements(t *testing.T) {
	r := NewRenderer("github")
	html, ix, err := r.Render([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{"<h1 data-uid=", "<p data-uid=", "<li data-uid=", "<strong data-uid=", "<a data-uid=", "<pre data-uid="} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q\n%s", want, html)
		}
	}
	if ix.Len() == 0 {
		t.Fatal("index is empty")
	}
}

func TestRenderRawHTMLPassthrough(t *testing.T) {
	r := NewRenderer("github")
	html, _, err := r.Render([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<div><span>x</span></div>") {
		t.Errorf("raw HTML block was not passed through untouched:\n%s", html)
	}
}

func TestRenderDeterministicIdentifiers(t *testing.T) {
	r := NewRenderer("github")
	html1, ix1, err := r.Render([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	html2, ix2, err := r.Render([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	if html1 != html2 {
		t.Error("re-rendering identical source produced different HTML")
	}
	if ix1.Len() != ix2.Len() {
		t.Fatalf("index sizes differ: %d vs %d", ix1.Len(), ix2.Len())
	}
	for i := 0; i < ix1.Len(); i++ {
		uid := fmt.Sprintf("n%d", i)
		a, okA := ix1.Lookup(uid)
		b, okB := ix2.Lookup(uid)
		if !okA || !okB || a != b {
			t.Errorf("identifier %s: offsets (%d, %v) vs (%d, %v)", uid, a, okA, b, okB)
		}
	}
}

func TestRenderOffsetsMonotonicAndInBounds(t *testing.T) {
	r := NewRenderer("github")
	_, ix, err := r.Render([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	prev := 0
	for i := 0; i < ix.Len(); i++ {
		off, ok := ix.Lookup(fmt.Sprintf("n%d", i))
		if !ok {
			t.Fatalf("identifier n%d missing", i)
		}
		if off < prev {
			t.Errorf("offset for n%d decreased: %d < %d", i, off, prev)
		}
		if off < 0 || off > len(sampleDoc) {
			t.Errorf("offset for n%d out of bounds: %d", i, off)
		}
		prev = off
	}
}

func TestRenderIndexOffsetsPointIntoSource(t *testing.T) {
	r := NewRenderer("github")
	html, ix, err := r.Render([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	// The paragraph's offset hint must land on its first line.
	uid := uidOf(t, html, `<p data-uid="([^"]+)"`)
	off, ok := ix.Lookup(uid)
	if !ok {
		t.Fatalf("paragraph uid %s not in index", uid)
	}
	rest := sampleDoc[off:]
	if !strings.HasPrefix(rest, "Some paragraph") {
		t.Errorf("paragraph offset %d points at %.20q", off, rest)
	}
}

func TestRenderHighlightsFencedCode(t *testing.T) {
	r := NewRenderer("github")
	html, _, err := r.Render([]byte("```go\nfunc main() {}\n```\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<span style=") {
		t.Errorf("fenced go code was not highlighted:\n%s", html)
	}
	if !strings.Contains(html, `class="language-go"`) {
		t.Errorf("missing language class:\n%s", html)
	}
}

func TestRenderTable(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	r := NewRenderer("github")
	html, _, err := r.Render([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<table data-uid=", "<th", "<td"} {
		if !strings.Contains(html, want) {
			t.Errorf("table HTML missing %q:\n%s", want, html)
		}
	}
}

// uidOf extracts the first capture of the pattern from rendered HTML.
func uidOf(t *testing.T, html, pattern string) string {
	t.Helper()
	m := regexp.MustCompile(pattern).FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("pattern %q not found in:\n%s", pattern, html)
	}
	return m[1]
}
