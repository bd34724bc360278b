package document

import (
	"errors"
	"testing"

	"github.com/antchfx/xmlquery"

	"github.com/pagefold/pagefold/core/xpoint"
)

var errStop = errors.New("stop walk")

const sampleXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Ch 3</title></head>
<body>
  <div>
    <h2>Heading</h2>
    <p>First paragraph.</p>
    <blockquote>Quoted.</blockquote>
    <p>Second paragraph.</p>
  </div>
</body>
</html>`

// TestWalkOrderAndCounting verifies pre-order traversal and same-name
// sibling counting: the two p elements interleaved with h2 and blockquote
// must come out as p[1] and p[2].
func TestWalkOrderAndCounting(t *testing.T) {
	frag, err := Parse("ch3.xhtml", []byte(sampleXHTML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var got []string
	if err := frag.Walk(func(steps []xpoint.Step, _ *xmlquery.Node) error {
		got = append(got, xpoint.ElementKey(1, steps))
		return nil
	}); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := []string{
		"1:/head[1]",
		"1:/head[1]/title[1]",
		"1:/body[1]",
		"1:/body[1]/div[1]",
		"1:/body[1]/div[1]/h2[1]",
		"1:/body[1]/div[1]/p[1]",
		"1:/body[1]/div[1]/blockquote[1]",
		"1:/body[1]/div[1]/p[2]",
	}
	if len(got) != len(want) {
		t.Fatalf("walk visited %d elements, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("walk[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

// TestWalkStops verifies a visit error aborts the traversal.
func TestWalkStops(t *testing.T) {
	frag, err := Parse("ch3.xhtml", []byte(sampleXHTML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	visited := 0
	werr := frag.Walk(func(_ []xpoint.Step, _ *xmlquery.Node) error {
		visited++
		if visited == 3 {
			return errStop
		}
		return nil
	})
	if werr != errStop {
		t.Errorf("Walk should surface the visit error, got %v", werr)
	}
	if visited != 3 {
		t.Errorf("walk should stop at the failing visit, visited %d", visited)
	}
}

// TestParseErrors verifies element-less input is rejected.
func TestParseErrors(t *testing.T) {
	if _, err := Parse("empty.xhtml", []byte("<?xml version=\"1.0\"?>\n")); err == nil {
		t.Error("fragment without a root element should fail")
	}
}

// TestFragmentName verifies the source identifier is retained.
func TestFragmentName(t *testing.T) {
	frag, err := Parse("ch3.xhtml", []byte(sampleXHTML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if frag.Name() != "ch3.xhtml" {
		t.Errorf("Name: got %q", frag.Name())
	}
	if frag.Root() == nil || frag.Root().Data != "html" {
		t.Error("Root should be the html element")
	}
}
