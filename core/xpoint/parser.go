package xpoint

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/pagefold/pagefold/core/errors"
)

// Grammar, in order: optional /body/DocFragment[n] fragment marker, one or
// more /name[k] element steps, optional /text()[t] selector, optional .off
// character offset. The fragment marker is path-shaped, so the grammar
// parses a flat segment list and the marker is split off afterwards.

type xpointAST struct {
	Segments []segmentAST `@@+`
	Offset   *int         `( "." @Number )?`
}

type segmentAST struct {
	Text *textSelAST `"/" ( @@`
	Elem *elemSelAST `      | @@ )`
}

type textSelAST struct {
	Marker string `@"text" "(" ")"`
	Index  *int   `( "[" @Number "]" )?`
}

type elemSelAST struct {
	Name  string `@Ident`
	Index *int   `( "[" @Number "]" )?`
}

// xpointLexer tokenizes xpoint strings. There is deliberately no whitespace
// rule: encodings never contain spaces and any that do are malformed.
var xpointLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_:-]*`},
	{Name: "Punct", Pattern: `[/\[\]().]`},
})

var xpointParser = participle.MustBuild[xpointAST](
	participle.Lexer(xpointLexer),
	participle.UseLookahead(4),
)

// Parse parses a raw xpoint string into a Position. It fails with an error
// wrapping errors.ErrMalformedEncoding when the input does not match the
// grammar: empty path, non-numeric or zero-valued 1-based indices, a text
// selector anywhere but the end.
func Parse(raw string) (*Position, error) {
	ast, err := xpointParser.ParseString("", raw)
	if err != nil {
		return nil, &errors.EncodingError{Raw: raw, Message: err.Error()}
	}

	p := &Position{}
	for i, seg := range ast.Segments {
		switch {
		case seg.Text != nil:
			if i != len(ast.Segments)-1 {
				return nil, errors.NewEncoding(raw, "text selector must be the final segment")
			}
			p.hasText = true
			if seg.Text.Index != nil {
				if *seg.Text.Index < 1 {
					return nil, errors.NewEncoding(raw, "text node index must be >= 1")
				}
				p.textIndex = *seg.Text.Index
			}
		case seg.Elem != nil:
			step := Step{Name: seg.Elem.Name, Index: 1}
			if seg.Elem.Index != nil {
				if *seg.Elem.Index < 1 {
					return nil, errors.NewEncoding(raw, "element index must be >= 1")
				}
				step.Index = *seg.Elem.Index
				step.explicit = true
			}
			p.steps = append(p.steps, step)
		}
	}

	// Split off the fragment marker: a leading /body (no explicit index)
	// followed by /DocFragment[n] with the index written out.
	if len(p.steps) >= 2 &&
		p.steps[0].Name == "body" && !p.steps[0].explicit &&
		p.steps[1].Name == "DocFragment" && p.steps[1].explicit {
		p.fragment = p.steps[1].Index
		p.steps = p.steps[2:]
	}

	if len(p.steps) == 0 {
		return nil, errors.NewEncoding(raw, "path must contain at least one element step")
	}

	if ast.Offset != nil {
		p.offset = *ast.Offset
		p.hasOffset = true
	}

	return p, nil
}

// MustParse is a Parse that panics on error, for tests and literals.
func MustParse(raw string) *Position {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}
