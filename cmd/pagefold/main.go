// Command pagefold is the CLI host for the annotation positioning core.
// It ingests e-reader annotation exports, builds document-order position
// indices from EPUBs, and links reading sessions to the highlights made
// during them.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/pagefold/pagefold/core/epub"
	"github.com/pagefold/pagefold/core/match"
	"github.com/pagefold/pagefold/core/posindex"
	"github.com/pagefold/pagefold/core/xpoint"
	"github.com/pagefold/pagefold/internal/config"
	"github.com/pagefold/pagefold/internal/ingest"
	"github.com/pagefold/pagefold/internal/logging"
	"github.com/pagefold/pagefold/internal/store"
)

const version = "0.2.0"

// CLI defines the command-line interface for pagefold.
var CLI struct {
	Config string `name:"config" short:"c" help:"Path to YAML config file" type:"path"`

	Ingest  IngestCmd  `cmd:"" help:"Ingest an annotation export (JSON lines) for a book"`
	Index   IndexCmd   `cmd:"" help:"Build the position index for a book from its EPUB"`
	Link    LinkCmd    `cmd:"" help:"Link reading sessions to the highlights inside them"`
	Inspect InspectCmd `cmd:"" help:"Parse an xpoint, or compare two"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// appContext carries shared state into command Run methods.
type appContext struct {
	cfg      config.Config
	registry *posindex.Registry
}

func (a *appContext) openStore() (*store.Store, error) {
	return store.Open(a.cfg.Database.Path)
}

// IngestCmd ingests a JSON-lines annotation export.
type IngestCmd struct {
	Book string `arg:"" help:"Book ID the annotations belong to"`
	File string `arg:"" help:"Annotation export file (one JSON object per line)" type:"existingfile"`
}

// Run executes the ingest command.
func (c *IngestCmd) Run(app *appContext) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := readAnnotations(f)
	if err != nil {
		return err
	}

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	existing, err := st.ExistingHashes(c.Book)
	if err != nil {
		return err
	}

	report := ingest.ProcessBatch(batch, existing)
	if err := st.SaveAnnotations(c.Book, report.Accepted); err != nil {
		return err
	}

	logging.IngestBatch(c.Book, len(report.Accepted), len(report.Duplicates), len(report.Rejected))
	fmt.Printf("accepted %d, duplicates %d, rejected %d\n",
		len(report.Accepted), len(report.Duplicates), len(report.Rejected))
	for _, rej := range report.Rejected {
		fmt.Printf("rejected: %v\n", rej.Err)
	}
	return nil
}

// IndexCmd builds (and reports on) the position index for a book.
type IndexCmd struct {
	Book string `arg:"" help:"Book ID"`
	Epub string `arg:"" help:"EPUB file to walk" type:"existingfile"`
}

// Run executes the index command.
func (c *IndexCmd) Run(app *appContext) error {
	book, err := epub.OpenFile(c.Epub)
	if err != nil {
		return err
	}

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.UpsertBook(c.Book, book.Metadata.Title, book.Metadata.Author); err != nil {
		return err
	}

	started := time.Now()
	ix, err := app.registry.Rebuild(context.Background(), c.Book, book.Fragments())
	if err != nil {
		return err
	}

	logging.IndexBuild(c.Book, ix.Len(), time.Since(started))
	fmt.Printf("indexed %d elements across %d fragments of %q\n",
		ix.Len(), len(book.Fragments()), book.Metadata.Title)
	return nil
}

// LinkCmd links stored sessions to stored highlights.
type LinkCmd struct {
	Book string `arg:"" help:"Book ID"`
	Epub string `help:"EPUB file; when given, matching uses the position index" type:"existingfile"`
}

// Run executes the link command.
func (c *LinkCmd) Run(app *appContext) error {
	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var ix *posindex.Index
	if c.Epub != "" {
		book, err := epub.OpenFile(c.Epub)
		if err != nil {
			return err
		}
		ix, err = app.registry.Rebuild(context.Background(), c.Book, book.Fragments())
		if err != nil {
			return err
		}
	} else if installed, ok := app.registry.Lookup(c.Book); ok {
		ix = installed
	}

	sessions, err := st.Sessions(c.Book)
	if err != nil {
		return err
	}
	highlights, err := st.Highlights(c.Book)
	if err != nil {
		return err
	}

	totalMatched, totalUndetermined := 0, 0
	for _, sess := range sessions {
		result := match.Link(sess.Session, highlights, ix)
		ids := make([]string, len(result.Matched))
		for i, h := range result.Matched {
			ids[i] = h.ID
		}
		if err := st.SaveLinks(sess.ID, ids); err != nil {
			return err
		}
		totalMatched += len(result.Matched)
		totalUndetermined += len(result.Undetermined)
	}

	logging.MatchRun(c.Book, len(sessions), totalMatched, totalUndetermined)
	fmt.Printf("linked %d highlights across %d sessions (%d undetermined)\n",
		totalMatched, len(sessions), totalUndetermined)
	return nil
}

// InspectCmd parses one xpoint or compares two.
type InspectCmd struct {
	Xpoints []string `arg:"" help:"One or two xpoint strings"`
}

// Run executes the inspect command.
func (c *InspectCmd) Run(_ *appContext) error {
	switch len(c.Xpoints) {
	case 1:
		p, err := xpoint.Parse(c.Xpoints[0])
		if err != nil {
			return err
		}
		fmt.Printf("fragment:  %d\n", p.Fragment())
		fmt.Printf("element:   %s\n", p.ElementKey())
		fmt.Printf("text node: %d\n", p.TextNode())
		fmt.Printf("offset:    %d\n", p.Offset())
		return nil
	case 2:
		a, err := xpoint.Parse(c.Xpoints[0])
		if err != nil {
			return err
		}
		b, err := xpoint.Parse(c.Xpoints[1])
		if err != nil {
			return err
		}
		fmt.Println(xpoint.Compare(a, b))
		return nil
	default:
		return fmt.Errorf("inspect takes one or two xpoints, got %d", len(c.Xpoints))
	}
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(_ *appContext) error {
	fmt.Printf("pagefold %s\n", version)
	return nil
}

// readAnnotations decodes a JSON-lines annotation export. Blank lines are
// skipped; a line that is not valid JSON fails the read (per-annotation
// validity is the ingest pipeline's job, transport framing is ours).
func readAnnotations(r io.Reader) ([]ingest.RawAnnotation, error) {
	var out []ingest.RawAnnotation
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var raw ingest.RawAnnotation
		if err := json.Unmarshal(text, &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pagefold"),
		kong.Description("Positional model and matching engine for e-reader annotations."),
		kong.UsageOnError(),
	)

	cfg := config.Default()
	if CLI.Config != "" {
		loaded, err := config.Load(CLI.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pagefold: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logging.InitLogger(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))

	app := &appContext{
		cfg:      cfg,
		registry: posindex.NewRegistry(),
	}
	if err := ctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "pagefold: %v\n", err)
		os.Exit(1)
	}
}
