// Package source reads per-source document dumps from an input directory.
// Each source contributes a .json file (a single JSON array) or an
// .ndjson file (one document per line); joined sources add a companion
// detail file named <source>_profiles or <source>_details.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Document is one decoded source record, schemaless until an adapter
// shapes it.
type Document = map[string]any

// Dir reads source dumps from a directory.
type Dir struct {
	path string
}

// NewDir returns a reader over the given input directory.
func NewDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: stat input dir %s", path)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("source: %s is not a directory", path)
	}
	return &Dir{path: path}, nil
}

// Has reports whether a dump exists for the named source.
func (d *Dir) Has(name string) bool {
	return d.find(name) != ""
}

func (d *Dir) find(name string) string {
	for _, ext := range []string{".json", ".ndjson"} {
		p := filepath.Join(d.path, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Stream decodes the named source's documents, sending each to a channel.
// Both channels are closed when the file is exhausted.
func (d *Dir) Stream(ctx context.Context, name string) (<-chan Document, <-chan error) {
	outCh := make(chan Document, 64)
	errCh := make(chan error, 1)

	path := d.find(name)
	if path == "" {
		close(outCh)
		errCh <- eris.Errorf("source: no dump for %s in %s", name, d.path)
		close(errCh)
		return outCh, errCh
	}

	go func() {
		defer close(outCh)
		defer close(errCh)

		f, err := os.Open(path)
		if err != nil {
			errCh <- eris.Wrapf(err, "source: open %s", path)
			return
		}
		defer f.Close()

		if strings.HasSuffix(path, ".ndjson") {
			err = streamLines(ctx, f, outCh)
		} else {
			err = streamArray(ctx, f, outCh)
		}
		if err != nil {
			errCh <- eris.Wrapf(err, "source: %s", name)
		}
	}()

	return outCh, errCh
}

// Load reads the named source's documents fully into memory. Used for the
// detail side of joined sources, which adapters index by key.
func (d *Dir) Load(ctx context.Context, name string) ([]Document, error) {
	docs := make([]Document, 0, 64)
	docCh, errCh := d.Stream(ctx, name)
	for doc := range docCh {
		docs = append(docs, doc)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadOptional is Load for companion files that may legitimately be
// absent; a missing dump yields no documents and no error.
func (d *Dir) LoadOptional(ctx context.Context, name string) ([]Document, error) {
	if !d.Has(name) {
		return nil, nil
	}
	return d.Load(ctx, name)
}

func streamArray(ctx context.Context, r io.Reader, out chan<- Document) error {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return eris.Wrap(err, "read opening token")
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return eris.Errorf("expected '[', got %v", tok)
	}

	for decoder.More() {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "context cancelled")
		}
		var doc Document
		if err := decoder.Decode(&doc); err != nil {
			return eris.Wrap(err, "decode element")
		}
		select {
		case out <- doc:
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "context cancelled")
		}
	}

	if _, err := decoder.Token(); err != nil && err != io.EOF {
		return eris.Wrap(err, "read closing token")
	}
	return nil
}

func streamLines(ctx context.Context, r io.Reader, out chan<- Document) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 16<<20)

	line := 0
	for scanner.Scan() {
		line++
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "context cancelled")
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return eris.Wrapf(err, "decode line %d", line)
		}
		select {
		case out <- doc:
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "context cancelled")
		}
	}
	return eris.Wrap(scanner.Err(), "scan lines")
}
