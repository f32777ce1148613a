// Package yamlkit is a schema-driven YAML marshaller: given a schema.Schema
// describing the shape of a value, it loads YAML into a value.Value graph,
// saves a graph back to YAML, and frees or deep-copies a graph, all under a
// caller-supplied Config. The event-stream parsing and emission this is
// built on is out of scope here -- internal/parserc and internal/emitter
// supply it, vendored from the underlying YAML engine.
package yamlkit

import (
	"bytes"
	"io"
	"os"

	"github.com/willabides/yamlkit/internal/parserc"
	"github.com/willabides/yamlkit/internal/yamlh"
	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
	"github.com/willabides/yamlkit/yamlerr"
)

// Strerror re-exports yamlerr.Strerror so callers need not import the
// sub-package just to render a Kind.
func Strerror(kind yamlerr.Kind) string { return yamlerr.Strerror(kind) }

// Load parses a single YAML document from r into a fresh *value.Value tree
// shaped by sch, under cfg. Only the first document in the stream is
// consumed; trailing documents are ignored, matching the reference design's
// single-root-value contract.
func Load(cfg *Config, sch *schema.Schema, r io.Reader) (*value.Value, error) {
	if cfg == nil {
		return nil, yamlerr.New(yamlerr.NullConfig, "", 0, 0, "")
	}
	if cfg.MemFn == nil {
		return nil, yamlerr.New(yamlerr.NullMemFn, "", 0, 0, "")
	}
	if sch == nil {
		return nil, yamlerr.New(yamlerr.NullSchema, "", 0, 0, "")
	}
	if err := schema.Check(sch); err != nil {
		return nil, err
	}

	p := parserc.New(r)
	feed := newEventFeed(p, cfg.Flags.Has(NoAlias), cfg.Flags.Has(NoAnchors))
	l := &loader{feed: feed, cfg: cfg}

	if err := expect(feed, yamlh.STREAM_START_EVENT); err != nil {
		return nil, err
	}
	if err := expect(feed, yamlh.DOCUMENT_START_EVENT); err != nil {
		return nil, err
	}

	v, err := l.loadValue(sch, "$")
	if err != nil {
		return nil, err
	}
	return v, nil
}

// LoadBytes is a convenience wrapper around Load for an in-memory document.
func LoadBytes(cfg *Config, sch *schema.Schema, data []byte) (*value.Value, error) {
	return Load(cfg, sch, bytes.NewReader(data))
}

// LoadFile is a convenience wrapper around Load that reads the document from
// a path on disk.
func LoadFile(cfg *Config, sch *schema.Schema, path string) (*value.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(cfg, sch, f)
}

func expect(feed *eventFeed, want yamlh.EventType) *yamlerr.Error {
	ev, err := feed.next()
	if err != nil {
		return err
	}
	if ev.Type != want {
		return yamlerr.New(yamlerr.UnexpectedEvent, "", ev.Start_mark.Line+1, ev.Start_mark.Column+1, "expected %s, got %s", want, ev.Type)
	}
	return nil
}

// Save renders v (shaped by sch) as a single YAML document to w, under cfg.
func Save(cfg *Config, sch *schema.Schema, v *value.Value, w io.Writer) error {
	if cfg == nil {
		return yamlerr.New(yamlerr.NullConfig, "", 0, 0, "")
	}
	if v == nil {
		return yamlerr.New(yamlerr.NullData, "", 0, 0, "")
	}
	if err := saveDocument(cfg, sch, v, w); err != nil {
		return err
	}
	return nil
}

// SaveBytes is a convenience wrapper around Save that returns the rendered
// document instead of writing to a stream.
func SaveBytes(cfg *Config, sch *schema.Schema, v *value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(cfg, sch, v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile is a convenience wrapper around Save that writes the document to
// a path on disk.
func SaveFile(cfg *Config, sch *schema.Schema, v *value.Value, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(cfg, sch, v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Free releases every node of v via cfg.MemFn, post-order. v must not be
// used afterward.
func Free(cfg *Config, v *value.Value) {
	if cfg == nil || v == nil {
		return
	}
	freeValue(cfg, v)
}
