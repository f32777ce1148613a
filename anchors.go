package yamlkit

import (
	"github.com/willabides/yamlkit/internal/parserc"
	"github.com/willabides/yamlkit/internal/yamlh"
	"github.com/willabides/yamlkit/yamlerr"
)

// maxAliasExpansionDepth is the hard cap on nested alias expansion: YAML
// parsers already reject cyclic anchors, this only defends against
// pathologically deep (but acyclic) expansion chains.
const maxAliasExpansionDepth = 1024

// anchorTable records anchored event subsequences keyed by name and replays
// them on alias, last-definition-wins. It lives for exactly one document.
type anchorTable struct {
	defs   map[string][]yamlh.Event
	active []*recording
}

type recording struct {
	name  string
	buf   []yamlh.Event
	depth int
}

func newAnchorTable() *anchorTable {
	return &anchorTable{defs: make(map[string][]yamlh.Event)}
}

func cloneEvent(ev yamlh.Event) yamlh.Event {
	c := ev
	c.Anchor = append([]byte(nil), ev.Anchor...)
	c.Tag = append([]byte(nil), ev.Tag...)
	c.Value = append([]byte(nil), ev.Value...)
	return c
}

// observe feeds one event through the anchor table: it is appended to every
// currently-recording anchor's buffer, and starts a new recording if the
// event itself defines an anchor.
func (t *anchorTable) observe(ev yamlh.Event) {
	for _, rec := range t.active {
		rec.buf = append(rec.buf, cloneEvent(ev))
		switch ev.Type {
		case yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
			rec.depth++
		case yamlh.SEQUENCE_END_EVENT, yamlh.MAPPING_END_EVENT:
			rec.depth--
		}
	}
	t.finalizeClosed()

	if ev.Type == yamlh.ALIAS_EVENT || len(ev.Anchor) == 0 {
		return
	}
	rec := &recording{name: string(ev.Anchor), buf: []yamlh.Event{cloneEvent(ev)}}
	switch ev.Type {
	case yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
		rec.depth = 1
		t.active = append(t.active, rec)
	default: // SCALAR_EVENT: a single self-contained event
		t.defs[rec.name] = rec.buf
	}
}

func (t *anchorTable) finalizeClosed() {
	kept := t.active[:0]
	for _, rec := range t.active {
		if rec.depth <= 0 {
			t.defs[rec.name] = rec.buf // last-definition-wins
		} else {
			kept = append(kept, rec)
		}
	}
	t.active = kept
}

func (t *anchorTable) resolve(name string) ([]yamlh.Event, bool) {
	buf, ok := t.defs[name]
	return buf, ok
}

// eventFeed wraps a raw parserc.YamlParser and transparently expands
// aliases against an anchorTable, so callers only ever see plain events:
// no ALIAS_EVENT reaches the load engine's dispatcher.
type eventFeed struct {
	parser    *parserc.YamlParser
	anchors   *anchorTable
	replay    [][]yamlh.Event
	replayIdx []int
	depth     int
	noAlias   bool
	noAnchors bool
}

func newEventFeed(p *parserc.YamlParser, noAlias, noAnchors bool) *eventFeed {
	return &eventFeed{parser: p, anchors: newAnchorTable(), noAlias: noAlias, noAnchors: noAnchors}
}

func (f *eventFeed) next() (yamlh.Event, *yamlerr.Error) {
	for {
		if n := len(f.replay); n > 0 {
			top := n - 1
			idx := f.replayIdx[top]
			if idx >= len(f.replay[top]) {
				f.replay = f.replay[:top]
				f.replayIdx = f.replayIdx[:top]
				f.depth--
				continue
			}
			ev := f.replay[top][idx]
			f.replayIdx[top]++
			if !f.noAnchors {
				f.anchors.observe(ev)
			}
			return ev, nil
		}

		ev, err := parserc.Parse(f.parser)
		if err != nil {
			return yamlh.Event{}, yamlerr.New(yamlerr.Parser, "", f.parser.Mark.Line+1, f.parser.Mark.Column+1, "%v", err)
		}

		if ev.Type == yamlh.ALIAS_EVENT {
			if f.noAlias {
				return yamlh.Event{}, yamlerr.New(yamlerr.UnexpectedEvent, "", ev.Start_mark.Line+1, ev.Start_mark.Column+1, "alias encountered with NO_ALIAS configured")
			}
			name := string(ev.Anchor)
			buf, ok := f.anchors.resolve(name)
			if !ok {
				return yamlh.Event{}, yamlerr.New(yamlerr.InvalidAlias, "", ev.Start_mark.Line+1, ev.Start_mark.Column+1, "unknown anchor %q", name)
			}
			if f.depth >= maxAliasExpansionDepth {
				return yamlh.Event{}, yamlerr.New(yamlerr.InvalidAlias, "", ev.Start_mark.Line+1, ev.Start_mark.Column+1, "alias expansion exceeds depth %d", maxAliasExpansionDepth)
			}
			f.depth++
			f.replay = append(f.replay, buf)
			f.replayIdx = append(f.replayIdx, 0)
			continue
		}

		if !f.noAnchors {
			f.anchors.observe(*ev)
		}
		return *ev, nil
	}
}
