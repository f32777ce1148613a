package yamlkit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit/internal/parserc"
	"github.com/willabides/yamlkit/internal/yamlh"
)

func drain(t *testing.T, feed *eventFeed) []yamlh.Event {
	t.Helper()
	var out []yamlh.Event
	for {
		ev, err := feed.next()
		require.Nil(t, err)
		out = append(out, ev)
		if ev.Type == yamlh.STREAM_END_EVENT {
			return out
		}
	}
}

func TestEventFeedExpandsAliasTransparently(t *testing.T) {
	p := parserc.New(strings.NewReader("a: &x hi\nb: *x\n"))
	feed := newEventFeed(p, false, false)
	events := drain(t, feed)
	for _, ev := range events {
		require.NotEqual(t, yamlh.ALIAS_EVENT, ev.Type)
	}
}

func TestEventFeedNoAliasRejectsAlias(t *testing.T) {
	p := parserc.New(strings.NewReader("a: &x hi\nb: *x\n"))
	feed := newEventFeed(p, true, false)
	_, err := drainUntilError(feed)
	require.NotNil(t, err)
}

func drainUntilError(feed *eventFeed) (int, error) {
	n := 0
	for {
		ev, err := feed.next()
		if err != nil {
			return n, err
		}
		n++
		if ev.Type == yamlh.STREAM_END_EVENT {
			return n, nil
		}
	}
}

func TestAnchorTableLastDefinitionWins(t *testing.T) {
	table := newAnchorTable()
	table.observe(yamlh.Event{Type: yamlh.SCALAR_EVENT, Anchor: []byte("x"), Value: []byte("first")})
	table.observe(yamlh.Event{Type: yamlh.SCALAR_EVENT, Anchor: []byte("x"), Value: []byte("second")})
	buf, ok := table.resolve("x")
	require.True(t, ok)
	require.Len(t, buf, 1)
	require.Equal(t, "second", string(buf[0].Value))
}
