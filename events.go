package yamlkit

import (
	"github.com/willabides/yamlkit/internal/yamlh"
)

// Event constructors, adapted from the event engine's own apic.go: the save
// engine never builds yamlh.Event values inline, it goes through these.

func streamStartEvent() *yamlh.Event {
	return &yamlh.Event{Type: yamlh.STREAM_START_EVENT, Encoding: yamlh.UTF8_ENCODING}
}

func streamEndEvent() *yamlh.Event {
	return &yamlh.Event{Type: yamlh.STREAM_END_EVENT}
}

func documentStartEvent() *yamlh.Event {
	return &yamlh.Event{Type: yamlh.DOCUMENT_START_EVENT, Implicit: true}
}

func documentEndEvent() *yamlh.Event {
	return &yamlh.Event{Type: yamlh.DOCUMENT_END_EVENT, Implicit: true}
}

func scalarEvent(value string, tag string, style yamlh.YamlScalarStyle) *yamlh.Event {
	return &yamlh.Event{
		Type:     yamlh.SCALAR_EVENT,
		Tag:      []byte(tag),
		Value:    []byte(value),
		Implicit: true,
		Style:    yamlh.YamlStyle(style),
	}
}

func sequenceStartEvent(style yamlh.YamlSequenceStyle) *yamlh.Event {
	return &yamlh.Event{Type: yamlh.SEQUENCE_START_EVENT, Tag: []byte(yamlh.SEQ_TAG), Implicit: true, Style: yamlh.YamlStyle(style)}
}

func sequenceEndEvent() *yamlh.Event {
	return &yamlh.Event{Type: yamlh.SEQUENCE_END_EVENT}
}

func mappingStartEvent(style yamlh.YamlMappingStyle) *yamlh.Event {
	return &yamlh.Event{Type: yamlh.MAPPING_START_EVENT, Tag: []byte(yamlh.MAP_TAG), Implicit: true, Style: yamlh.YamlStyle(style)}
}

func mappingEndEvent() *yamlh.Event {
	return &yamlh.Event{Type: yamlh.MAPPING_END_EVENT}
}
