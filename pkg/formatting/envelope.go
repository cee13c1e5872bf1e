package formatting

import (
	"encoding/json"
)

// Extractor pulls a payload out of one known envelope shape. ok is false
// when raw does not have that shape.
type Extractor func(raw any) (payload any, ok bool)

// Envelopes is the precedence chain used by Unwrap.
var Envelopes = []Extractor{
	MessageContent,
	Content,
}

// Unwrap resolves an AI response envelope to its payload. Extractors are
// tried in order and the first match wins. When none match, raw itself
// is the payload.
func Unwrap(raw any) any {
	return UnwrapWith(raw, Envelopes...)
}

// UnwrapWith resolves raw through the given extractor chain.
func UnwrapWith(raw any, chain ...Extractor) any {
	for _, extract := range chain {
		if payload, ok := extract(raw); ok {
			return payload
		}
	}
	return raw
}

// MessageContent matches {"message": {"content": ...}}.
func MessageContent(raw any) (any, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, false
	}
	msg, ok := asObject(obj["message"])
	if !ok {
		return nil, false
	}
	return field(msg, "content")
}

// Content matches {"content": ...} and values exposing Content() string.
func Content(raw any) (any, bool) {
	if c, ok := raw.(interface{ Content() string }); ok {
		return c.Content(), true
	}
	obj, ok := asObject(raw)
	if !ok {
		return nil, false
	}
	return field(obj, "content")
}

func field(obj map[string]any, key string) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// asObject views raw as a JSON object. Raw JSON bytes are decoded only
// when they hold an object.
func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	}
	return nil, false
}

func decodeObject(data []byte) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	return obj, obj != nil
}
