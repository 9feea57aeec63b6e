package event

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/streamweld/claude-bridge/internal/errors"
)

// Classify converts one decoded stdout line into a RawEvent.
//
// The classifier is tolerant by contract: unknown or missing type fields
// yield *Unrecognized, and stream_event payloads that carry no text delta
// are dropped entirely (nil event, nil error). The only error condition
// is an unusable terminal line, returned as *errors.MalformedResultError;
// every result line, usable or not, ends the read loop at the caller.
func Classify(log *slog.Logger, data map[string]any) (RawEvent, error) {
	eventType, ok := data["type"].(string)
	if !ok {
		log.Debug("Event missing type field")

		return &Unrecognized{}, nil
	}

	switch eventType {
	case "system":
		return classifySystem(log, data), nil
	case "assistant":
		return classifyAssistant(data), nil
	case "user":
		return &UserMessage{}, nil
	case "stream_event":
		ev := classifyStreamEvent(data)
		if ev == nil {
			log.Debug("Dropping stream_event without text delta")
		}

		return ev, nil
	case "result":
		return classifyResult(data)
	default:
		log.Debug("Unrecognized event type", "event_type", eventType)

		return &Unrecognized{Type: eventType}, nil
	}
}

// classifySystem models only the init subtype; other system lines
// (compaction markers and the like) fall through to Unrecognized.
func classifySystem(log *slog.Logger, data map[string]any) RawEvent {
	subtype, _ := data["subtype"].(string)
	if subtype != "init" {
		log.Debug("Skipping system event", "subtype", subtype)

		return &Unrecognized{Type: "system"}
	}

	init := &SystemInit{}

	if sessionID, ok := data["session_id"].(string); ok {
		init.SessionID = sessionID
	}

	if model, ok := data["model"].(string); ok {
		init.Model = model
	}

	return init
}

func classifyAssistant(data map[string]any) RawEvent {
	msg, ok := data["message"].(map[string]any)
	if !ok {
		return &Unrecognized{Type: "assistant"}
	}

	out := &AssistantMessage{}

	if model, ok := msg["model"].(string); ok {
		out.Model = model
	}

	blocks, _ := msg["content"].([]any)

	var text strings.Builder

	for _, item := range blocks {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if blockType, _ := block["type"].(string); blockType != "text" {
			continue
		}

		if t, ok := block["text"].(string); ok {
			text.WriteString(t)
		}
	}

	out.Text = text.String()

	return out
}

// classifyStreamEvent extracts the text-delta path:
// event.type == "content_block_delta", event.delta.type == "text_delta",
// non-empty event.delta.text. Everything else in a stream_event
// (message_start, content_block_start, pings, usage updates) is protocol
// chatter and yields nil.
func classifyStreamEvent(data map[string]any) RawEvent {
	inner, ok := data["event"].(map[string]any)
	if !ok {
		return nil
	}

	if t, _ := inner["type"].(string); t != "content_block_delta" {
		return nil
	}

	delta, ok := inner["delta"].(map[string]any)
	if !ok {
		return nil
	}

	if t, _ := delta["type"].(string); t != "text_delta" {
		return nil
	}

	text, _ := delta["text"].(string)
	if text == "" {
		return nil
	}

	return &ContentDelta{Text: text}
}

// classifyResult decodes the terminal event through its struct tags.
// A success result with no result text is unusable, as is a line whose
// fields fail to decode into the terminal shape.
func classifyResult(data map[string]any) (RawEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &errors.MalformedResultError{Data: data}
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &errors.MalformedResultError{Data: data}
	}

	if !res.IsError && res.Result == nil {
		return nil, &errors.MalformedResultError{Missing: "result", Data: data}
	}

	return &res, nil
}
