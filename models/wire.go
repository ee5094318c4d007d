package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// Wire frames for the realtime channel. The client sends either a bare text
// frame or an OutboundFrame (when a city gate is configured); the backend
// always replies with an InboundFrame.

type OutboundFrame struct {
	Message string `json:"message"`
	City    string `json:"city"`
}

type InboundFrame struct {
	Message *InboundMessage `json:"message"`
}

type InboundMessage struct {
	LLMResponse *LLMResponse        `json:"llm_response"`
	Response    map[string][]string `json:"response,omitempty"`
}

type LLMResponse struct {
	Info string `json:"info"`
}

var ErrMalformedFrame = errors.New("malformed inbound frame")

// ParseInbound decodes and validates one inbound frame. Frames that are not
// JSON or miss message.llm_response are malformed and must be dropped by the
// caller without touching session state.
func ParseInbound(data []byte) (InboundFrame, error) {
	var f InboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return InboundFrame{}, err
	}
	if f.Message == nil || f.Message.LLMResponse == nil {
		return InboundFrame{}, ErrMalformedFrame
	}
	return f, nil
}

// ParseOutbound decodes a client frame on the backend side. Bare text frames
// are accepted as-is; JSON objects must carry a message field.
func ParseOutbound(data []byte) OutboundFrame {
	text := string(data)
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		var f OutboundFrame
		if err := json.Unmarshal(data, &f); err == nil && f.Message != "" {
			return f
		}
	}
	return OutboundFrame{Message: text}
}

// BotMessage builds the chat turn a valid inbound frame represents.
func (f InboundFrame) BotMessage() (text string, options map[string][]string) {
	return f.Message.LLMResponse.Info, f.Message.Response
}
