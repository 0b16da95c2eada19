package realtime

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFunctionCallArgumentsDone(t *testing.T) {
	raw := `{
		"event_id": "event_543",
		"type": "response.function_call_arguments.done",
		"item_id": "item_123",
		"call_id": "call_987",
		"name": "verify_mobile_number",
		"arguments": "{\"mobile\":\"9876543210\"}"
	}`

	var event ServerEvent
	require.NoError(t, sonic.UnmarshalString(raw, &event))

	assert.Equal(t, ServerEventTypeFunctionCallArgsDone, event.Type)
	assert.Equal(t, "call_987", event.CallID)
	assert.Equal(t, "verify_mobile_number", event.Name)
	assert.Equal(t, `{"mobile":"9876543210"}`, event.Arguments)
}

func TestDecodeErrorEvent(t *testing.T) {
	raw := `{
		"event_id": "event_1",
		"type": "error",
		"error": {"type": "invalid_request_error", "code": "invalid_value", "message": "bad session config"}
	}`

	var event ServerEvent
	require.NoError(t, sonic.UnmarshalString(raw, &event))

	assert.Equal(t, ServerEventTypeError, event.Type)
	require.NotNil(t, event.Error)
	assert.Equal(t, "invalid_value", event.Error.Code)
	assert.Equal(t, "bad session config", event.Error.Message)
}

func TestDecodeTranscriptEvents(t *testing.T) {
	raw := `{"type": "conversation.item.input_audio_transcription.completed", "item_id": "item_5", "transcript": "what is the weather in Pune"}`

	var event ServerEvent
	require.NoError(t, sonic.UnmarshalString(raw, &event))
	assert.Equal(t, ServerEventTypeInputTranscriptCompleted, event.Type)
	assert.Equal(t, "what is the weather in Pune", event.Transcript)
}

func TestEncodeFunctionCallOutput(t *testing.T) {
	event := ConversationItemCreateEvent{
		Type: ClientEventTypeConversationItemCreate,
		Item: FunctionCallOutputItem{
			Type:   "function_call_output",
			CallID: "call_987",
			Output: "The weather in Pune is Sunny +31°C.",
		},
	}

	encoded, err := sonic.MarshalString(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.UnmarshalString(encoded, &decoded))
	assert.Equal(t, "conversation.item.create", decoded["type"])

	item, ok := decoded["item"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function_call_output", item["type"])
	assert.Equal(t, "call_987", item["call_id"])
}

func TestEncodeSessionUpdateDeclaresTools(t *testing.T) {
	event := SessionUpdateEvent{
		Type: ClientEventTypeSessionUpdate,
		Session: SessionConfig{
			Instructions: "Be brief.",
			Voice:        "alloy",
			Modalities:   []string{"audio", "text"},
			ToolChoice:   "auto",
			Tools: []ToolDeclaration{{
				Type:        "function",
				Name:        "get_weather",
				Description: "Returns current weather conditions for a location.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"location": map[string]any{"type": "string"},
					},
				},
			}},
		},
	}

	encoded, err := sonic.MarshalString(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.UnmarshalString(encoded, &decoded))
	assert.Equal(t, "session.update", decoded["type"])

	session, ok := decoded["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "auto", session["tool_choice"])

	tools, ok := session["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "function", tool["type"])
	assert.Equal(t, "get_weather", tool["name"])
}
