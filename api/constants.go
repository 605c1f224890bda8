package api

// DefaultBaseURL is the hosted API endpoint. Point a client elsewhere with
// client.WithBaseURL for proxies and compatible servers.
const DefaultBaseURL = "https://api.openai.com/v1"

// Endpoint paths, relative to the base URL.
const (
	PathChatCompletions = "/chat/completions"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons reported per choice.
const (
	FinishStop          = "stop"
	FinishLength        = "length"
	FinishToolCalls     = "tool_calls"
	FinishContentFilter = "content_filter"
)

// Response format types.
const (
	FormatText       = "text"
	FormatJSONObject = "json_object"
	FormatJSONSchema = "json_schema"
)

// Object type markers on responses.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
)

// ToolTypeFunction is the only tool type the API defines today.
const ToolTypeFunction = "function"

// Tool choice modes. A specific function can be forced with a
// ToolChoiceFunction value instead.
const (
	ToolChoiceNone     = "none"
	ToolChoiceAuto     = "auto"
	ToolChoiceRequired = "required"
)
