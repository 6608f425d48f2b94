// Package chat carries NPC conversations to a remote text-generation
// service: the wire contract, per-NPC memory, the HTTP proxy handler, and
// the non-blocking client-side dialogue.
package chat

import "errors"

// ErrMissingCredential is returned when no provider API key is configured.
var ErrMissingCredential = errors.New("missing provider credential")

// FallbackReply is shown in place of a reply that failed or came back empty.
const FallbackReply = "..."

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body of POST /api/chat. Persona is a JSON-encoded Persona
// string.
type Request struct {
	AgentID  string    `json:"npcId"`
	Persona  string    `json:"personaSeed"`
	Messages []Message `json:"messages"`
}

// Response is a successful reply.
type Response struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of every failed chat call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error bodies.
const (
	ErrorMissingKey     = "Missing OPENAI_API_KEY"
	ErrorChatFailed     = "chat_failed"
	ErrorInvalidRequest = "invalid_request"
)
