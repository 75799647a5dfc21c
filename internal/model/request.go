package model

// ChatMessage is the {role, content} pair exchanged with the proxy and the
// upstream gateway.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat. The shape is not validated beyond
// JSON decoding; malformed messages surface as upstream failures.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}
