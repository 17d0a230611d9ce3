package models

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"user_id"`
}

// ChatResponse is the reply envelope of the chat endpoint.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Intent   string `json:"intent,omitempty"`
}

// AIStatus describes the configured language model provider.
type AIStatus struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}
