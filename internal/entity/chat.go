package entity

// ChatRequest is the message posted by the chat page as form field "msg".
type ChatRequest struct {
	Message string
}

// ChatResponse is returned by POST /get on success.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ReadinessResponse is returned by GET /ready.
type ReadinessResponse struct {
	Status string `json:"status"`
	Chain  bool   `json:"chain"`
}
