package entity

import "errors"

// Domain errors
var (
	// Startup errors
	ErrMissingCredential = errors.New("missing required environment variable")

	// Chain errors
	ErrChainNotReady     = errors.New("RAG chain not initialized")
	ErrEmptyCompletion   = errors.New("language model returned no completion")
	ErrEmbeddingMismatch = errors.New("embedding count does not match input count")
	ErrIndexHostNotFound = errors.New("vector index host not found")

	// Request errors
	ErrMissingMessage = errors.New("required form field is missing: msg")
)
