package entity

// EmbedRequest is the body of POST /embed on a text-embeddings-inference server.
type EmbedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}

// EmbedResponse is one vector per input, in input order.
type EmbedResponse [][]float32

// IndexDescription is the subset of the Pinecone describe-index reply we use.
type IndexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}
