package embedding

// EmbeddingResponse carries a single embedding vector.
type EmbeddingResponse struct {
	Values []float32
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
