package domain

import "context"

// VectorEncoder turns texts into fixed-length embedding vectors. The same
// encoder (model and version) must be used at index time and query time;
// similarity scores across encoders are meaningless.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
