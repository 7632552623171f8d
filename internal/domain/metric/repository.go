package metric

import "context"

// Source fetches the raw record set of one metric for a grouping dimension.
// Each call may fail independently of the others.
type Source interface {
	Fetch(ctx context.Context, kind Kind, dimension Dimension) ([]Record, error)
}

// SourceFunc adapts a plain function to Source
type SourceFunc func(ctx context.Context, kind Kind, dimension Dimension) ([]Record, error)

func (f SourceFunc) Fetch(ctx context.Context, kind Kind, dimension Dimension) ([]Record, error) {
	return f(ctx, kind, dimension)
}
