package param

import "context"

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(context.Context, string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}
