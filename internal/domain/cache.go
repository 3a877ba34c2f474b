package domain

import "context"

// ClassificationCache stores classifier outputs by key. Implementations treat
// their own failures as misses.
type ClassificationCache interface {
	Get(ctx context.Context, key string) (Classification, bool)
	Set(ctx context.Context, key string, c Classification)
}
