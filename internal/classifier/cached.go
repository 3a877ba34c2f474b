package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/socialsent/internal/domain"
)

// sharedCallTimeout bounds an upstream call that several callers wait on.
const sharedCallTimeout = time.Minute

// CachedClassifier memoizes another classifier's output. Classifiers are
// deterministic, so a cached answer for the same model and text is exact.
type CachedClassifier struct {
	next  domain.Classifier
	cache domain.ClassificationCache
	model string
	group singleflight.Group
}

var _ domain.Classifier = (*CachedClassifier)(nil)

func NewCachedClassifier(next domain.Classifier, cache domain.ClassificationCache, model string) *CachedClassifier {
	return &CachedClassifier{next: next, cache: cache, model: model}
}

// Classify serves from cache when possible. Concurrent misses for the same
// text share one upstream call, which outlives any single caller's
// cancellation; a cancelled caller stops waiting and the others keep theirs.
func (c *CachedClassifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	key := CacheKey(c.model, text)

	if cached, ok := c.cache.Get(ctx, key); ok {
		return cached, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()

		result, err := c.next.Classify(callCtx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Set(callCtx, key, result)
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Classification{}, res.Err
		}
		return res.Val.(domain.Classification), nil
	case <-ctx.Done():
		return domain.Classification{}, ctx.Err()
	}
}

// CacheKey derives the cache key for a model and input text.
func CacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// WithCache wraps the classifier a factory builds in a CachedClassifier.
func WithCache(factory Factory, cache domain.ClassificationCache, model string) Factory {
	return func(ctx context.Context) (domain.Classifier, error) {
		c, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		return NewCachedClassifier(c, cache, model), nil
	}
}
