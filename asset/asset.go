package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/geostamp/geostamp/config"
	"github.com/geostamp/geostamp/util/log"
)

// LoadError reports a failed fetch or decode of a remote asset. Callers are
// expected to substitute a placeholder; a decorative asset failing must never
// abort a composite.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading asset %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches and decodes remote bitmap assets (map tiles, flag and
// weather icons). Decoded images are kept in an LRU cache and concurrent
// requests for the same URL share a single in-flight fetch, so a resource is
// loaded at most once no matter how many composites ask for it.
type Loader struct {
	client  *http.Client
	cache   *lru.Cache[string, image.Image]
	group   singleflight.Group
	limiter *rate.Limiter
}

// NewLoader creates a Loader backed by the given HTTP client. A nil client
// gets a default with a bounded timeout.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: config.HTTPTimeoutSeconds * time.Second}
	}

	cache, err := lru.New[string, image.Image](config.AssetCacheSize)
	if err != nil {
		// Only possible with a non-positive size constant.
		panic(err)
	}

	return &Loader{
		client:  client,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(config.AssetFetchPerSecond), config.AssetFetchPerSecond),
	}
}

// LoadImage fetches and decodes the asset at url. It never retries; failures
// come back as a *LoadError.
func (l *Loader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	if img, ok := l.cache.Get(url); ok {
		return img, nil
	}

	v, err, _ := l.group.Do(url, func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have filled it.
		if img, ok := l.cache.Get(url); ok {
			return img, nil
		}

		img, err := l.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		l.cache.Add(url, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", config.AppName+"/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debugf("decoding %s failed: %v", url, err)
		return nil, &LoadError{URL: url, Err: fmt.Errorf("decoding image: %w", err)}
	}

	return img, nil
}

// Result is one slot of a batch load.
type Result struct {
	Image image.Image
	Err   error
}

// LoadAll fetches independent assets in parallel. Each slot fails on its
// own; a failed slot never cancels the others.
func (l *Loader) LoadAll(ctx context.Context, urls ...string) []Result {
	results := make([]Result, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		if url == "" {
			results[i] = Result{Err: &LoadError{URL: url, Err: fmt.Errorf("empty URL")}}
			continue
		}
		i, url := i, url
		g.Go(func() error {
			img, err := l.LoadImage(ctx, url)
			results[i] = Result{Image: img, Err: err}
			// Per-slot errors stay in the slot so one bad asset never
			// cancels its siblings.
			return nil
		})
	}
	g.Wait()

	return results
}
