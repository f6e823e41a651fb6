// Package preview serializes live preview composites so that only the most
// recently requested render ever reaches the visible surface. Composites are
// asynchronous and several may be in flight; each renders into a private
// offscreen buffer and is blitted only if its generation token is still
// current, otherwise the result is discarded silently.
package preview

import (
	"context"
	"image"
	"sync"

	"github.com/geostamp/geostamp/util"
	"github.com/geostamp/geostamp/util/log"
)

// CompositeFunc renders one preview into a fresh offscreen buffer.
type CompositeFunc func(ctx context.Context) (*image.RGBA, error)

// PresentFunc blits a finished buffer to the visible surface. It is never
// called concurrently and never called for a stale render.
type PresentFunc func(img *image.RGBA)

// Renderer owns the generation counter and the presentation lock.
type Renderer struct {
	gen     *util.SafeCounter
	mu      sync.Mutex // guards present
	present PresentFunc
}

// NewRenderer creates a Renderer presenting through the given callback.
func NewRenderer(present PresentFunc) *Renderer {
	return &Renderer{gen: util.NewSafeCounter(), present: present}
}

// Request starts an asynchronous preview composite. The returned channel
// yields nil when the render was presented, the render error, or
// ErrSuperseded when a newer request won.
func (r *Renderer) Request(ctx context.Context, composite CompositeFunc) <-chan error {
	token := r.gen.Increment()
	done := make(chan error, 1)

	go func() {
		img, err := composite(ctx)
		if err != nil {
			done <- err
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		if !r.gen.Current(token) {
			log.Debugf("discarding stale preview (token %d)", token)
			done <- ErrSuperseded
			return
		}

		r.present(img)
		done <- nil
	}()

	return done
}

// Invalidate bumps the generation so every in-flight render is discarded
// without starting a new one.
func (r *Renderer) Invalidate() {
	r.gen.Increment()
}
