package algorithms

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound is returned when no algorithm matches a lookup
var ErrNotFound = errors.New("algorithm not found")

// Factory builds a producer from options
type Factory func(Options) Producer

// Registry maps slugs to producer factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	infos     []Info
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under the slug its producers report
func (r *Registry) Register(f Factory) error {
	info := f(Options{}).Info()
	if info.Slug == "" {
		return fmt.Errorf("algorithm '%s' has no slug", info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[info.Slug]; exists {
		return fmt.Errorf("algorithm '%s' is already registered", info.Slug)
	}
	r.factories[info.Slug] = f
	r.infos = append(r.infos, info)
	return nil
}

// MustRegister is Register for static catalogs
func (r *Registry) MustRegister(fs ...Factory) *Registry {
	for _, f := range fs {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// New builds the producer registered under slug
func (r *Registry) New(slug string, opts Options) (Producer, error) {
	r.mu.RLock()
	f, ok := r.factories[slug]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotFound, slug)
	}
	return f(opts), nil
}

// List returns algorithm metadata in registration order
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Info(nil), r.infos...)
}

// Find resolves a user query to one algorithm. Exact slug or name matches win,
// otherwise a unique partial match is accepted.
func (r *Registry) Find(query string) (Info, error) {
	infos := r.List()
	var matches []Info

	for _, info := range infos {
		if strings.EqualFold(info.Slug, query) || strings.EqualFold(info.Name, query) {
			matches = append(matches, info)
		}
	}

	if len(matches) == 0 {
		lower := strings.ToLower(query)
		for _, info := range infos {
			if strings.Contains(info.Slug, lower) || strings.Contains(strings.ToLower(info.Name), lower) {
				matches = append(matches, info)
			}
		}
	}

	if len(matches) == 0 {
		return Info{}, fmt.Errorf("%w: no algorithm matching '%s'", ErrNotFound, query)
	}

	if len(matches) > 1 {
		var slugs []string
		for _, match := range matches {
			slugs = append(slugs, match.Slug)
		}
		return Info{}, fmt.Errorf("multiple algorithms match '%s': %s", query, strings.Join(slugs, ", "))
	}

	return matches[0], nil
}

// Builtin returns a registry with the bundled catalog
func Builtin() *Registry {
	return NewRegistry().MustRegister(
		NewBubbleSort,
		NewSelectionSort,
		NewInsertionSort,
		NewMergeSort,
		NewQuickSort,
		NewBinarySearch,
		NewReverseArray,
		NewSlidingWindowMax,
		NewBFS,
		NewDFS,
		NewDijkstraGrid,
		NewFloodFill,
		NewLCS,
	)
}
