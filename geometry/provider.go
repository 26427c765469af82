package geometry

import (
	"fmt"
	"sync"

	"github.com/oomph-ac/dogfight/oerror"
)

// Provider resolves the collision geometry of an entity by key. Mesh loading lives behind this interface.
type Provider interface {
	Shape(key string) (*Shape, error)
}

// Library is an in-memory Provider.
type Library struct {
	mu     sync.RWMutex
	shapes map[string]*Shape
}

// NewLibrary creates a library holding the given shapes.
func NewLibrary(shapes ...*Shape) *Library {
	l := &Library{shapes: make(map[string]*Shape, len(shapes))}
	for _, s := range shapes {
		l.shapes[s.Key] = s
	}
	return l
}

// Register adds or replaces a shape.
func (l *Library) Register(s *Shape) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shapes[s.Key] = s
}

// Shape ...
func (l *Library) Shape(key string) (*Shape, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.shapes[key]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("shape %q: %w", key, oerror.ErrUnknownShape)
}
