package manifest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// Common errors.
var (
	// ErrNotFound indicates no declaration exists for the moniker.
	ErrNotFound = errors.New("declaration not found")
)

// Resolver loads the declaration for an instance. Resolution must succeed
// before any lifecycle action may be registered on the instance; the
// coordinator enforces this at its registration entry point.
type Resolver interface {
	// Resolve returns the declaration for the given moniker.
	Resolve(ctx context.Context, moniker string) (*Decl, error)
}

// ResolverFunc is a convenience type for simple resolver functions.
type ResolverFunc func(ctx context.Context, moniker string) (*Decl, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, moniker string) (*Decl, error) {
	return f(ctx, moniker)
}

// StaticResolver resolves declarations from an in-memory table.
// Suitable for testing and statically assembled trees.
type StaticResolver struct {
	mu    sync.RWMutex
	decls map[string]*Decl
}

// NewStaticResolver creates an empty static resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{decls: make(map[string]*Decl)}
}

// Add registers a declaration for a moniker, replacing any existing one.
func (r *StaticResolver) Add(moniker string, decl *Decl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decls[moniker] = decl
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(ctx context.Context, moniker string) (*Decl, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.decls[moniker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, moniker)
	}
	return decl, nil
}

// DirResolver resolves declarations from TOML files in a directory, one file
// per component, named <component>.toml. The component name is the last
// moniker segment.
type DirResolver struct {
	dir string
}

// NewDirResolver creates a resolver rooted at the given directory.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{dir: dir}
}

// Resolve implements Resolver.
func (r *DirResolver) Resolve(ctx context.Context, moniker string) (*Decl, error) {
	name := filepath.Base(moniker)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	decl, err := LoadFile(filepath.Join(r.dir, name+".toml"))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", moniker, err)
	}
	return decl, nil
}
