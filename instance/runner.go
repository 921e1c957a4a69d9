package instance

import (
	"context"
	"sync"
	"time"
)

// Execution is the handle for an instance's started runtime environment.
// Its presence on an instance means the environment is currently running.
type Execution struct {
	// StartedAt is when the environment was bound.
	StartedAt time.Time

	// Program identifies what the environment is running.
	Program string
}

// Runner binds, stops, and erases an instance's runtime environment. The
// lifecycle coordinator treats these as opaque, possibly slow primitives;
// they are never called while an instance's lock is held.
type Runner interface {
	// Start binds the instance's runtime environment.
	Start(ctx context.Context, inst *Instance) (*Execution, error)

	// Stop stops the instance's runtime environment. Stopping an instance
	// whose environment was never started must succeed.
	Stop(ctx context.Context, inst *Instance) error

	// DestroyResources erases the instance's persistent and ephemeral
	// resources. Called only after the instance has shut down.
	DestroyResources(ctx context.Context, inst *Instance) error
}

// NopRunner is a Runner whose primitives all succeed without side effects.
// It is the default for instances assembled without a real environment.
type NopRunner struct{}

// Start implements Runner.
func (NopRunner) Start(ctx context.Context, inst *Instance) (*Execution, error) {
	return &Execution{StartedAt: time.Now()}, nil
}

// Stop implements Runner.
func (NopRunner) Stop(ctx context.Context, inst *Instance) error {
	return nil
}

// DestroyResources implements Runner.
func (NopRunner) DestroyResources(ctx context.Context, inst *Instance) error {
	return nil
}

// RecordingRunner is a Runner that counts its invocations per moniker.
// Intended for tests that assert how often each primitive ran.
type RecordingRunner struct {
	mu       sync.Mutex
	stops    map[string]int
	destroys map[string]int
	starts   map[string]int

	// StopErr and DestroyErr, when set for a moniker, are returned by the
	// corresponding primitive.
	StopErr    map[string]error
	DestroyErr map[string]error
}

// NewRecordingRunner creates an empty recording runner.
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{
		stops:      make(map[string]int),
		destroys:   make(map[string]int),
		starts:     make(map[string]int),
		StopErr:    make(map[string]error),
		DestroyErr: make(map[string]error),
	}
}

// Start implements Runner.
func (r *RecordingRunner) Start(ctx context.Context, inst *Instance) (*Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts[inst.Moniker()]++
	return &Execution{StartedAt: time.Now()}, nil
}

// Stop implements Runner.
func (r *RecordingRunner) Stop(ctx context.Context, inst *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops[inst.Moniker()]++
	return r.StopErr[inst.Moniker()]
}

// DestroyResources implements Runner.
func (r *RecordingRunner) DestroyResources(ctx context.Context, inst *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroys[inst.Moniker()]++
	return r.DestroyErr[inst.Moniker()]
}

// Stops returns how many times Stop ran for the moniker.
func (r *RecordingRunner) Stops(moniker string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops[moniker]
}

// Destroys returns how many times DestroyResources ran for the moniker.
func (r *RecordingRunner) Destroys(moniker string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroys[moniker]
}

// Starts returns how many times Start ran for the moniker.
func (r *RecordingRunner) Starts(moniker string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts[moniker]
}
