package lifecycle

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/errors"
	"github.com/vinayprograms/componentkit/events"
	"github.com/vinayprograms/componentkit/instance"
	"github.com/vinayprograms/componentkit/logging"
	"github.com/vinayprograms/componentkit/manifest"
	"github.com/vinayprograms/componentkit/registry"
)

// fixture holds one coordinator plus the shared recorder and runner its
// instances report into.
type fixture struct {
	coord  *Coordinator
	rec    *events.Recorder
	runner *instance.RecordingRunner
}

func newFixture() *fixture {
	quiet := logging.New()
	quiet.SetOutput(io.Discard)
	return &fixture{
		coord:  New(WithLogger(quiet)),
		rec:    events.NewRecorder(),
		runner: instance.NewRecordingRunner(),
	}
}

func (f *fixture) newInstance(t *testing.T, moniker string, opts ...instance.Option) *instance.Instance {
	t.Helper()
	base := []instance.Option{
		instance.WithDecl(&manifest.Decl{Name: lastSegment(moniker), Program: "test"}),
		instance.WithRunner(f.runner),
		instance.WithNotifier(f.rec),
	}
	inst, err := instance.New(moniker, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", moniker, err)
	}
	if err := inst.Bind(context.Background()); err != nil {
		t.Fatalf("Bind(%q) failed: %v", moniker, err)
	}
	return inst
}

func lastSegment(moniker string) string {
	for i := len(moniker) - 1; i >= 0; i-- {
		if moniker[i] == '/' {
			return moniker[i+1:]
		}
	}
	return moniker
}

// newTree builds and binds the tree a -> b -> {c, d}.
func (f *fixture) newTree(t *testing.T) (a, b, c, d *instance.Instance) {
	t.Helper()
	a = f.newInstance(t, "a")
	b = f.newInstance(t, "a/b")
	c = f.newInstance(t, "a/b/c")
	d = f.newInstance(t, "a/b/d")
	if err := a.AddChild("b", b); err != nil {
		t.Fatalf("AddChild(b) failed: %v", err)
	}
	if err := b.AddChild("c", c); err != nil {
		t.Fatalf("AddChild(c) failed: %v", err)
	}
	if err := b.AddChild("d", d); err != nil {
		t.Fatalf("AddChild(d) failed: %v", err)
	}
	return a, b, c, d
}

// eventIndex returns the position of the first event with the given type
// and moniker, or -1.
func eventIndex(evs []events.Event, typ events.Type, moniker string) int {
	for i, e := range evs {
		if e.Type == typ && e.Moniker == moniker {
			return i
		}
	}
	return -1
}

func TestShutdownStopsChildrenBeforeParent(t *testing.T) {
	f := newFixture()
	a, _, _, _ := f.newTree(t)

	if err := f.coord.ExecuteAction(context.Background(), a, action.Shutdown()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	for _, m := range []string{"a", "a/b", "a/b/c", "a/b/d"} {
		if got := f.runner.Stops(m); got != 1 {
			t.Errorf("Stops(%q) = %d, want 1", m, got)
		}
	}
	if !a.IsShutDown() || a.HasExecution() {
		t.Error("expected a shut down with no execution")
	}

	evs := f.rec.OfType(events.TypeStopped)
	iA := eventIndex(evs, events.TypeStopped, "a")
	iB := eventIndex(evs, events.TypeStopped, "a/b")
	iC := eventIndex(evs, events.TypeStopped, "a/b/c")
	iD := eventIndex(evs, events.TypeStopped, "a/b/d")
	if iC == -1 || iD == -1 || iB == -1 || iA == -1 {
		t.Fatalf("missing stopped events: %v", evs)
	}
	if iC > iB || iD > iB {
		t.Errorf("grandchildren stopped after their parent: c=%d d=%d b=%d", iC, iD, iB)
	}
	if iB > iA {
		t.Errorf("child stopped after root: b=%d a=%d", iB, iA)
	}
}

func TestShutdownSecondRegistrationShortCircuits(t *testing.T) {
	f := newFixture()
	a := f.newInstance(t, "a")

	ctx := context.Background()
	if err := f.coord.ExecuteAction(ctx, a, action.Shutdown()); err != nil {
		t.Fatalf("first shutdown failed: %v", err)
	}
	if err := f.coord.ExecuteAction(ctx, a, action.Shutdown()); err != nil {
		t.Fatalf("second shutdown failed: %v", err)
	}

	if got := f.runner.Stops("a"); got != 1 {
		t.Errorf("Stops = %d, want 1", got)
	}
	if got := len(f.rec.OfType(events.TypeStopped)); got != 1 {
		t.Errorf("stopped events = %d, want 1", got)
	}
}

// gateRunner delegates to an inner runner but holds Stop until the gate
// channel closes.
type gateRunner struct {
	inner *instance.RecordingRunner
	gate  chan struct{}
}

func (g *gateRunner) Start(ctx context.Context, inst *instance.Instance) (*instance.Execution, error) {
	return g.inner.Start(ctx, inst)
}

func (g *gateRunner) Stop(ctx context.Context, inst *instance.Instance) error {
	<-g.gate
	return g.inner.Stop(ctx, inst)
}

func (g *gateRunner) DestroyResources(ctx context.Context, inst *instance.Instance) error {
	return g.inner.DestroyResources(ctx, inst)
}

func TestRegisterJoinsOutstandingAction(t *testing.T) {
	f := newFixture()
	gr := &gateRunner{inner: f.runner, gate: make(chan struct{})}
	a := f.newInstance(t, "a", instance.WithRunner(gr))

	ctx := context.Background()
	n1, err := f.coord.RegisterAction(ctx, a, action.Shutdown())
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	n2, err := f.coord.RegisterAction(ctx, a, action.Shutdown())
	if err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	close(gr.gate)

	if err := n1.Wait(ctx); err != nil {
		t.Errorf("first waiter: %v", err)
	}
	if err := n2.Wait(ctx); err != nil {
		t.Errorf("second waiter: %v", err)
	}
	if got := f.runner.Stops("a"); got != 1 {
		t.Errorf("Stops = %d, want 1 for joined registrations", got)
	}
}

func TestCanceledWaiterDoesNotCancelAction(t *testing.T) {
	f := newFixture()
	gr := &gateRunner{inner: f.runner, gate: make(chan struct{})}
	a := f.newInstance(t, "a", instance.WithRunner(gr))

	notif, err := f.coord.RegisterAction(context.Background(), a, action.Shutdown())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := notif.Wait(ctx); err != context.Canceled {
		t.Fatalf("Wait = %v, want context.Canceled", err)
	}

	close(gr.gate)

	// The action ran to completion despite the abandoned wait; registering
	// again observes the shut-down state.
	if err := f.coord.ExecuteAction(context.Background(), a, action.Shutdown()); err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if got := f.runner.Stops("a"); got != 1 {
		t.Errorf("Stops = %d, want 1", got)
	}
}

func TestDeleteChildDestroysSubtree(t *testing.T) {
	f := newFixture()
	a, b, c, d := f.newTree(t)

	if err := f.coord.ExecuteAction(context.Background(), a, action.DeleteChild("b")); err != nil {
		t.Fatalf("delete child failed: %v", err)
	}

	if _, ok := a.Child("b"); ok {
		t.Error("b still in a's table")
	}
	if !b.IsDestroyed() || !c.IsDestroyed() || !d.IsDestroyed() {
		t.Error("expected b, c, d destroyed")
	}
	if got := f.runner.Stops("a"); got != 0 {
		t.Errorf("a stopped %d times during child delete, want 0", got)
	}

	evs := f.rec.Events()
	iDestB := eventIndex(evs, events.TypeDestroyed, "a/b")
	iDestC := eventIndex(evs, events.TypeDestroyed, "a/b/c")
	iDestD := eventIndex(evs, events.TypeDestroyed, "a/b/d")
	if iDestB == -1 || iDestC == -1 || iDestD == -1 {
		t.Fatalf("missing destroyed events: %v", evs)
	}
	if iDestC > iDestB || iDestD > iDestB {
		t.Errorf("grandchildren destroyed after b: c=%d d=%d b=%d", iDestC, iDestD, iDestB)
	}

	deleted := f.rec.OfType(events.TypeChildDeleted)
	if len(deleted) != 3 {
		t.Errorf("child_deleted events = %d, want 3", len(deleted))
	}
}

func TestDeleteAbsentChildIsNoOp(t *testing.T) {
	f := newFixture()
	a := f.newInstance(t, "a")
	f.rec.Reset()

	if err := f.coord.ExecuteAction(context.Background(), a, action.DeleteChild("ghost")); err != nil {
		t.Fatalf("delete absent child = %v, want nil", err)
	}
	if got := len(f.rec.Events()); got != 0 {
		t.Errorf("events = %d, want 0", got)
	}
	if f.runner.Stops("a") != 0 || f.runner.Destroys("a") != 0 {
		t.Error("runner primitives ran for an absent child")
	}
}

func TestDestroyErasesWholeTree(t *testing.T) {
	f := newFixture()
	a, _, _, _ := f.newTree(t)

	if err := f.coord.ExecuteAction(context.Background(), a, action.Destroy()); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	for _, m := range []string{"a", "a/b", "a/b/c", "a/b/d"} {
		if got := f.runner.Stops(m); got != 1 {
			t.Errorf("Stops(%q) = %d, want 1", m, got)
		}
		if got := f.runner.Destroys(m); got != 1 {
			t.Errorf("Destroys(%q) = %d, want 1", m, got)
		}
	}
	if a.NumChildren() != 0 {
		t.Errorf("a has %d children after destroy, want 0", a.NumChildren())
	}
	if !a.IsDestroyed() {
		t.Error("a not marked destroyed")
	}

	evs := f.rec.Events()
	// Everything stops before anything is destroyed from the root's point
	// of view: a's stop precedes every destruction.
	iStopA := eventIndex(evs, events.TypeStopped, "a")
	for _, m := range []string{"a", "a/b", "a/b/c", "a/b/d"} {
		if i := eventIndex(evs, events.TypeDestroyed, m); i < iStopA {
			t.Errorf("destroyed(%s)=%d before stopped(a)=%d", m, i, iStopA)
		}
	}
	iDestA := eventIndex(evs, events.TypeDestroyed, "a")
	iDestB := eventIndex(evs, events.TypeDestroyed, "a/b")
	iDestC := eventIndex(evs, events.TypeDestroyed, "a/b/c")
	iDestD := eventIndex(evs, events.TypeDestroyed, "a/b/d")
	if iDestC > iDestB || iDestD > iDestB || iDestB > iDestA {
		t.Errorf("destruction not bottom-up: c=%d d=%d b=%d a=%d", iDestC, iDestD, iDestB, iDestA)
	}
}

func TestDestroyAfterShutdownStopsOnce(t *testing.T) {
	f := newFixture()
	a := f.newInstance(t, "a")

	ctx := context.Background()
	if err := f.coord.ExecuteAction(ctx, a, action.Shutdown()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if err := f.coord.ExecuteAction(ctx, a, action.Destroy()); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	if got := f.runner.Stops("a"); got != 1 {
		t.Errorf("Stops = %d, want 1", got)
	}
	if got := f.runner.Destroys("a"); got != 1 {
		t.Errorf("Destroys = %d, want 1", got)
	}
}

func TestDestroyPartialFailureIsolatesSiblings(t *testing.T) {
	f := newFixture()
	a, b, _, d := f.newTree(t)
	f.runner.DestroyErr["a/b/c"] = fmt.Errorf("disk wedged")

	ctx := context.Background()
	err := f.coord.ExecuteAction(ctx, a, action.Destroy())
	if err == nil {
		t.Fatal("destroy succeeded despite failing grandchild")
	}
	if !errors.Is(err, errors.ErrCodeDestroyFailed) {
		t.Errorf("error code = %v, want DESTROY_FAILED", errors.Code(err))
	}

	// The healthy sibling was destroyed and removed; the failed child and
	// its ancestors remain.
	if !d.IsDestroyed() {
		t.Error("d not destroyed")
	}
	if _, ok := b.Child("d"); ok {
		t.Error("d still in b's table")
	}
	if _, ok := b.Child("c"); !ok {
		t.Error("c missing from b's table after failed destroy")
	}
	if _, ok := a.Child("b"); !ok {
		t.Error("b missing from a's table after failed destroy")
	}
	if f.runner.Destroys("a/b") != 0 || f.runner.Destroys("a") != 0 {
		t.Error("ancestors erased resources despite descendant failure")
	}

	// Clearing the fault and re-registering finishes the job.
	delete(f.runner.DestroyErr, "a/b/c")
	if err := f.coord.ExecuteAction(ctx, a, action.Destroy()); err != nil {
		t.Fatalf("retry destroy failed: %v", err)
	}
	if !a.IsDestroyed() || a.NumChildren() != 0 {
		t.Error("tree not fully erased after retry")
	}
	if got := f.runner.Stops("a/b/d"); got != 1 {
		t.Errorf("Stops(a/b/d) = %d after retry, want 1", got)
	}
}

func TestStopFailureLeavesStateForRetry(t *testing.T) {
	f := newFixture()
	a := f.newInstance(t, "a")
	f.runner.StopErr["a"] = fmt.Errorf("unresponsive")

	ctx := context.Background()
	err := f.coord.ExecuteAction(ctx, a, action.Shutdown())
	if !errors.Is(err, errors.ErrCodeStopFailed) {
		t.Fatalf("error = %v, want STOP_FAILED", err)
	}
	if a.IsShutDown() || !a.HasExecution() {
		t.Error("failed stop changed instance state")
	}

	delete(f.runner.StopErr, "a")
	if err := f.coord.ExecuteAction(ctx, a, action.Shutdown()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !a.IsShutDown() {
		t.Error("a not shut down after retry")
	}
	if got := f.runner.Stops("a"); got != 2 {
		t.Errorf("Stops = %d, want 2", got)
	}
}

func TestRegisterActionResolveFailure(t *testing.T) {
	f := newFixture()
	inst, err := instance.New("orphan")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = f.coord.RegisterAction(context.Background(), inst, action.Shutdown())
	if !errors.Is(err, errors.ErrCodeResolveFailed) {
		t.Errorf("error = %v, want RESOLVE_FAILED", err)
	}
}

func TestUnknownActionKindFails(t *testing.T) {
	f := newFixture()
	a := f.newInstance(t, "a")

	notif, err := f.coord.RegisterAction(context.Background(), a, action.Action{Kind: "defragment"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := notif.Wait(context.Background()); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("result = %v, want INTERNAL", err)
	}
}

func TestRegistryIntegration(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	defer reg.Close()

	f := newFixture()
	f.coord = New(WithLogger(f.coord.log), WithRegistry(reg))
	a := f.newInstance(t, "a")
	reg.Register(registry.InstanceInfo{ID: a.ID(), Moniker: "a", State: registry.StateRunning})

	ctx := context.Background()
	if err := f.coord.ExecuteAction(ctx, a, action.Shutdown()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	info, err := reg.Get("a")
	if err != nil {
		t.Fatalf("Get after shutdown: %v", err)
	}
	if info.State != registry.StateStopped {
		t.Errorf("state = %q, want stopped", info.State)
	}

	if err := f.coord.ExecuteAction(ctx, a, action.Destroy()); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	if _, err := reg.Get("a"); err != registry.ErrNotFound {
		t.Errorf("Get after destroy = %v, want ErrNotFound", err)
	}
}

func TestConcurrentSiblingShutdown(t *testing.T) {
	f := newFixture()
	root := f.newInstance(t, "root")
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("w%d", i)
		child := f.newInstance(t, "root/"+name)
		if err := root.AddChild(name, child); err != nil {
			t.Fatalf("AddChild(%s) failed: %v", name, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.coord.ExecuteAction(ctx, root, action.Shutdown()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	for i := 0; i < 8; i++ {
		m := fmt.Sprintf("root/w%d", i)
		if got := f.runner.Stops(m); got != 1 {
			t.Errorf("Stops(%q) = %d, want 1", m, got)
		}
	}
}
