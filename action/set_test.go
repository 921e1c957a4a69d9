package action

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegisterDeduplicates(t *testing.T) {
	set := NewSet()

	n1, dispatch1 := set.Register(Destroy())
	if !dispatch1 {
		t.Fatal("first registration should need dispatch")
	}

	n2, dispatch2 := set.Register(Destroy())
	if dispatch2 {
		t.Fatal("second registration of equal action should not need dispatch")
	}

	if n1.status != n2.status {
		t.Fatal("both notifications should share one status")
	}

	want := errors.New("boom")
	set.Finish(Destroy(), want)

	ctx := context.Background()
	if err := n1.Wait(ctx); err != want {
		t.Errorf("n1.Wait() = %v, want %v", err, want)
	}
	if err := n2.Wait(ctx); err != want {
		t.Errorf("n2.Wait() = %v, want %v", err, want)
	}
}

func TestDistinctActionsAreIndependent(t *testing.T) {
	set := NewSet()

	_, d1 := set.Register(DeleteChild("a"))
	_, d2 := set.Register(DeleteChild("b"))
	_, d3 := set.Register(Shutdown())

	if !d1 || !d2 || !d3 {
		t.Fatal("distinct actions should each need dispatch")
	}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	set.Finish(DeleteChild("a"), nil)
	if set.Has(DeleteChild("a")) {
		t.Error("finished action should leave the set")
	}
	if !set.Has(DeleteChild("b")) || !set.Has(Shutdown()) {
		t.Error("unrelated actions should remain outstanding")
	}
}

func TestFinishAbsentIsNoOp(t *testing.T) {
	set := NewSet()

	// Finishing an action that was never registered must be tolerated.
	set.Finish(Shutdown(), nil)

	// Double finish must be tolerated too.
	n, _ := set.Register(Shutdown())
	set.Finish(Shutdown(), nil)
	set.Finish(Shutdown(), errors.New("late"))

	if err := n.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want nil (first finish wins)", err)
	}
}

func TestNoMissedCompletion(t *testing.T) {
	set := NewSet()

	// Never wait before finish; the result must still be observable after.
	n, _ := set.Register(Destroy())
	want := errors.New("failed")
	set.Finish(Destroy(), want)

	if err := n.Wait(context.Background()); err != want {
		t.Errorf("Wait() after finish = %v, want %v", err, want)
	}

	if err, done := n.Result(); !done || err != want {
		t.Errorf("Result() = (%v, %v), want (%v, true)", err, done, want)
	}
}

func TestManyConcurrentWaiters(t *testing.T) {
	set := NewSet()
	n, _ := set.Register(Shutdown())

	const waiters = 32
	results := make([]error, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = n.Wait(context.Background())
		}(i)
	}

	// Give the waiters a moment to block before completing.
	time.Sleep(10 * time.Millisecond)
	set.Finish(Shutdown(), nil)
	wg.Wait()

	for i, err := range results {
		if err != nil {
			t.Errorf("waiter %d got %v, want nil", i, err)
		}
	}
}

func TestReregisterAfterFinishRunsAgain(t *testing.T) {
	set := NewSet()

	_, dispatch := set.Register(Destroy())
	if !dispatch {
		t.Fatal("first registration should need dispatch")
	}
	set.Finish(Destroy(), nil)

	_, dispatch = set.Register(Destroy())
	if !dispatch {
		t.Fatal("registration after finish should need dispatch again")
	}
}

func TestWaitRespectsContext(t *testing.T) {
	set := NewSet()
	n, _ := set.Register(Destroy())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := n.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}

	// Cancellation must not affect the action itself.
	if !set.Has(Destroy()) {
		t.Error("action should still be outstanding after a caller stops waiting")
	}
	set.Finish(Destroy(), nil)
	if err := n.Wait(context.Background()); err != nil {
		t.Errorf("Wait() after finish = %v, want nil", err)
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Shutdown(), "shutdown"},
		{Destroy(), "destroy"},
		{DeleteChild("logger"), "delete_child(logger)"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
