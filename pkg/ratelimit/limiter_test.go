package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWindowAllow(t *testing.T) {
	w := NewWindow(3, time.Second)

	base := time.Now()
	clock := base
	w.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if !w.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if w.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	// Advancing past the window frees all three slots.
	clock = base.Add(time.Second + time.Millisecond)
	if !w.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	w.Reset()
	if len(w.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestWindowRollingBoundary(t *testing.T) {
	w := NewWindow(2, time.Second)

	base := time.Now()
	clock := base
	w.now = func() time.Time { return clock }

	if !w.Allow() {
		t.Fatal("first request should be admitted")
	}

	clock = base.Add(600 * time.Millisecond)
	if !w.Allow() {
		t.Fatal("second request should be admitted")
	}

	// 900ms: the first admission is still inside the rolling second.
	clock = base.Add(900 * time.Millisecond)
	if w.Allow() {
		t.Error("third request within the rolling window should be denied")
	}

	// 1.1s: only the first admission has expired, so exactly one slot frees.
	clock = base.Add(1100 * time.Millisecond)
	if !w.Allow() {
		t.Error("slot should free once the oldest admission expires")
	}
	if w.Allow() {
		t.Error("second slot should still be occupied")
	}
}

func TestWindowNeverExceedsBudget(t *testing.T) {
	const (
		budget = 5
		window = 100 * time.Millisecond
	)
	w := NewWindow(budget, window)

	var (
		mu       sync.Mutex
		admitted []time.Time
		wg       sync.WaitGroup
		deadline = time.Now().Add(350 * time.Millisecond)
	)

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				if w.Allow() {
					mu.Lock()
					admitted = append(admitted, time.Now())
					mu.Unlock()
				} else {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()

	if len(admitted) == 0 {
		t.Fatal("no requests admitted")
	}

	// Every rolling window across the admission log must hold the budget.
	// The recorded timestamps lag the admission instants slightly, so
	// allow a scheduling skew margin when pairing them.
	const skew = 5 * time.Millisecond
	for i := range admitted {
		count := 1
		for j := i + 1; j < len(admitted); j++ {
			if admitted[j].Sub(admitted[i]) < window-skew {
				count++
			}
		}
		if count > budget {
			t.Fatalf("window starting at admission %d held %d admissions, budget is %d", i, count, budget)
		}
	}
}

func TestWindowWait(t *testing.T) {
	w := NewWindow(1, 50*time.Millisecond)

	ctx := context.Background()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("first Wait returned %v", err)
	}

	start := time.Now()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("second Wait returned %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second Wait returned after %v, expected to block close to the window size", elapsed)
	}
}

func TestWindowWaitCancelled(t *testing.T) {
	w := NewWindow(1, time.Hour)

	if !w.Allow() {
		t.Fatal("first request should be admitted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Wait(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("Wait should surface the cancellation")
		}
	case <-time.After(time.Second):
		t.Error("Wait did not return after cancellation")
	}
}
