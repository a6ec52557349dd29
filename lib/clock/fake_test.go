// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowStandsStill(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if got := fake.Now(); !got.Equal(start) {
		t.Errorf("Now before Advance: got %v, want %v", got, start)
	}

	fake.Advance(90 * time.Second)

	want := start.Add(90 * time.Second)
	if got := fake.Now(); !got.Equal(want) {
		t.Errorf("Now after Advance: got %v, want %v", got, want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	ch := fake.After(5 * time.Second)

	select {
	case <-ch:
		t.Fatal("After fired before Advance")
	default:
	}

	fake.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(1 * time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("After did not fire at its deadline")
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))

	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
	if got := fake.PendingCount(); got != 0 {
		t.Errorf("pending waiters after After(0): got %d, want 0", got)
	}
}

func TestFakeSleepBlocksUntilAdvance(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))

	woke := make(chan struct{})
	go func() {
		fake.Sleep(2 * time.Second)
		close(woke)
	}()

	fake.WaitForTimers(1)
	select {
	case <-woke:
		t.Fatal("Sleep returned before Advance")
	default:
	}

	fake.Advance(2 * time.Second)
	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not wake after Advance")
	}
}

func TestFakeAdvanceFiresMultipleWaitersInOrder(t *testing.T) {
	t.Parallel()

	fake := Fake(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	first := fake.After(1 * time.Second)
	second := fake.After(3 * time.Second)

	fake.Advance(10 * time.Second)

	firstTime := <-first
	secondTime := <-second
	if firstTime.After(secondTime) {
		t.Errorf("waiters fired out of order: first=%v second=%v", firstTime, secondTime)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Errorf("pending waiters after firing all: got %d, want 0", got)
	}
}
