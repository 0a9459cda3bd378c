// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package whc

import (
	"testing"
	"time"

	"github.com/luxfi/dds/qos"
)

func keyed(b byte) [16]byte {
	var k [16]byte
	k[0] = b
	return k
}

// S4 from spec.md §8: KEEP_LAST(depth=2) retains only the last two
// same-key samples, and max-min seq equals 1.
func TestHistoryDepthEviction(t *testing.T) {
	w := New(qos.HistoryValue{Kind: qos.KeepLast, Depth: 2}, qos.ResourceLimitsValue{
		MaxSamples: qos.LengthUnlimited, MaxInstances: qos.LengthUnlimited, MaxSamplesPerInstance: qos.LengthUnlimited,
	})
	k := keyed(1)
	for i, v := range []string{"v1", "v2", "v3"} {
		if err := w.Insert(SeqNo(i+1), time.Time{}, []byte(v), k, 0); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	st := w.GetState()
	if st.MaxSeq-st.MinSeq != 1 {
		t.Fatalf("expected max-min seq == 1, got max=%v min=%v", st.MaxSeq, st.MinSeq)
	}
	it := w.SampleIterInit()
	var got []string
	for {
		b, ok := it.BorrowNext()
		if !ok {
			break
		}
		got = append(got, string(b.Payload()))
		w.Return(b, false)
	}
	if len(got) != 2 || got[0] != "v2" || got[1] != "v3" {
		t.Fatalf("expected [v2 v3], got %v", got)
	}
}

// Property 7: seq monotonicity — insert rejects seq <= current max.
func TestInsertRejectsNonIncreasingSeq(t *testing.T) {
	w := New(qos.HistoryValue{Kind: qos.KeepAll}, qos.ResourceLimitsValue{
		MaxSamples: qos.LengthUnlimited, MaxInstances: qos.LengthUnlimited, MaxSamplesPerInstance: qos.LengthUnlimited,
	})
	if err := w.Insert(1, time.Time{}, []byte("a"), keyed(1), 0); err != nil {
		t.Fatalf("insert 1: %v", err)
	}
	if err := w.Insert(1, time.Time{}, []byte("b"), keyed(1), 0); err == nil {
		t.Fatal("expected rejection of non-increasing seq")
	}
}

// Property 7: after remove_acked_messages(M), samples with seq <= M
// are no longer visible — except a still-borrowed entry, which stays
// borrowable until returned.
func TestRemoveAckedMessagesDefersBorrowedEntries(t *testing.T) {
	w := New(qos.HistoryValue{Kind: qos.KeepAll}, qos.ResourceLimitsValue{
		MaxSamples: qos.LengthUnlimited, MaxInstances: qos.LengthUnlimited, MaxSamplesPerInstance: qos.LengthUnlimited,
	})
	for i := 1; i <= 3; i++ {
		if err := w.Insert(SeqNo(i), time.Time{}, []byte("x"), keyed(byte(i)), 0); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	borrowed, ok := w.BorrowSample(1)
	if !ok {
		t.Fatal("expected to borrow seq 1")
	}

	removed, _, deferred := w.RemoveAckedMessages(2)
	if removed != 1 {
		t.Fatalf("expected 1 immediately removed (seq 2), got %d", removed)
	}
	if len(deferred) != 1 {
		t.Fatalf("expected 1 deferred entry, got %d", len(deferred))
	}

	again, ok := w.BorrowSample(1)
	if !ok {
		t.Fatal("deferred entry should still be borrowable until returned")
	}
	w.Return(again, false)
	w.Return(borrowed, false)

	w.FreeDeferredFreeList(deferred)
	if _, ok := w.BorrowSample(1); ok {
		t.Fatal("expected seq 1 freed after deferred borrow returned")
	}
}

// Resource limits force Insert to block then fail with TIMEOUT.
func TestInsertBlocksThenTimesOutOnResourceLimit(t *testing.T) {
	w := New(qos.HistoryValue{Kind: qos.KeepAll}, qos.ResourceLimitsValue{
		MaxSamples: 1, MaxInstances: qos.LengthUnlimited, MaxSamplesPerInstance: qos.LengthUnlimited,
	})
	if err := w.Insert(1, time.Time{}, []byte("a"), keyed(1), 0); err != nil {
		t.Fatalf("insert 1: %v", err)
	}
	start := time.Now()
	err := w.Insert(2, time.Time{}, []byte("b"), keyed(2), 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected TIMEOUT when resource limit exceeded")
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Fatal("expected Insert to actually block for roughly max_blocking_time")
	}
}
