// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package whc implements the writer history cache contract (spec.md
// §4.4): a per-writer buffer of outgoing samples indexed by sequence
// number and key, supporting borrow/return for retransmission and
// acknowledgment-driven eviction. It is grounded on ddsi_whc.c's
// function set, reshaped into an idiomatic Go API (a struct with
// methods guarded by a mutex, rather than a vtable of C function
// pointers over an opaque handle).
package whc

import (
	"sync"
	"time"

	"github.com/luxfi/dds/qos"
	"github.com/luxfi/dds/retcode"
)

// SeqNo is a writer-local monotone sequence number; sequence numbers
// start at 1 and are never reused (spec.md §3, "WHC entry").
type SeqNo uint64

// Sample is one WHC entry: a tuple of sequence number, expiration
// instant, serialized payload, key bytes, and a borrow refcount.
type Sample struct {
	Seq       SeqNo
	ExpireAt  time.Time
	Payload   []byte
	Key       [16]byte
	borrows   int
	deferred  bool // evicted while borrowed; frees once borrows hits 0
}

// State reports the WHC's current extent, per get_state.
type State struct {
	MinSeq      SeqNo
	MaxSeq      SeqNo
	UnackedBytes int64
}

// BorrowedSample is a lent reference into the cache; it must be
// returned via Return before the entry can be freed.
type BorrowedSample struct {
	sample *Sample
}

func (b BorrowedSample) Seq() SeqNo       { return b.sample.Seq }
func (b BorrowedSample) Payload() []byte  { return b.sample.Payload }
func (b BorrowedSample) Key() [16]byte    { return b.sample.Key }

// WHC is a single writer's history cache.
type WHC struct {
	mu sync.Mutex

	history qos.HistoryValue
	limits  qos.ResourceLimitsValue

	byKey map[[16]byte][]*Sample // insertion order per key, oldest first
	order []*Sample              // global insertion order, by seq

	unackedBytes int64
	notify       *sync.Cond
}

// New creates an empty WHC governed by the writer's HISTORY and
// RESOURCE_LIMITS policies.
func New(history qos.HistoryValue, limits qos.ResourceLimitsValue) *WHC {
	w := &WHC{
		history: history,
		limits:  limits,
		byKey:   make(map[[16]byte][]*Sample),
	}
	w.notify = sync.NewCond(&w.mu)
	return w
}

// Insert adds a new sample, rejecting any seq not greater than the
// current maximum. If resource limits are exceeded, Insert blocks up
// to maxBlockingTime (a Reliability QoS value) before failing with
// ErrTimeout — honouring the "Resource-limits can force insert to
// block ... then fail with TIMEOUT" invariant.
func (w *WHC) Insert(seq SeqNo, expireAt time.Time, payload []byte, key [16]byte, maxBlockingTime time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) > 0 && seq <= w.order[len(w.order)-1].Seq {
		return retcode.ErrPreconditionNotMet
	}

	deadline := time.Now().Add(maxBlockingTime)
	for w.limitExceeded() {
		if maxBlockingTime <= 0 {
			return retcode.ErrTimeout
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return retcode.ErrTimeout
		}
		if !w.waitWithTimeout(remaining) {
			return retcode.ErrTimeout
		}
	}

	s := &Sample{Seq: seq, ExpireAt: expireAt, Payload: payload, Key: key}
	w.order = append(w.order, s)
	w.byKey[key] = append(w.byKey[key], s)
	w.unackedBytes += int64(len(payload))

	if w.history.Kind == qos.KeepLast {
		w.evictExcessForKey(key)
	}
	return nil
}

// limitExceeded reports whether RESOURCE_LIMITS.max_samples is set
// and already reached by live (non-deferred) samples, so that one more
// insert would exceed it.
func (w *WHC) limitExceeded() bool {
	if w.limits.MaxSamples == qos.LengthUnlimited {
		return false
	}
	live := 0
	for _, s := range w.order {
		if !s.deferred {
			live++
		}
	}
	return live >= int(w.limits.MaxSamples)
}

// waitWithTimeout waits on the insert-space condition for at most d,
// reporting whether it was woken (true) or timed out (false).
func (w *WHC) waitWithTimeout(d time.Duration) bool {
	timer := time.AfterFunc(d, func() {
		w.mu.Lock()
		w.notify.Broadcast()
		w.mu.Unlock()
	})
	defer timer.Stop()
	deadline := time.Now().Add(d)
	w.notify.Wait()
	return time.Now().Before(deadline)
}

// evictExcessForKey drops the oldest same-key samples beyond the
// configured KEEP_LAST depth, honouring active borrows via the
// deferred-free mechanism.
func (w *WHC) evictExcessForKey(key [16]byte) {
	entries := w.byKey[key]
	excess := len(entries) - int(w.history.Depth)
	for i := 0; i < excess; i++ {
		w.dropOrDefer(entries[i])
	}
	if excess > 0 {
		w.byKey[key] = append([]*Sample(nil), entries[excess:]...)
	}
}

func (w *WHC) dropOrDefer(s *Sample) {
	if s.borrows > 0 {
		s.deferred = true
		return
	}
	w.removeFromOrder(s)
}

func (w *WHC) removeFromOrder(s *Sample) {
	for i, e := range w.order {
		if e == s {
			w.order = append(w.order[:i], w.order[i+1:]...)
			w.unackedBytes -= int64(len(s.Payload))
			w.notify.Broadcast()
			return
		}
	}
}

// NextSeq returns the smallest stored sequence number strictly
// greater than seq, and whether one was found.
func (w *WHC) NextSeq(seq SeqNo) (SeqNo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.order {
		if s.Seq > seq {
			return s.Seq, true
		}
	}
	return 0, false
}

// BorrowSample lends the sample with the given seq without
// transferring ownership; it must be returned before the cache may
// evict it.
func (w *WHC) BorrowSample(seq SeqNo) (BorrowedSample, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.order {
		if s.Seq == seq {
			s.borrows++
			return BorrowedSample{sample: s}, true
		}
	}
	return BorrowedSample{}, false
}

// BorrowSampleKey lends the most recent sample matching key.
func (w *WHC) BorrowSampleKey(key [16]byte) (BorrowedSample, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entries := w.byKey[key]
	if len(entries) == 0 {
		return BorrowedSample{}, false
	}
	s := entries[len(entries)-1]
	s.borrows++
	return BorrowedSample{sample: s}, true
}

// Return relinquishes a borrow. If the sample was deferred for
// eviction and this was its last borrow, it is freed now.
func (w *WHC) Return(b BorrowedSample, updateRetransmitInfo bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := b.sample
	if s.borrows > 0 {
		s.borrows--
	}
	if s.deferred && s.borrows == 0 {
		w.removeFromOrder(s)
	}
	_ = updateRetransmitInfo // retransmit bookkeeping is a transport concern, out of scope here
}

// RemoveAckedMessages drops all samples with seq <= maxDropSeq whose
// history policy allows eviction (KEEP_ALL evicts freely up to the
// ack point; KEEP_LAST's per-key depth eviction already happened on
// insert). Borrowed entries are moved onto the caller-visible
// deferred-free list instead of being freed immediately.
func (w *WHC) RemoveAckedMessages(maxDropSeq SeqNo) (removed int, st State, deferredFreeList []*Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var kept []*Sample
	for _, s := range w.order {
		if s.Seq <= maxDropSeq {
			if s.borrows > 0 {
				s.deferred = true
				deferredFreeList = append(deferredFreeList, s)
				kept = append(kept, s)
				continue
			}
			removed++
			w.unackedBytes -= int64(len(s.Payload))
			w.removeFromKeyIndex(s)
			continue
		}
		kept = append(kept, s)
	}
	w.order = kept
	w.notify.Broadcast()
	return removed, w.stateLocked(), deferredFreeList
}

func (w *WHC) removeFromKeyIndex(s *Sample) {
	entries := w.byKey[s.Key]
	for i, e := range entries {
		if e == s {
			w.byKey[s.Key] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
}

// FreeDeferredFreeList releases entries that were deferred during
// RemoveAckedMessages and whose borrows have since all been returned.
func (w *WHC) FreeDeferredFreeList(list []*Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range list {
		if s.deferred && s.borrows == 0 {
			w.removeFromKeyIndex(s)
		}
	}
}

// SampleIter performs a non-destructive scan in sequence order,
// borrowing each entry in turn.
type SampleIter struct {
	whc *WHC
	pos int
}

func (w *WHC) SampleIterInit() *SampleIter { return &SampleIter{whc: w} }

// BorrowNext advances the iterator, borrowing the next sample. The
// caller must Return each borrowed sample.
func (it *SampleIter) BorrowNext() (BorrowedSample, bool) {
	it.whc.mu.Lock()
	defer it.whc.mu.Unlock()
	if it.pos >= len(it.whc.order) {
		return BorrowedSample{}, false
	}
	s := it.whc.order[it.pos]
	it.pos++
	s.borrows++
	return BorrowedSample{sample: s}, true
}

// GetState reports {min_seq, max_seq, unacked_bytes}.
func (w *WHC) GetState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *WHC) stateLocked() State {
	if len(w.order) == 0 {
		return State{}
	}
	return State{
		MinSeq:       w.order[0].Seq,
		MaxSeq:       w.order[len(w.order)-1].Seq,
		UnackedBytes: w.unackedBytes,
	}
}
