// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package entity

import (
	"sync"
	"time"

	"github.com/luxfi/dds/retcode"
)

// SampleState / ViewState / InstanceState are the tri-state
// enumerations read/query conditions filter on (spec.md §4.3).
type SampleState int

const (
	SampleRead SampleState = 1 << iota
	SampleNotRead
)

type ViewState int

const (
	ViewNew ViewState = 1 << iota
	ViewNotNew
)

type InstanceState int

const (
	InstanceAlive InstanceState = 1 << iota
	InstanceNotAliveDisposed
	InstanceNotAliveNoWriters
)

// Condition is anything a WaitSet can attach and wait on.
type Condition interface {
	// Triggered reports whether the condition's predicate currently
	// holds.
	Triggered() bool
}

// GuardCondition is a manually-set boolean trigger.
type GuardCondition struct {
	mu      sync.Mutex
	trigger bool
	ws      []*WaitSet
}

func NewGuardCondition() *GuardCondition { return &GuardCondition{} }

func (g *GuardCondition) Triggered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.trigger
}

func (g *GuardCondition) SetTriggerValue(v bool) {
	g.mu.Lock()
	g.trigger = v
	waiters := append([]*WaitSet(nil), g.ws...)
	g.mu.Unlock()
	for _, w := range waiters {
		w.poke()
	}
}

func (g *GuardCondition) attach(w *WaitSet) { g.mu.Lock(); g.ws = append(g.ws, w); g.mu.Unlock() }

// ReadCondition holds (reader, mask); read/query conditions sharing a
// reader share its sample-state updates atomically (spec.md §4.3).
type ReadCondition struct {
	reader        *Entity
	sampleMask    SampleState
	viewMask      ViewState
	instanceMask  InstanceState
	hasMatch      func() bool // injected by the reader implementation
}

func NewReadCondition(reader *Entity, sm SampleState, vm ViewState, im InstanceState, hasMatch func() bool) *ReadCondition {
	return &ReadCondition{reader: reader, sampleMask: sm, viewMask: vm, instanceMask: im, hasMatch: hasMatch}
}

func (c *ReadCondition) Triggered() bool {
	if c.hasMatch == nil {
		return false
	}
	return c.hasMatch()
}

// QueryCondition additionally filters by a predicate over the sample.
type QueryCondition struct {
	ReadCondition
	Predicate func(sample any) bool
}

func NewQueryCondition(reader *Entity, sm SampleState, vm ViewState, im InstanceState, hasMatch func() bool, pred func(any) bool) *QueryCondition {
	return &QueryCondition{ReadCondition: *NewReadCondition(reader, sm, vm, im, hasMatch), Predicate: pred}
}

// entityCondition wraps an Entity so it satisfies Condition: it fires
// when any status bit in the interest mask given at attach time has a
// pending status change (spec.md: "entities ... fire when any enabled
// status bit in their mask is set").
type entityCondition struct {
	e        *Entity
	interest StatusMask
}

func (c entityCondition) Triggered() bool { return c.e.ReadStatus(c.interest) != 0 }

// WaitSet is an unordered set of attached conditions with attachment
// tokens (spec.md's "attached entities with attachment tokens").
type WaitSet struct {
	mu         sync.Mutex
	cond       *sync.Cond
	attached   map[any]Condition
	selfTriggered bool
	closed     bool
}

func NewWaitSet() *WaitSet {
	w := &WaitSet{attached: make(map[any]Condition)}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Attach adds a condition under token, which the caller chooses (an
// *Entity, *ReadCondition, *QueryCondition, or *GuardCondition).
// Attaching the same token twice is rejected.
func (w *WaitSet) Attach(token any, c Condition) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.attached[token]; exists {
		return retcode.ErrBadParameter
	}
	w.attached[token] = c
	if g, ok := c.(*GuardCondition); ok {
		g.attach(w)
	}
	return nil
}

// Detach removes a previously attached token.
func (w *WaitSet) Detach(token any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.attached[token]; !exists {
		return retcode.ErrPreconditionNotMet
	}
	delete(w.attached, token)
	return nil
}

// AttachEntity attaches e as a trigger-on-status condition.
func (w *WaitSet) AttachEntity(e *Entity, interest StatusMask) error {
	return w.Attach(e, entityCondition{e: e, interest: interest})
}

// SetTrigger sets the waitset's own self-trigger flag (spec.md: "a
// waitset attached to itself fires when its own trigger flag is set").
func (w *WaitSet) SetTrigger(v bool) {
	w.mu.Lock()
	w.selfTriggered = v
	w.mu.Unlock()
	w.poke()
}

func (w *WaitSet) poke() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// Wait blocks until at least one attached condition fires, or timeout
// elapses (0 means non-blocking, <0 means wait indefinitely).
func (w *WaitSet) Wait(timeout time.Duration) ([]Condition, error) {
	deadline := time.Now().Add(timeout)
	if timeout < 0 {
		deadline = time.Time{}
	}

	if timeout >= 0 {
		timer := time.AfterFunc(timeout, w.poke)
		defer timer.Stop()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		if w.closed {
			return nil, retcode.ErrAlreadyDeleted
		}
		fired := w.firedLocked()
		if len(fired) > 0 || w.selfTriggered {
			return fired, nil
		}
		if timeout == 0 {
			return nil, retcode.ErrTimeout
		}
		if timeout > 0 && !time.Now().Before(deadline) {
			return nil, retcode.ErrTimeout
		}
		w.cond.Wait()
		if timeout > 0 && !time.Now().Before(deadline) {
			fired = w.firedLocked()
			if len(fired) > 0 {
				return fired, nil
			}
			if w.closed {
				return nil, retcode.ErrAlreadyDeleted
			}
			return nil, retcode.ErrTimeout
		}
	}
}

func (w *WaitSet) firedLocked() []Condition {
	var out []Condition
	for _, c := range w.attached {
		if c.Triggered() {
			out = append(out, c)
		}
	}
	return out
}

// Delete wakes all blocked waiters with an error (spec.md: "Deleting a
// waitset while another thread is blocked in wait wakes all blockers
// with an error").
func (w *WaitSet) Delete() {
	w.mu.Lock()
	w.attached = nil
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
}
