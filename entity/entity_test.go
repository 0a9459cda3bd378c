// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package entity

import (
	"testing"
	"time"

	"github.com/luxfi/dds/qos"
)

func newTree(t *testing.T) (reg *Registry, participant, publisher, writer *Entity) {
	t.Helper()
	reg = NewRegistry()
	root := reg.NewEntity(KindRoot, nil, 0, qos.Default(), true)
	participant = reg.NewEntity(KindParticipant, root, 0, qos.Default(), true)
	publisher = reg.NewEntity(KindPublisher, participant, 0, qos.Default(), true)
	writer = reg.NewEntity(KindWriter, publisher, 0, qos.Default(), true)
	return
}

func TestGetParticipantClimbsThroughImplicitParent(t *testing.T) {
	_, participant, _, writer := newTree(t)
	if got := writer.GetParticipant(); got != participant {
		t.Fatalf("expected participant %v, got %v", participant.Handle(), got.Handle())
	}
}

func TestGetPublisherReturnsNearestAncestor(t *testing.T) {
	_, _, publisher, writer := newTree(t)
	if got := writer.GetPublisher(); got != publisher {
		t.Fatalf("expected publisher %v, got %v", publisher.Handle(), got.Handle())
	}
}

func TestDeleteRemovesEntireSubtree(t *testing.T) {
	reg, participant, publisher, writer := newTree(t)
	if err := reg.Delete(participant); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, h := range []Handle{participant.Handle(), publisher.Handle(), writer.Handle()} {
		if _, ok := reg.Lookup(h); ok {
			t.Fatalf("handle %v still registered after subtree delete", h)
		}
	}
}

func TestSetQoSRejectsImmutableChangeAfterEnable(t *testing.T) {
	reg := NewRegistry()
	e := reg.NewEntity(KindWriter, nil, 0, qos.Default(), true)
	newQ := e.QoS()
	newQ.Set(qos.Durability)
	newQ.DurabilityValue = qos.DurabilityValue{Kind: qos.TransientLocal}
	if err := e.SetQoS(newQ); err == nil {
		t.Fatal("expected IMMUTABLE_POLICY rejecting durability change on enabled entity")
	}
}

func TestSetQoSAllowsImmutableChangeWhileDisabled(t *testing.T) {
	reg := NewRegistry()
	e := reg.NewEntity(KindWriter, nil, 0, qos.Default(), false)
	newQ := e.QoS()
	newQ.Set(qos.Durability)
	newQ.DurabilityValue = qos.DurabilityValue{Kind: qos.TransientLocal}
	if err := e.SetQoS(newQ); err != nil {
		t.Fatalf("expected durability change to be allowed on disabled entity: %v", err)
	}
}

func TestStatusReadDoesNotClearTakeDoes(t *testing.T) {
	reg := NewRegistry()
	e := reg.NewEntity(KindWriter, nil, 0, qos.Default(), true)
	e.RaisePublicationMatched(42, 1)

	if got := e.ReadStatus(PublicationMatched); got != PublicationMatched {
		t.Fatalf("expected PublicationMatched set, got %v", got)
	}
	if got := e.ReadStatus(PublicationMatched); got != PublicationMatched {
		t.Fatal("read_status must not clear the mask")
	}
	if got := e.TakeStatus(PublicationMatched); got != PublicationMatched {
		t.Fatal("take_status should have returned the set bit")
	}
	if got := e.ReadStatus(PublicationMatched); got != 0 {
		t.Fatal("take_status should have cleared the mask")
	}
}

func TestListenerPropagatesToParticipantWhenChildSlotEmpty(t *testing.T) {
	reg, participant, _, writer := newTree(t)
	var invokedOn *Entity
	participant.SetListener(Listener{
		OnPublicationMatched: func(src *Entity, _ PublicationMatchedStatus) { invokedOn = src },
	}, PublicationMatched)

	writer.RaisePublicationMatched(7, 1)
	if invokedOn != writer {
		t.Fatalf("expected participant-level listener invoked with source=writer, got %v", invokedOn)
	}
	_ = reg
}

func TestListenerOnWriterItselfTakesPrecedence(t *testing.T) {
	_, participant, _, writer := newTree(t)
	participantInvoked := false
	writerInvoked := false
	participant.SetListener(Listener{
		OnPublicationMatched: func(*Entity, PublicationMatchedStatus) { participantInvoked = true },
	}, PublicationMatched)
	writer.SetListener(Listener{
		OnPublicationMatched: func(*Entity, PublicationMatchedStatus) { writerInvoked = true },
	}, PublicationMatched)

	writer.RaisePublicationMatched(7, 1)
	if !writerInvoked || participantInvoked {
		t.Fatalf("expected writer's own listener to take precedence, writer=%v participant=%v", writerInvoked, participantInvoked)
	}
}

func TestRaiseIncompatibleQoSUpdatesDistinctOfferedAndRequestedStatus(t *testing.T) {
	reg := NewRegistry()
	writer := reg.NewEntity(KindWriter, nil, 0, qos.Default(), true)
	reader := reg.NewEntity(KindReader, nil, 0, qos.Default(), true)

	writer.RaiseOfferedIncompatibleQoS(uint64(qos.Reliability))
	reader.RaiseRequestedIncompatibleQoS(uint64(qos.Reliability))

	if got := writer.status.offeredIncompatibleQoS.LastPolicyID; got != uint64(qos.Reliability) {
		t.Fatalf("expected writer's OfferedIncompatibleQoS.LastPolicyID=%v, got %v", qos.Reliability, got)
	}
	if writer.ReadStatus(OfferedIncompatibleQoS) != OfferedIncompatibleQoS {
		t.Fatal("expected writer's OfferedIncompatibleQoS status bit set")
	}
	if got := reader.status.requestedIncompatibleQoS.LastPolicyID; got != uint64(qos.Reliability) {
		t.Fatalf("expected reader's RequestedIncompatibleQoS.LastPolicyID=%v, got %v", qos.Reliability, got)
	}
	if reader.ReadStatus(RequestedIncompatibleQoS) != RequestedIncompatibleQoS {
		t.Fatal("expected reader's RequestedIncompatibleQoS status bit set")
	}
}

func TestWaitSetWakesOnGuardCondition(t *testing.T) {
	ws := NewWaitSet()
	g := NewGuardCondition()
	if err := ws.Attach(g, g); err != nil {
		t.Fatalf("attach: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := ws.Wait(time.Second)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	g.SetTriggerValue(true)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waitset did not wake on guard condition")
	}
}

func TestWaitSetRejectsDoubleAttach(t *testing.T) {
	ws := NewWaitSet()
	g := NewGuardCondition()
	if err := ws.Attach(g, g); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := ws.Attach(g, g); err == nil {
		t.Fatal("expected rejection of double attach")
	}
}

func TestWaitSetTimesOutWithNoTrigger(t *testing.T) {
	ws := NewWaitSet()
	if _, err := ws.Wait(20 * time.Millisecond); err == nil {
		t.Fatal("expected TIMEOUT with nothing attached and nothing triggered")
	}
}

func TestWaitSetDeleteWakesBlockedWaiters(t *testing.T) {
	ws := NewWaitSet()
	done := make(chan error, 1)
	go func() {
		_, err := ws.Wait(-1)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	ws.Delete()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error waking the blocked waiter on delete")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delete did not wake blocked waiter")
	}
}
