// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package dds

import (
	"testing"
	"time"

	"github.com/luxfi/dds/qos"
)

func TestCreateParticipantPublisherWriterTree(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	d := NewDomain(cfg, nil)

	p, err := d.CreateParticipant(DefaultQoS())
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}
	topic, err := d.CreateTopic(p, "Square", "ShapeType", DefaultQoS())
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	writer, _, err := d.CreateWriter(p, topic, DefaultQoS())
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if writer.GetParticipant() != p {
		t.Fatal("expected writer's participant to be p")
	}
	if writer.Parent().Kind() != KindPublisher {
		t.Fatalf("expected implicit publisher parent, got %v", writer.Parent().Kind())
	}
}

func TestMatchCompatibleReaderWriter(t *testing.T) {
	cfg, _ := DefaultConfig()
	d := NewDomain(cfg, nil)
	p, _ := d.CreateParticipant(DefaultQoS())
	topic, _ := d.CreateTopic(p, "Square", "ShapeType", DefaultQoS())
	writer, _, _ := d.CreateWriter(p, topic, DefaultQoS())
	reader, _ := d.CreateReader(p, topic, DefaultQoS())

	ok, reason := Match(reader, writer)
	if !ok {
		t.Fatalf("expected default QoS to match, failing reason=%v", reason)
	}
}

// S2 from spec.md §8: a reliable reader against a best-effort writer
// is incompatible, and both endpoints' *_INCOMPATIBLE_QOS status must
// reflect RELIABILITY as the failing policy.
func TestMatchIncompatibleReliabilityRaisesIncompatibleQoSStatus(t *testing.T) {
	cfg, _ := DefaultConfig()
	d := NewDomain(cfg, nil)
	p, _ := d.CreateParticipant(DefaultQoS())
	topic, _ := d.CreateTopic(p, "Square", "ShapeType", DefaultQoS())

	wq := DefaultQoS()
	wq.Set(qos.Reliability)
	wq.ReliabilityValue.Kind = qos.BestEffort
	writer, _, _ := d.CreateWriter(p, topic, wq)

	rq := DefaultQoS()
	rq.Set(qos.Reliability)
	rq.ReliabilityValue.Kind = qos.Reliable
	reader, _ := d.CreateReader(p, topic, rq)

	ok, reason := Match(reader, writer)
	if ok {
		t.Fatal("expected reliable reader vs best-effort writer to be incompatible")
	}
	if reason != qos.Reliability {
		t.Fatalf("expected failing policy RELIABILITY, got %v", reason)
	}
	if got := reader.ReadStatus(StatusRequestedIncompatibleQoS); got != StatusRequestedIncompatibleQoS {
		t.Fatal("expected reader's REQUESTED_INCOMPATIBLE_QOS status bit set")
	}
	if got := writer.ReadStatus(StatusOfferedIncompatibleQoS); got != StatusOfferedIncompatibleQoS {
		t.Fatal("expected writer's OFFERED_INCOMPATIBLE_QOS status bit set")
	}
}

func TestWaitUntilMatchedTimesOutWithNoPeer(t *testing.T) {
	cfg, _ := DefaultConfig()
	d := NewDomain(cfg, nil)
	p, _ := d.CreateParticipant(DefaultQoS())
	topic, _ := d.CreateTopic(p, "Square", "ShapeType", DefaultQoS())
	writer, _, _ := d.CreateWriter(p, topic, DefaultQoS())

	if err := WaitUntilMatched(writer, 20*time.Millisecond); err == nil {
		t.Fatal("expected timeout with no matched reader")
	}
}

func TestDeleteParticipantRemovesSubtree(t *testing.T) {
	cfg, _ := DefaultConfig()
	d := NewDomain(cfg, nil)
	p, _ := d.CreateParticipant(DefaultQoS())
	topic, _ := d.CreateTopic(p, "Square", "ShapeType", DefaultQoS())
	writer, _, _ := d.CreateWriter(p, topic, DefaultQoS())

	if err := d.Delete(p); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := d.Lookup(writer.Handle()); ok {
		t.Fatal("expected writer handle gone after participant delete")
	}
}
