// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package builtintopic

import (
	"testing"

	"github.com/luxfi/dds/entity"
)

func TestNewGUIDIsUniqueAndNonZero(t *testing.T) {
	a, b := NewGUID(), NewGUID()
	var zero GUID
	if a == zero || b == zero {
		t.Fatal("expected non-zero GUIDs")
	}
	if a == b {
		t.Fatal("expected distinct GUIDs across calls")
	}
}

func TestMatchedSubscriptionsRoundTrip(t *testing.T) {
	d := NewDirectory()
	writer := entity.Handle(10)
	reader := NewGUID()
	d.PutSubscription(SubscriptionBuiltinTopicData{Key: reader, TopicName: "Square"})
	d.RecordMatch(writer, reader, true)

	matched := d.GetMatchedSubscriptions(writer)
	if len(matched) != 1 || matched[0] != reader {
		t.Fatalf("expected [reader], got %v", matched)
	}

	data, ok := d.GetMatchedSubscriptionData(writer, reader)
	if !ok || data.TopicName != "Square" {
		t.Fatalf("expected matched subscription data, got %+v ok=%v", data, ok)
	}
}

func TestGetMatchedSubscriptionDataRejectsUnmatchedPeer(t *testing.T) {
	d := NewDirectory()
	writer := entity.Handle(1)
	stranger := NewGUID()
	d.PutSubscription(SubscriptionBuiltinTopicData{Key: stranger})
	if _, ok := d.GetMatchedSubscriptionData(writer, stranger); ok {
		t.Fatal("expected lookup to fail for a peer never recorded as matched")
	}
}

func TestPseudoHandlesAreNegativeAndDistinct(t *testing.T) {
	handles := []entity.Handle{PseudoHandleParticipant, PseudoHandleTopic, PseudoHandlePublication, PseudoHandleSubscription}
	seen := make(map[entity.Handle]bool)
	for _, h := range handles {
		if h >= 0 {
			t.Fatalf("expected negative pseudo-handle, got %v", h)
		}
		if seen[h] {
			t.Fatalf("duplicate pseudo-handle %v", h)
		}
		seen[h] = true
	}
}
