// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package qos

import "testing"

func defaultPair(topic, typ string) (QoS, QoS) {
	r := Default()
	r.Set(TopicName)
	r.TopicNameValue = topic
	r.Set(TypeName)
	r.TypeNameValue = typ
	r.Set(Reliability)
	r.Set(Durability)
	r.Set(Presentation)
	r.Set(Deadline)
	r.Set(LatencyBudget)
	r.Set(Ownership)
	r.Set(Liveliness)
	r.Set(DestinationOrder)
	r.Set(Partition)
	r.Set(DataRepresentation)
	w := r
	w.PartitionValue = append([]string(nil), r.PartitionValue...)
	w.DataRepresentationValue = append([]int32(nil), r.DataRepresentationValue...)
	return r, w
}

// S1 from spec.md §8: default QoS on matching topic/type names compatible.
func TestMatchDefaultQoSCompatible(t *testing.T) {
	r, w := defaultPair("Square", "ShapeType")
	if reason := Match(&r, &w, RXOMask|TopicName|Partition|DataRepresentation); reason != ReasonNone {
		t.Fatalf("expected match, got failing reason %v", reason)
	}
}

// S2 from spec.md §8: reliable reader vs best-effort writer is incompatible.
func TestMatchReliabilityMismatch(t *testing.T) {
	r, w := defaultPair("Square", "ShapeType")
	r.ReliabilityValue.Kind = Reliable
	w.ReliabilityValue.Kind = BestEffort
	reason := Match(&r, &w, RXOMask|TopicName|Partition|DataRepresentation)
	if reason != Reliability {
		t.Fatalf("expected Reliability mismatch, got %v", reason)
	}
}

func TestMatchTopicNameMismatch(t *testing.T) {
	r, w := defaultPair("A", "T")
	w.TopicNameValue = "B"
	if reason := Match(&r, &w, RXOMask|TopicName); reason != TopicName {
		t.Fatalf("expected TopicName mismatch, got %v", reason)
	}
}

// Testable property 2: determinism.
func TestMatchDeterministic(t *testing.T) {
	r, w := defaultPair("A", "T")
	first := Match(&r, &w, RXOMask|TopicName|Partition|DataRepresentation)
	for i := 0; i < 5; i++ {
		if got := Match(&r, &w, RXOMask|TopicName|Partition|DataRepresentation); got != first {
			t.Fatalf("nondeterministic match result: %v vs %v", first, got)
		}
	}
}

// Testable property 3: ownership and partition matching are symmetric.
func TestMatchOwnershipSymmetric(t *testing.T) {
	a, b := Default(), Default()
	a.Set(Ownership)
	b.Set(Ownership)
	a.OwnershipValue = Exclusive
	b.OwnershipValue = Shared
	if (Match(&a, &b, Ownership) == ReasonNone) != (Match(&b, &a, Ownership) == ReasonNone) {
		t.Fatal("ownership match is not symmetric")
	}
}

// Testable property 10: partition wildcard semantics.
func TestPartitionWildcards(t *testing.T) {
	cases := []struct {
		reader, writer []string
		want           bool
	}{
		{[]string{"A*"}, []string{"Anything"}, true},
		{[]string{"A*"}, []string{"A*"}, true},
		{[]string{"A*"}, []string{"B*"}, false},
		{nil, []string{"X"}, false},
		{[]string{"X"}, nil, false},
		{nil, nil, true},
	}
	for _, c := range cases {
		if got := partitionsMatch(c.reader, c.writer); got != c.want {
			t.Errorf("partitionsMatch(%v,%v) = %v, want %v", c.reader, c.writer, got, c.want)
		}
	}
}

// Testable property 1: copy/merge laws.
func TestCopyDeltaZero(t *testing.T) {
	a := Default()
	a.Set(UserData)
	a.UserDataValue = []byte("hi")
	var b QoS
	Copy(&b, &a)
	if d := Delta(&a, &b, ^PolicyID(0)); d != 0 {
		t.Fatalf("expected zero delta after copy, got %v", d)
	}
	if b.Aliased != 0 {
		t.Fatalf("copy must drop aliased bits, got %v", b.Aliased)
	}
}

func TestMergeMissingLeavesPresentUntouched(t *testing.T) {
	dst := Default()
	dst.Set(Deadline)
	dst.DeadlineValue = 5
	src := Default()
	src.Set(Deadline)
	src.DeadlineValue = 9
	src.Set(LatencyBudget)
	src.LatencyBudgetValue = 3

	MergeMissing(&dst, &src, Deadline|LatencyBudget)
	if dst.DeadlineValue != 5 {
		t.Fatalf("merge_missing must not overwrite already-present policy, got %v", dst.DeadlineValue)
	}
	if !dst.IsSet(LatencyBudget) || dst.LatencyBudgetValue != 3 {
		t.Fatalf("merge_missing must fill previously-absent policy")
	}
}

func TestDeltaSelfIsZero(t *testing.T) {
	a := Default()
	a.Set(History)
	if d := Delta(&a, &a, ^PolicyID(0)); d != 0 {
		t.Fatalf("delta(a,a,mask) must be 0, got %v", d)
	}
}

func TestValidateHistoryKeepLastRequiresDepth(t *testing.T) {
	q := Default()
	q.Set(History)
	q.HistoryValue = HistoryValue{Kind: KeepLast, Depth: 0}
	if err := Validate(&q); err == nil {
		t.Fatal("expected error for KEEP_LAST depth 0")
	}
}

func TestValidateResourceLimitsVsHistoryDepth(t *testing.T) {
	q := Default()
	q.Set(History)
	q.HistoryValue = HistoryValue{Kind: KeepLast, Depth: 5}
	q.Set(ResourceLimits)
	q.ResourceLimitsValue = ResourceLimitsValue{MaxSamples: LengthUnlimited, MaxInstances: LengthUnlimited, MaxSamplesPerInstance: 2}
	if err := Validate(&q); err == nil {
		t.Fatal("expected BAD_PARAMETER when max-samples-per-instance < history depth")
	}
}

func TestCheckImmutable(t *testing.T) {
	if err := CheckImmutable(Deadline | Partition); err != nil {
		t.Fatalf("deadline/partition should be changeable: %v", err)
	}
	if err := CheckImmutable(Durability); err == nil {
		t.Fatal("durability must be immutable after enable")
	}
}
