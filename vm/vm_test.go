// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"reflect"
	"testing"
)

type point struct {
	ID   int32
	Name string
	Tags []int32
}

func pointDescriptor() *TypeDescriptor {
	b := NewBuilder()
	b.ADR(Type4Byte, 0, FlagKey, 0)
	b.ADR(TypeStr, 0, 0, 1)
	b.ADR(TypeSeq, Type4Byte, 0, 2)
	b.RTS()
	return &TypeDescriptor{
		TypeName: "point",
		Ops:      b.Program(),
		Keys:     []KeyDescriptor{{Name: "ID", Field: 0, Index: 0}},
		Flags:    FlagFixedKey,
	}
}

// Testable property 8: serialize/deserialize is a round trip.
func TestSerializeDeserializeRoundTrip(t *testing.T) {
	d := pointDescriptor()
	in := point{ID: 42, Name: "square", Tags: []int32{1, 2, 3}}

	data, err := Serialize(d, reflect.ValueOf(in), XCDR2)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	var out point
	if err := Deserialize(d, data, reflect.ValueOf(&out)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

// Testable property 9: fixed-size keys serialize directly, without MD5.
func TestHashKeyFixedSizeIsDirect(t *testing.T) {
	d := pointDescriptor()
	in := point{ID: 7}
	hash, err := HashKey(d, reflect.ValueOf(in))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	var want [16]byte
	want[0] = 7 // little-endian int32(7)
	if hash != want {
		t.Fatalf("expected direct key bytes %v, got %v", want, hash)
	}
}

// Scenario S3 from spec.md §8: oversized bounded string fails serialization.
func TestSerializeBoundedStringTooLarge(t *testing.T) {
	b := NewBuilder()
	b.ADRBound(TypeBStr, 0, 0, 0, 4)
	b.RTS()
	d := &TypeDescriptor{Ops: b.Program()}

	type s struct{ Name string }
	_, err := Serialize(d, reflect.ValueOf(s{Name: "toolong"}), XCDR1)
	if err == nil {
		t.Fatal("expected SAMPLE_TOO_LARGE for bounded string overflow")
	}
}

func TestHashKeyFallsBackToMD5WhenNotFixed(t *testing.T) {
	d := pointDescriptor()
	d.Flags = 0 // no longer promises a fixed-size key
	in := point{ID: 7}
	hash, err := HashKey(d, reflect.ValueOf(in))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	var direct [16]byte
	direct[0] = 7
	if hash == direct {
		t.Fatal("expected MD5 digest, not raw key bytes, when fixed-key flags are unset")
	}
}

type shape struct {
	Kind   int32
	Side   int32
	Label  string
}

func shapeDescriptor() *TypeDescriptor {
	b := NewBuilder()
	b.Union(Type4Byte, 0, 0, []UnionCase{
		{Type: Type4Byte, Disc: 0, FieldIndex: 1},
		{Type: TypeStr, Disc: 1, FieldIndex: 2},
	})
	b.RTS()
	return &TypeDescriptor{TypeName: "shape", Ops: b.Program()}
}

// Testable property: JEQ4 union dispatch round-trips each case.
func TestSerializeDeserializeUnionRoundTrip(t *testing.T) {
	d := shapeDescriptor()

	square := shape{Kind: 0, Side: 7}
	data, err := Serialize(d, reflect.ValueOf(square), XCDR2)
	if err != nil {
		t.Fatalf("serialize square case: %v", err)
	}
	var outSquare shape
	if err := Deserialize(d, data, reflect.ValueOf(&outSquare)); err != nil {
		t.Fatalf("deserialize square case: %v", err)
	}
	if outSquare.Kind != 0 || outSquare.Side != 7 || outSquare.Label != "" {
		t.Fatalf("square case round trip mismatch: got %+v", outSquare)
	}

	labeled := shape{Kind: 1, Label: "north"}
	data, err = Serialize(d, reflect.ValueOf(labeled), XCDR2)
	if err != nil {
		t.Fatalf("serialize label case: %v", err)
	}
	var outLabeled shape
	if err := Deserialize(d, data, reflect.ValueOf(&outLabeled)); err != nil {
		t.Fatalf("deserialize label case: %v", err)
	}
	if outLabeled.Kind != 1 || outLabeled.Label != "north" || outLabeled.Side != 0 {
		t.Fatalf("label case round trip mismatch: got %+v", outLabeled)
	}
}

func TestDeepFreeResetsOwnedFields(t *testing.T) {
	v := point{ID: 1, Name: "x", Tags: []int32{1, 2}}
	rv := reflect.ValueOf(&v).Elem()
	DeepFree(&TypeDescriptor{}, rv, FreeAll)
	if v.Name != "" || v.Tags != nil {
		t.Fatalf("expected owned fields cleared, got %+v", v)
	}
}

type keyedSample struct {
	Key  string
	Name string
	Tags []int32
}

func keyedSampleDescriptor() *TypeDescriptor {
	return &TypeDescriptor{
		TypeName: "keyedSample",
		Keys:     []KeyDescriptor{{Name: "Key", Field: 0, Index: 0}},
	}
}

func TestDeepFreeContentsOnlyPreservesKeyField(t *testing.T) {
	d := keyedSampleDescriptor()
	v := keyedSample{Key: "k1", Name: "x", Tags: []int32{1, 2}}
	rv := reflect.ValueOf(&v).Elem()
	DeepFree(d, rv, FreeContentsOnly)
	if v.Key != "k1" {
		t.Fatalf("expected key field preserved, got %q", v.Key)
	}
	if v.Name != "" || v.Tags != nil {
		t.Fatalf("expected non-key fields cleared, got %+v", v)
	}
}

func TestDeepFreeKeysOnlyPreservesContents(t *testing.T) {
	d := keyedSampleDescriptor()
	v := keyedSample{Key: "k1", Name: "x", Tags: []int32{1, 2}}
	rv := reflect.ValueOf(&v).Elem()
	DeepFree(d, rv, FreeKeysOnly)
	if v.Key != "" {
		t.Fatalf("expected key field cleared, got %q", v.Key)
	}
	if v.Name != "x" || len(v.Tags) != 2 {
		t.Fatalf("expected non-key fields preserved, got %+v", v)
	}
}
