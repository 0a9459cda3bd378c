// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

// DescriptorFlag is a bit in a TypeDescriptor's Flags set (spec.md §6).
type DescriptorFlag uint32

const (
	FlagNoOptimize                 DescriptorFlag = 1 << iota // force interpreted (de)serialization
	FlagFixedKey                                              // XCDR1 key serializes to <= 16 bytes
	FlagContainsUnion
	FlagFixedSize
	FlagFixedKeyXCDR2
	FlagXTypesMetadata
	FlagRestrictDataRepresentation
)

// KeyDescriptor names one key field: its logical name, the struct field
// index used to reach it, and its position in key-index order.
type KeyDescriptor struct {
	Name  string
	Field int
	Index int
}

// TypeDescriptor is the immutable per-type metadata spec.md §3/§6
// describes: in-memory size/alignment, a flagset, the key-field array,
// the opcode program, and optional XTypes metadata.
type TypeDescriptor struct {
	TypeName    string
	Size        int
	Alignment   int
	Flags       DescriptorFlag
	Keys        []KeyDescriptor
	Ops         Program
	XML         string
	TypeInformation []byte
	TypeMapping     []byte
	AllowedRepresentations DataRepresentationMask
}

func (d *TypeDescriptor) HasFlag(f DescriptorFlag) bool { return d.Flags&f != 0 }

// SortedKeys returns the key descriptors ordered by logical key index,
// the order key extraction must walk them in (spec.md §4.1).
func (d *TypeDescriptor) SortedKeys() []KeyDescriptor {
	out := append([]KeyDescriptor(nil), d.Keys...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Index < out[j-1].Index; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
