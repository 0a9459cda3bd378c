// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

// Program is the flat, 32-bit-word opcode stream interpreted by the VM.
// It stays a plain []uint32 (rather than a richer Go type) so that it
// remains layout-compatible with statically generated type-descriptor
// data, per spec.md §9's "program arrays remain 32-bit-word flat".
//
// Field offsets are expressed as a single program word holding a Go
// struct field index (FieldByIndex) rather than a raw byte offset: Go
// gives no portable way to address a struct member by byte offset
// without unsafe.Pointer arithmetic, and FieldByIndex is the idiomatic
// equivalent for "reach this member of the in-memory layout". JSR
// descends into nested struct values the same way the original
// descends into nested memory regions, so the indices a subroutine uses
// are always relative to the struct value the caller handed it, mirroring
// the original's offsets being relative to the start of the current
// element.
type Program []uint32

// Builder assembles a Program incrementally; used by generated type
// descriptors and by tests that hand-construct small programs.
type Builder struct {
	ops Program
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) emit(w uint32) int {
	b.ops = append(b.ops, w)
	return len(b.ops) - 1
}

// ADR emits an ADR instruction for a primitive/string/enum/bitmask field
// at the given struct field index, with the given type/subtype/flags,
// returning the instruction's program offset.
func (b *Builder) ADR(typ Type, subtype Type, flags Flag, fieldIndex int) int {
	pos := b.emit(uint32(MakeInstr(OpADR, typ, false, subtype, flags)))
	b.emit(uint32(fieldIndex))
	return pos
}

// ADRBound emits an ADR instruction for a bounded string/sequence/array,
// followed by the field index and the bound/length.
func (b *Builder) ADRBound(typ Type, subtype Type, flags Flag, fieldIndex int, bound uint16) int {
	pos := b.ADR(typ, subtype, flags, fieldIndex)
	b.emit(uint32(bound))
	return pos
}

// JSR emits a call to the subroutine starting at target (an absolute
// index into the same Program), encoding it as the signed relative
// offset the VM format requires.
func (b *Builder) JSR(target int) int {
	pos := len(b.ops)
	rel := int16(target - pos)
	return b.emit(uint32(MakeInstr(OpJSR, 0, false, 0, 0)) | uint32(uint16(rel)))
}

// RTS emits a return-from-subroutine instruction.
func (b *Builder) RTS() int { return b.emit(uint32(MakeInstr(OpRTS, 0, false, 0, 0))) }

// UnionCase describes one JEQ4 case label in a union's dispatch table:
// when the discriminant equals Disc, the field at FieldIndex (of Type)
// is (de)serialized in the union's place.
type UnionCase struct {
	Type       Type
	Flags      Flag
	Disc       int32
	FieldIndex int
}

// Union emits an ADR(UNI) instruction followed by its inline JEQ4 case
// table, dispatching the field at discField (of discType, one of
// Type1Byte/Type2Byte/Type4Byte/TypeBln) to the case whose Disc matches
// its runtime value (dds_opcodes.h's "[ADR, UNI, d, z] [offset] [alen]
// [next-insn, cases]" followed by alen JEQ4 labels).
func (b *Builder) Union(discType Type, flags Flag, discField int, cases []UnionCase) int {
	pos := b.ADR(TypeUni, discType, flags, discField)
	b.emit(uint32(len(cases)))
	b.emit(uint32(pos + 4))
	for _, c := range cases {
		b.emit(uint32(MakeInstr(OpJEQ4, c.Type, false, 0, c.Flags)))
		b.emit(uint32(uint32(c.Disc)))
		b.emit(uint32(c.FieldIndex))
	}
	return pos
}

// Program returns the assembled instruction stream.
func (b *Builder) Program() Program { return append(Program(nil), b.ops...) }
