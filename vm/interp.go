// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/luxfi/dds/retcode"
)

// FreeScope selects what DeepFree releases (spec.md §4.1 "Deep free").
type FreeScope int

const (
	FreeAll FreeScope = iota
	FreeContentsOnly
	FreeKeysOnly
)

// DefaultMaxSampleSize bounds any single (de)serialize call; exceeding
// it — or a bounded collection's own bound — fails with ErrSampleTooLarge.
const DefaultMaxSampleSize = 64 * 1024 * 1024

// interp holds the mutable state of a single (de)serialize pass.
type interp struct {
	prog        Program
	le          bool // XCDR little-endian; both XCDR1/2 as modelled here are LE
	maxSize     int
}

// Serialize interprets d.Ops against value (which must match the struct
// the program was generated for) and returns the CDR-encoded bytes.
func Serialize(d *TypeDescriptor, value reflect.Value, repr DataRepresentation) ([]byte, error) {
	it := &interp{prog: d.Ops, le: true, maxSize: DefaultMaxSampleSize}
	var buf bytes.Buffer
	if err := it.run(0, value, &buf, nil); err != nil {
		return nil, err
	}
	if buf.Len() > it.maxSize {
		return nil, retcode.ErrSampleTooLarge
	}
	return buf.Bytes(), nil
}

// Deserialize interprets d.Ops to reconstruct a sample of out's type
// (out must be a settable pointer value) from wire bytes.
func Deserialize(d *TypeDescriptor, data []byte, out reflect.Value) error {
	it := &interp{prog: d.Ops, le: true, maxSize: DefaultMaxSampleSize}
	if len(data) > it.maxSize {
		return retcode.ErrSampleTooLarge
	}
	r := bytes.NewReader(data)
	return it.run(0, out, nil, r)
}

// run interprets the program starting at pc against value. Exactly one
// of w (serialize) or r (deserialize) is non-nil.
func (it *interp) run(pc int, value reflect.Value, w *bytes.Buffer, r *bytes.Reader) error {
	for pc < len(it.prog) {
		instr := Instr(it.prog[pc])
		switch instr.Op() {
		case OpRTS:
			return nil
		case OpKOF:
			pc++
		case OpJSR:
			target := pc + int(instr.Jump())
			if err := it.run(target, value, w, r); err != nil {
				return err
			}
			pc++
		case OpADR:
			fieldIdx := int(it.prog[pc+1])
			consumed, err := it.execADR(instr, pc+2, fieldIdx, value, w, r)
			if err != nil {
				return err
			}
			pc += 2 + consumed
		case OpDLC:
			np, err := it.execDLC(pc, value, w, r)
			if err != nil {
				return err
			}
			pc = np
		case OpPLC:
			np, err := it.execPLC(pc, value, w, r)
			if err != nil {
				return err
			}
			pc = np
		default:
			return fmt.Errorf("%w: unsupported opcode %#x at pc=%d", retcode.ErrInconsistentType, instr.Op(), pc)
		}
	}
	return nil
}

// execADR processes one ADR field. extraPC is the index just past the
// field-index word; it returns how many additional program words (bound,
// length, case table, …) this instruction consumed.
func (it *interp) execADR(instr Instr, extraPC, fieldIdx int, value reflect.Value, w *bytes.Buffer, r *bytes.Reader) (int, error) {
	field := fieldByIndex(value, fieldIdx)
	switch instr.Type() {
	case Type1Byte, Type2Byte, Type4Byte, Type8Byte, TypeBln, TypeEnu, TypeBmk:
		if err := it.scalar(instr, field, w, r); err != nil {
			return 0, err
		}
		return 0, nil
	case TypeStr:
		if err := it.str(field, 0, w, r); err != nil {
			return 0, err
		}
		return 0, nil
	case TypeBStr:
		bound := it.prog[extraPC]
		if err := it.str(field, int(bound), w, r); err != nil {
			return 0, err
		}
		return 1, nil
	case TypeSeq:
		if err := it.seq(instr, field, 0, w, r); err != nil {
			return 0, err
		}
		return 0, nil
	case TypeBSeq:
		bound := it.prog[extraPC]
		if err := it.seq(instr, field, int(bound), w, r); err != nil {
			return 0, err
		}
		return 1, nil
	case TypeArr:
		alen := it.prog[extraPC]
		if err := it.arr(instr, field, int(alen), w, r); err != nil {
			return 0, err
		}
		return 1, nil
	case TypeExt:
		if err := it.ext(instr, extraPC, field, w, r); err != nil {
			return 0, err
		}
		return 1, nil
	case TypeUni:
		consumed, err := it.union(instr, extraPC, value, field, w, r)
		if err != nil {
			return 0, err
		}
		return consumed, nil
	default:
		return 0, fmt.Errorf("%w: unsupported ADR type %#x", retcode.ErrInconsistentType, instr.Type())
	}
}

// union dispatches on a union's discriminant to the one JEQ4 case whose
// label matches its runtime value, (de)serializing that case's field in
// its place (spec.md §4.1 "JEQ4 used to dispatch a union by
// discriminant"; case-table layout grounded on dds_opcodes.h's
// "[ADR, UNI, d, z] [offset] [alen] [next-insn, cases]" followed by
// alen JEQ4 case labels). extraPC holds alen, extraPC+1 the absolute
// program index of the first case label. Only scalar and string case
// values are supported: a case whose value is itself a nested
// aggregate is reached through an enclosing JSR in the generated
// program, the same way any other struct-valued field is.
func (it *interp) union(instr Instr, extraPC int, value, discField reflect.Value, w *bytes.Buffer, r *bytes.Reader) (int, error) {
	alen := int(it.prog[extraPC])
	casesOffset := int(it.prog[extraPC+1])
	consumed := 2 + 3*alen

	discInstr := MakeInstr(OpADR, instr.Subtype(), false, 0, instr.Flags())
	if err := it.scalar(discInstr, discField, w, r); err != nil {
		return 0, err
	}
	disc := discriminantValue(discField)

	for i := 0; i < alen; i++ {
		base := casesOffset + i*3
		caseInstr := Instr(it.prog[base])
		caseDisc := int64(int32(it.prog[base+1]))
		if caseDisc != disc {
			continue
		}
		caseField := fieldByIndex(value, int(it.prog[base+2]))
		if caseInstr.Type() == TypeStr || caseInstr.Type() == TypeBStr {
			return consumed, it.str(caseField, 0, w, r)
		}
		return consumed, it.scalar(caseInstr, caseField, w, r)
	}
	return consumed, nil
}

// discriminantValue reads a union discriminant (int/uint/bool-kinded)
// as a signed 64-bit value for comparison against JEQ4 case labels.
func discriminantValue(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

// ext handles an EXT/optional field: next word is the absolute program
// index of the subroutine that (de)serializes the pointee.
func (it *interp) ext(instr Instr, extraPC int, field reflect.Value, w *bytes.Buffer, r *bytes.Reader) error {
	target := int(it.prog[extraPC])
	optional := instr.HasFlag(FlagOptional)
	if w != nil {
		present := !field.IsNil()
		if optional {
			if err := binary.Write(w, binary.LittleEndian, boolByte(present)); err != nil {
				return err
			}
		}
		if !present {
			return nil
		}
		return it.run(target, field.Elem(), w, nil)
	}
	if r != nil {
		present := true
		if optional {
			var b [1]byte
			if _, err := r.Read(b[:]); err != nil {
				return err
			}
			present = b[0] != 0
		}
		if !present {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return it.run(target, field.Elem(), nil, r)
	}
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// execDLC wraps the remainder of the current straight-line block (up to
// its matching RTS) with a 4-byte length prefix (spec.md's delimited-CDR).
func (it *interp) execDLC(pc int, value reflect.Value, w *bytes.Buffer, r *bytes.Reader) (int, error) {
	bodyStart := pc + 1
	bodyEnd := matchingRTS(it.prog, bodyStart)
	if w != nil {
		var body bytes.Buffer
		sub := &interp{prog: it.prog, le: it.le, maxSize: it.maxSize}
		if err := sub.run(bodyStart, value, &body, nil); err != nil {
			return 0, err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(body.Len())); err != nil {
			return 0, err
		}
		w.Write(body.Bytes())
		return bodyEnd + 1, nil
	}
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return 0, err
	}
	buf := make([]byte, length)
	if _, err := r.Read(buf); err != nil {
		return 0, err
	}
	limited := bytes.NewReader(buf)
	if err := it.run(bodyStart, value, nil, limited); err != nil {
		return 0, err
	}
	return bodyEnd + 1, nil
}

// execPLC handles a parameter-list wrapper: a sequence of PLM members,
// each with an id + length header, terminated at the matching RTS.
// Unknown members are skipped on deserialize using the header length
// (spec.md's "unknown members ... skipped using the member-header length").
func (it *interp) execPLC(pc int, value reflect.Value, w *bytes.Buffer, r *bytes.Reader) (int, error) {
	members := parsePLMs(it.prog, pc+1)
	bodyEnd := matchingRTS(it.prog, pc+1)
	if w != nil {
		for _, m := range members {
			var body bytes.Buffer
			sub := &interp{prog: it.prog, le: it.le, maxSize: it.maxSize}
			if err := sub.run(m.target, value, &body, nil); err != nil {
				return 0, err
			}
			if err := binary.Write(w, binary.LittleEndian, uint32(m.id)); err != nil {
				return 0, err
			}
			if err := binary.Write(w, binary.LittleEndian, uint32(body.Len())); err != nil {
				return 0, err
			}
			w.Write(body.Bytes())
		}
		return bodyEnd + 1, nil
	}
	byID := make(map[uint32]plm, len(members))
	for _, m := range members {
		byID[m.id] = m
	}
	for r.Len() > 0 {
		var id, length uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return 0, err
		}
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return 0, err
		}
		payload := make([]byte, length)
		if _, err := r.Read(payload); err != nil {
			return 0, err
		}
		if m, ok := byID[id]; ok {
			sub := &interp{prog: it.prog, le: it.le, maxSize: it.maxSize}
			if err := sub.run(m.target, value, nil, bytes.NewReader(payload)); err != nil {
				return 0, err
			}
		}
		// unknown member: payload already consumed, i.e. skipped.
	}
	return bodyEnd + 1, nil
}

type plm struct {
	id     uint32
	target int
}

// parsePLMs walks PLM instructions starting at pc until it hits RTS.
// PLM word: [PLM, 0, 0, flags][member-id][jump-to-member-program].
func parsePLMs(prog Program, pc int) []plm {
	var out []plm
	for pc < len(prog) {
		instr := Instr(prog[pc])
		if instr.Op() == OpRTS {
			break
		}
		if instr.Op() != OpPLM {
			pc++
			continue
		}
		id := prog[pc+1]
		target := pc + int(instr.Jump())
		out = append(out, plm{id: id, target: target})
		pc += 2
	}
	return out
}

// matchingRTS returns the index of the next RTS at or after pc.
func matchingRTS(prog Program, pc int) int {
	for i := pc; i < len(prog); i++ {
		if Instr(prog[i]).Op() == OpRTS {
			return i
		}
	}
	return len(prog) - 1
}

// fieldByIndex reaches a struct field by its index among all of the
// value's fields (reflect.Value.Field), following the program's field-index addressing
// scheme (see Program's doc comment).
func fieldByIndex(value reflect.Value, idx int) reflect.Value {
	for value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	return value.Field(idx)
}
