// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"bytes"
	"crypto/md5"
	"reflect"
)

// KeyHashSize is the fixed width of a key hash, matching the original's
// 16-byte GUID-sized instance key.
const KeyHashSize = 16

// ExtractKey serializes a sample's key fields, in key-index order, into
// raw (un-padded) CDR bytes. Key fields are addressed directly through
// TypeDescriptor.Keys rather than by re-walking Ops for FlagKey-tagged
// ADR instructions: the descriptor generator already flattens key
// fields to root-relative indices, so a second, opcode-level path to
// the same information would be redundant (KOF exists in the encoding
// for bit-fidelity with the original layout, but this interpreter's key
// extraction does not need to execute it).
func ExtractKey(d *TypeDescriptor, value reflect.Value) ([]byte, error) {
	for value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	it := &interp{maxSize: DefaultMaxSampleSize}
	var buf bytes.Buffer
	for _, k := range d.SortedKeys() {
		field := value.Field(k.Field)
		if err := serializeKeyField(it, field, &buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func serializeKeyField(it *interp, field reflect.Value, buf *bytes.Buffer) error {
	switch field.Kind() {
	case reflect.String:
		return it.str(field, 0, buf, nil)
	case reflect.Array, reflect.Slice:
		instr := MakeInstr(OpADR, TypeSeq, false, kindToSubtype(field.Type().Elem().Kind()), 0)
		if field.Kind() == reflect.Array {
			return it.arr(instr, field, field.Len(), buf, nil)
		}
		return it.seq(instr, field, 0, buf, nil)
	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			if err := serializeKeyField(it, field.Field(i), buf); err != nil {
				return err
			}
		}
		return nil
	default:
		instr := MakeInstr(OpADR, kindToType(field.Kind()), false, 0, 0)
		return it.scalar(instr, field, buf, nil)
	}
}

func kindToType(k reflect.Kind) Type {
	switch k {
	case reflect.Int8, reflect.Uint8, reflect.Bool:
		return Type1Byte
	case reflect.Int16, reflect.Uint16:
		return Type2Byte
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return Type4Byte
	default:
		return Type8Byte
	}
}

func kindToSubtype(k reflect.Kind) Type { return kindToType(k) }

// HashKey turns the raw key bytes into a fixed 16-byte instance key
// hash. When the descriptor promises a fixed-size key that already
// fits within KeyHashSize (FlagFixedKey / FlagFixedKeyXCDR2), the CDR
// bytes are used directly, zero-padded; otherwise it falls back to
// MD5, exactly as the original does for variable-length or oversized
// keys. MD5 is used here purely as a fixed-width digest for instance
// identity, not for any security purpose, so the stdlib implementation
// is sufficient and no third-party hash package is warranted.
func HashKey(d *TypeDescriptor, value reflect.Value) ([16]byte, error) {
	raw, err := ExtractKey(d, value)
	if err != nil {
		return [16]byte{}, err
	}
	var out [16]byte
	if (d.HasFlag(FlagFixedKey) || d.HasFlag(FlagFixedKeyXCDR2)) && len(raw) <= KeyHashSize {
		copy(out[:], raw)
		return out, nil
	}
	return md5.Sum(raw), nil
}
