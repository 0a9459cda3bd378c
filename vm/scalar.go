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

// scalar (de)serializes a fixed-width primitive, bool, enum or bitmask
// field using its Go reflect.Kind to pick the wire width.
func (it *interp) scalar(instr Instr, field reflect.Value, w *bytes.Buffer, r *bytes.Reader) error {
	switch field.Kind() {
	case reflect.Bool:
		if w != nil {
			return binary.Write(w, binary.LittleEndian, boolByte(field.Bool()))
		}
		var b uint8
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return err
		}
		field.SetBool(b != 0)
		return nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return it.signed(instr, field, w, r)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return it.unsigned(instr, field, w, r)
	case reflect.Float32:
		if w != nil {
			return binary.Write(w, binary.LittleEndian, float32(field.Float()))
		}
		var f float32
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return err
		}
		field.SetFloat(float64(f))
		return nil
	case reflect.Float64:
		if w != nil {
			return binary.Write(w, binary.LittleEndian, field.Float())
		}
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return err
		}
		field.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("%w: field kind %s is not a scalar", retcode.ErrInconsistentType, field.Kind())
	}
}

func (it *interp) signed(instr Instr, field reflect.Value, w *bytes.Buffer, r *bytes.Reader) error {
	width := scalarWidth(instr)
	if w != nil {
		switch width {
		case 1:
			return binary.Write(w, binary.LittleEndian, int8(field.Int()))
		case 2:
			return binary.Write(w, binary.LittleEndian, int16(field.Int()))
		case 4:
			return binary.Write(w, binary.LittleEndian, int32(field.Int()))
		default:
			return binary.Write(w, binary.LittleEndian, field.Int())
		}
	}
	switch width {
	case 1:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetInt(int64(v))
		return err
	case 2:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetInt(int64(v))
		return err
	case 4:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetInt(int64(v))
		return err
	default:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetInt(v)
		return err
	}
}

func (it *interp) unsigned(instr Instr, field reflect.Value, w *bytes.Buffer, r *bytes.Reader) error {
	width := scalarWidth(instr)
	if w != nil {
		switch width {
		case 1:
			return binary.Write(w, binary.LittleEndian, uint8(field.Uint()))
		case 2:
			return binary.Write(w, binary.LittleEndian, uint16(field.Uint()))
		case 4:
			return binary.Write(w, binary.LittleEndian, uint32(field.Uint()))
		default:
			return binary.Write(w, binary.LittleEndian, field.Uint())
		}
	}
	switch width {
	case 1:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetUint(uint64(v))
		return err
	case 2:
		var v uint16
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetUint(uint64(v))
		return err
	case 4:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetUint(uint64(v))
		return err
	default:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		field.SetUint(v)
		return err
	}
}

// scalarWidth derives the wire width from the instruction's type code,
// falling back to the enum/bitmask storage-size flag bits.
func scalarWidth(instr Instr) int {
	switch instr.Type() {
	case Type1Byte:
		return 1
	case Type2Byte:
		return 2
	case Type4Byte:
		return 4
	case Type8Byte:
		return 8
	case TypeEnu, TypeBmk:
		return instr.Flags().EnumStorageSize()
	default:
		return 4
	}
}

// str (de)serializes a length-prefixed UTF-8 string; bound == 0 means
// unbounded. Exceeding bound fails with ErrSampleTooLarge.
func (it *interp) str(field reflect.Value, bound int, w *bytes.Buffer, r *bytes.Reader) error {
	if w != nil {
		s := field.String()
		if bound > 0 && len(s) > bound {
			return retcode.ErrSampleTooLarge
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(s)+1)); err != nil {
			return err
		}
		w.WriteString(s)
		w.WriteByte(0)
		return nil
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	if bound > 0 && int(n) > bound+1 {
		return retcode.ErrSampleTooLarge
	}
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return err
	}
	if n > 0 {
		buf = buf[:n-1] // drop the trailing NUL
	}
	field.SetString(string(buf))
	return nil
}

// seq (de)serializes a length-prefixed sequence of the ADR's subtype.
// Only primitive/string element types are supported; struct-valued
// sequences are handled through an enclosing JSR in the generated
// program rather than by this helper.
func (it *interp) seq(instr Instr, field reflect.Value, bound int, w *bytes.Buffer, r *bytes.Reader) error {
	elemType := field.Type().Elem()
	if w != nil {
		n := field.Len()
		if bound > 0 && n > bound {
			return retcode.ErrSampleTooLarge
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := it.seqElem(instr, field.Index(i), w, nil); err != nil {
				return err
			}
		}
		return nil
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	if bound > 0 && int(n) > bound {
		return retcode.ErrSampleTooLarge
	}
	out := reflect.MakeSlice(field.Type(), int(n), int(n))
	for i := 0; i < int(n); i++ {
		if err := it.seqElem(instr, out.Index(i), nil, r); err != nil {
			return err
		}
	}
	_ = elemType
	field.Set(out)
	return nil
}

func (it *interp) seqElem(instr Instr, elem reflect.Value, w *bytes.Buffer, r *bytes.Reader) error {
	if instr.Subtype() == TypeStr || instr.Subtype() == TypeBStr {
		return it.str(elem, 0, w, r)
	}
	sub := MakeInstr(OpADR, instr.Subtype(), false, 0, instr.Flags())
	return it.scalar(sub, elem, w, r)
}

// arr (de)serializes a fixed-length array (Go slice or array) of alen
// elements of the ADR's subtype.
func (it *interp) arr(instr Instr, field reflect.Value, alen int, w *bytes.Buffer, r *bytes.Reader) error {
	if w != nil {
		for i := 0; i < alen; i++ {
			if err := it.seqElem(instr, field.Index(i), w, nil); err != nil {
				return err
			}
		}
		return nil
	}
	if field.Kind() == reflect.Slice && field.Len() < alen {
		field.Set(reflect.MakeSlice(field.Type(), alen, alen))
	}
	for i := 0; i < alen; i++ {
		if err := it.seqElem(instr, field.Index(i), nil, r); err != nil {
			return err
		}
	}
	return nil
}
