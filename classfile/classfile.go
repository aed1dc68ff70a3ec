// Package classfile reads the structural outline of a compiled JVM class:
// its constant pool text entries, names, access flags and class attributes.
// Method bodies are skipped, not decoded.
package classfile

import (
	"encoding/binary"

	"github.com/deepnoodle-ai/radon/errz"
)

// Magic is the first four bytes of every class file.
const Magic = 0xcafebabe

// Tag identifies the kind of a constant pool entry.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// Length in bytes of the fixed-size constant pool entries.
var tagLen = map[Tag]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagClass:              2,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

// Constant is a CONSTANT_Utf8 entry of the constant pool.
type Constant struct {
	Index int
	Text  string
}

// Class is the outline of a class file.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	Access       uint16
	Name         string
	SuperName    string
	// Constants holds the text entries of the constant pool in index order.
	Constants []Constant
	// Signature is the value of the class Signature attribute, if present.
	Signature    string
	HasSignature bool
	FieldCount   int
	MethodCount  int

	utf8    map[int]string
	classes map[int]int
}

// Utf8 returns the text entry at the given constant pool index.
func (c *Class) Utf8(index int) (string, bool) {
	s, ok := c.utf8[index]
	return s, ok
}

// Parse reads the outline of a class file.
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}
	magic, err := r.u4()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, errz.NewStructuredErrorf(errz.ErrMalformed, 0, "bad magic %#x", magic)
	}
	c := &Class{
		utf8:    map[int]string{},
		classes: map[int]int{},
	}
	if c.MinorVersion, err = r.u2(); err != nil {
		return nil, err
	}
	if c.MajorVersion, err = r.u2(); err != nil {
		return nil, err
	}
	if err := c.readConstantPool(r); err != nil {
		return nil, err
	}
	if c.Access, err = r.u2(); err != nil {
		return nil, err
	}
	this, err := r.u2()
	if err != nil {
		return nil, err
	}
	super, err := r.u2()
	if err != nil {
		return nil, err
	}
	if c.Name, err = c.className(int(this), r.off-4); err != nil {
		return nil, err
	}
	if super != 0 {
		if c.SuperName, err = c.className(int(super), r.off-2); err != nil {
			return nil, err
		}
	}
	interfaces, err := r.u2()
	if err != nil {
		return nil, err
	}
	if err := r.skip(2 * int(interfaces)); err != nil {
		return nil, err
	}
	if c.FieldCount, err = skipMembers(r); err != nil {
		return nil, err
	}
	if c.MethodCount, err = skipMembers(r); err != nil {
		return nil, err
	}
	if err := c.readClassAttributes(r); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Class) readConstantPool(r *reader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := 1; i < int(count); i++ {
		start := r.off
		b, err := r.u1()
		if err != nil {
			return err
		}
		tag := Tag(b)
		switch tag {
		case TagUtf8:
			n, err := r.u2()
			if err != nil {
				return err
			}
			raw, err := r.bytes(int(n))
			if err != nil {
				return err
			}
			text, err := DecodeModifiedUTF8(raw)
			if err != nil {
				return errz.NewStructuredErrorf(errz.ErrMalformed, start, "constant #%d", i).WithCause(err)
			}
			c.utf8[i] = text
			c.Constants = append(c.Constants, Constant{Index: i, Text: text})
		case TagClass:
			nameIndex, err := r.u2()
			if err != nil {
				return err
			}
			c.classes[i] = int(nameIndex)
		default:
			n, ok := tagLen[tag]
			if !ok {
				return errz.NewStructuredErrorf(errz.ErrUnsupported, start, "unknown constant tag %d at #%d", tag, i)
			}
			if err := r.skip(n); err != nil {
				return err
			}
			if tag == TagLong || tag == TagDouble {
				i++
			}
		}
	}
	return nil
}

func (c *Class) className(index, offset int) (string, error) {
	nameIndex, ok := c.classes[index]
	if !ok {
		return "", errz.NewStructuredErrorf(errz.ErrMalformed, offset, "constant #%d is not a class", index)
	}
	name, ok := c.utf8[nameIndex]
	if !ok {
		return "", errz.NewStructuredErrorf(errz.ErrMalformed, offset, "constant #%d is not text", nameIndex)
	}
	return name, nil
}

func (c *Class) readClassAttributes(r *reader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		start := r.off
		nameIndex, err := r.u2()
		if err != nil {
			return err
		}
		length, err := r.u4()
		if err != nil {
			return err
		}
		info, err := r.bytes(int(length))
		if err != nil {
			return err
		}
		if c.utf8[int(nameIndex)] != "Signature" {
			continue
		}
		if len(info) != 2 {
			return errz.NewStructuredErrorf(errz.ErrMalformed, start, "Signature attribute of length %d", len(info))
		}
		sig, ok := c.utf8[int(binary.BigEndian.Uint16(info))]
		if !ok {
			return errz.NewStructuredErrorf(errz.ErrMalformed, start, "Signature attribute does not point to text")
		}
		c.Signature = sig
		c.HasSignature = true
	}
	return nil
}

func skipMembers(r *reader) (int, error) {
	count, err := r.u2()
	if err != nil {
		return 0, err
	}
	for i := 0; i < int(count); i++ {
		// access_flags, name_index, descriptor_index
		if err := r.skip(6); err != nil {
			return 0, err
		}
		if err := skipAttributes(r); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

func skipAttributes(r *reader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if err := r.skip(2); err != nil {
			return err
		}
		length, err := r.u4()
		if err != nil {
			return err
		}
		if err := r.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, errz.NewStructuredErrorf(errz.ErrTruncated, r.off, "need %d bytes, have %d", n, len(r.data)-r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) skip(n int) error {
	_, err := r.bytes(n)
	return err
}

func (r *reader) u1() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u2() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u4() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
