package classfile

import (
	"bytes"
	"encoding/binary"
)

// Skeleton describes a class without fields or methods. It is used to carry
// text in a constant pool, for example a watermark.
type Skeleton struct {
	Name      string
	SuperName string
	Version   uint16
	Access    uint16
	// Texts are added to the constant pool as CONSTANT_Utf8 entries.
	Texts     []string
	Signature string
}

// Bytes encodes the skeleton as a class file.
func (s *Skeleton) Bytes() []byte {
	version := s.Version
	if version == 0 {
		version = 52
	}
	super := s.SuperName
	if super == "" {
		super = "java/lang/Object"
	}

	var pool bytes.Buffer
	count := 1
	utf8 := func(text string) uint16 {
		raw := EncodeModifiedUTF8(text)
		pool.WriteByte(byte(TagUtf8))
		binary.Write(&pool, binary.BigEndian, uint16(len(raw)))
		pool.Write(raw)
		count++
		return uint16(count - 1)
	}
	class := func(nameIndex uint16) uint16 {
		pool.WriteByte(byte(TagClass))
		binary.Write(&pool, binary.BigEndian, nameIndex)
		count++
		return uint16(count - 1)
	}

	this := class(utf8(s.Name))
	superIndex := class(utf8(super))
	for _, text := range s.Texts {
		utf8(text)
	}
	var sigName, sigValue uint16
	if s.Signature != "" {
		sigName = utf8("Signature")
		sigValue = utf8(s.Signature)
	}

	var out bytes.Buffer
	w := func(v any) { binary.Write(&out, binary.BigEndian, v) }
	w(uint32(Magic))
	w(uint16(0))
	w(version)
	w(uint16(count))
	out.Write(pool.Bytes())
	w(s.Access)
	w(this)
	w(superIndex)
	w(uint16(0)) // interfaces
	w(uint16(0)) // fields
	w(uint16(0)) // methods
	if s.Signature != "" {
		w(uint16(1))
		w(sigName)
		w(uint32(2))
		w(sigValue)
	} else {
		w(uint16(0))
	}
	return out.Bytes()
}
