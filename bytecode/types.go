package bytecode

import "strings"

// Sort is the kind of a Type.
type Sort int

const (
	Void Sort = iota
	Boolean
	Char
	Byte
	Short
	Int
	Float
	Long
	Double
	Array
	Object
	Method
)

// ObjectDescriptor is the descriptor of java.lang.Object.
const ObjectDescriptor = "Ljava/lang/Object;"

// StringDescriptor is the descriptor of java.lang.String.
const StringDescriptor = "Ljava/lang/String;"

var primitiveNames = map[byte]string{
	'V': "void",
	'Z': "boolean",
	'C': "char",
	'B': "byte",
	'S': "short",
	'I': "int",
	'F': "float",
	'J': "long",
	'D': "double",
}

// Type is a field or method type descriptor.
type Type struct {
	desc string
}

// TypeOf returns the Type for the given descriptor, e.g. "I" or "[Ljava/lang/String;".
func TypeOf(desc string) Type {
	return Type{desc: desc}
}

// ObjectType returns the Type of the class with the given internal name.
func ObjectType(internalName string) Type {
	if strings.HasPrefix(internalName, "[") {
		return Type{desc: internalName}
	}
	return Type{desc: "L" + internalName + ";"}
}

// ReturnTypeOf returns the return type of a method descriptor.
func ReturnTypeOf(methodDesc string) Type {
	return Type{desc: methodDesc[strings.IndexByte(methodDesc, ')')+1:]}
}

// Descriptor returns the type descriptor.
func (t Type) Descriptor() string {
	return t.desc
}

// Sort returns the kind of the type.
func (t Type) Sort() Sort {
	if t.desc == "" {
		return Void
	}
	switch t.desc[0] {
	case 'V':
		return Void
	case 'Z':
		return Boolean
	case 'C':
		return Char
	case 'B':
		return Byte
	case 'S':
		return Short
	case 'I':
		return Int
	case 'F':
		return Float
	case 'J':
		return Long
	case 'D':
		return Double
	case '[':
		return Array
	case '(':
		return Method
	default:
		return Object
	}
}

// IsArray returns true if the type is an array type.
func (t Type) IsArray() bool {
	return t.Sort() == Array
}

// Dimensions returns the number of array dimensions of the type.
func (t Type) Dimensions() int {
	n := 0
	for n < len(t.desc) && t.desc[n] == '[' {
		n++
	}
	return n
}

// ElementType returns the element type of an array type.
func (t Type) ElementType() Type {
	return Type{desc: t.desc[t.Dimensions():]}
}

// InternalName returns the internal name of an object or array type, in the
// form expected by checkcast: "java/lang/String" or "[I".
func (t Type) InternalName() string {
	if t.Sort() == Object {
		return t.desc[1 : len(t.desc)-1]
	}
	return t.desc
}

// ClassName returns the Java source name of the type, e.g. "int",
// "java.lang.String" or "byte[][]".
func (t Type) ClassName() string {
	switch t.Sort() {
	case Array:
		return t.ElementType().ClassName() + strings.Repeat("[]", t.Dimensions())
	case Object:
		return strings.ReplaceAll(t.InternalName(), "/", ".")
	case Method:
		return t.desc
	default:
		if t.desc == "" {
			return "void"
		}
		return primitiveNames[t.desc[0]]
	}
}

// String returns the descriptor.
func (t Type) String() string {
	return t.desc
}

// DottedName converts an internal class name to its binary name, e.g.
// "java/lang/String" to "java.lang.String".
func DottedName(internalName string) string {
	return strings.ReplaceAll(internalName, "/", ".")
}
