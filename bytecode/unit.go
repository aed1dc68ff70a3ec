package bytecode

// MaxCodeSize is the largest code array the class file format allows for a
// single method.
const MaxCodeSize = 65535

// ClassUnit is a compiled class.
type ClassUnit struct {
	// Name is the internal name, e.g. "com/example/Main".
	Name       string
	Version    int
	Access     Access
	SuperName  string
	Interfaces []string
	Signature  string
	Fields     []*FieldUnit
	Methods    []*MethodUnit
}

// FieldUnit is a field declaration.
type FieldUnit struct {
	Name   string
	Desc   string
	Access Access
}

// MethodUnit is a method declaration and its body.
type MethodUnit struct {
	Name         string
	Desc         string
	Access       Access
	Instructions *InsnList

	// MaxStack and MaxLocals may be left zero, in which case the class
	// writer computes them.
	MaxStack  int
	MaxLocals int
}

// NewMethod returns a method with the given body.
func NewMethod(access Access, name, desc string, insns ...Instruction) *MethodUnit {
	return &MethodUnit{
		Name:         name,
		Desc:         desc,
		Access:       access,
		Instructions: NewInsnList(insns...),
	}
}

// IsInterface returns true if the class is an interface.
func (c *ClassUnit) IsInterface() bool {
	return c.Access.Has(AccInterface)
}

// DottedName returns the binary name of the class, e.g. "com.example.Main".
func (c *ClassUnit) DottedName() string {
	return DottedName(c.Name)
}

// Field returns the field with the given name, or nil.
func (c *ClassUnit) Field(name string) *FieldUnit {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Method returns the method with the given name and descriptor, or nil.
func (c *ClassUnit) Method(name, desc string) *MethodUnit {
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}
	return nil
}

// AddMethod appends a method to the class.
func (c *ClassUnit) AddMethod(m *MethodUnit) {
	c.Methods = append(c.Methods, m)
}

// HasInstructions returns true if the method has a non-empty body.
func (m *MethodUnit) HasInstructions() bool {
	return m.Instructions.Len() > 0
}

// CodeSize returns the largest size the method's code array can have once
// encoded.
func (m *MethodUnit) CodeSize() int {
	return m.Instructions.Size()
}

// IsStatic returns true if the method is static.
func (m *MethodUnit) IsStatic() bool {
	return m.Access.Has(AccStatic)
}
