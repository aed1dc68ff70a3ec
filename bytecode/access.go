package bytecode

// Access is a set of access and property flags of a class, field or method.
type Access uint16

const (
	AccPublic       Access = 0x0001
	AccPrivate      Access = 0x0002
	AccProtected    Access = 0x0004
	AccStatic       Access = 0x0008
	AccFinal        Access = 0x0010
	AccSuper        Access = 0x0020
	AccSynchronized Access = 0x0020
	AccVolatile     Access = 0x0040
	AccBridge       Access = 0x0040
	AccVarargs      Access = 0x0080
	AccTransient    Access = 0x0080
	AccNative       Access = 0x0100
	AccInterface    Access = 0x0200
	AccAbstract     Access = 0x0400
	AccStrict       Access = 0x0800
	AccSynthetic    Access = 0x1000
	AccAnnotation   Access = 0x2000
	AccEnum         Access = 0x4000
)

// Class file major versions.
const (
	Java6 = 50
	Java7 = 51
	Java8 = 52
)

// Has returns true if every flag in f is set.
func (a Access) Has(f Access) bool {
	return a&f == f
}

// FixAccess makes a class or member reachable from any other class: the
// public flag is set and private and protected are cleared.
func FixAccess(a Access) Access {
	return (a &^ (AccPrivate | AccProtected)) | AccPublic
}
