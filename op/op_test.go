package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(Invokedynamic)
	require.Equal(t, "invokedynamic", info.Name)
	require.Equal(t, 4, info.Operands)
	require.Equal(t, Invokedynamic, info.Code)
	require.Equal(t, 5, info.Size())
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
	}{
		{Nop, "nop", 0},
		{AconstNull, "aconst_null", 0},
		{Bipush, "bipush", 1},
		{Sipush, "sipush", 2},
		{Ldc, "ldc", 1},
		{LdcW, "ldc_w", 2},
		{Ldc2W, "ldc2_w", 2},
		{Aload, "aload", 1},
		{Caload, "caload", 0},
		{Astore, "astore", 1},
		{Castore, "castore", 0},
		{Pop, "pop", 0},
		{DupX1, "dup_x1", 0},
		{Swap, "swap", 0},
		{Ixor, "ixor", 0},
		{Iinc, "iinc", 2},
		{I2c, "i2c", 0},
		{IfIcmpge, "if_icmpge", 2},
		{Goto, "goto", 2},
		{Tableswitch, "tableswitch", Variable},
		{Lookupswitch, "lookupswitch", Variable},
		{Areturn, "areturn", 0},
		{Getstatic, "getstatic", 2},
		{Putfield, "putfield", 2},
		{Invokevirtual, "invokevirtual", 2},
		{Invokestatic, "invokestatic", 2},
		{Invokeinterface, "invokeinterface", 4},
		{Checkcast, "checkcast", 2},
		{Wide, "wide", Variable},
		{Multianewarray, "multianewarray", 3},
		{GotoW, "goto_w", 4},
		{JsrW, "jsr_w", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.Operands)
			require.True(t, info.Valid())
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestUndefinedOpcode(t *testing.T) {
	info := GetInfo(Code(0xfe))
	require.False(t, info.Valid())
	require.Equal(t, "invalid", Code(0xfe).String())
}

func TestIsJump(t *testing.T) {
	require.True(t, Goto.IsJump())
	require.True(t, Ifnull.IsJump())
	require.True(t, GotoW.IsJump())
	require.False(t, Invokestatic.IsJump())
	require.False(t, Ret.IsJump())
}
