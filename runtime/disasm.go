package runtime

import (
	"fmt"
	"strings"
)

var opCodeNames = map[OpCode]string{
	OP_CONST: "CONST", OP_POP: "POP", OP_DUP: "DUP", OP_SWAP: "SWAP",
	OP_LOAD_TRUE: "LOAD_TRUE", OP_LOAD_FALSE: "LOAD_FALSE", OP_LOAD_UNIT: "LOAD_UNIT",
	OP_ADD: "ADD", OP_SUB: "SUB", OP_MUL: "MUL", OP_DIV: "DIV", OP_MOD: "MOD",
	OP_NEG: "NEG", OP_NOT: "NOT",
	OP_CMP_EQ: "CMP_EQ", OP_CMP_NE: "CMP_NE", OP_CMP_LT: "CMP_LT",
	OP_CMP_LE: "CMP_LE", OP_CMP_GT: "CMP_GT", OP_CMP_GE: "CMP_GE",
	OP_AND: "AND", OP_OR: "OR",
	OP_BUILDER_NEW: "BUILDER_NEW", OP_BUILDER_APPEND: "BUILDER_APPEND", OP_BUILDER_FINISH: "BUILDER_FINISH",
	OP_LOAD_GLOBAL: "LOAD_GLOBAL", OP_STORE_GLOBAL: "STORE_GLOBAL", OP_DEFINE_GLOBAL: "DEFINE_GLOBAL",
	OP_LOAD_LOCAL: "LOAD_LOCAL", OP_STORE_LOCAL: "STORE_LOCAL",
	OP_LOAD_UPVALUE: "LOAD_UPVALUE", OP_STORE_UPVALUE: "STORE_UPVALUE",
	OP_MAKE_LIST: "MAKE_LIST", OP_MAKE_TUPLE: "MAKE_TUPLE", OP_MAKE_SET: "MAKE_SET",
	OP_MAKE_DICT: "MAKE_DICT", OP_MAKE_RANGE: "MAKE_RANGE",
	OP_GET_INDEX: "GET_INDEX", OP_SET_INDEX: "SET_INDEX",
	OP_GET_MEMBER: "GET_MEMBER", OP_SET_MEMBER: "SET_MEMBER",
	OP_GET_MEMBER_IC: "GET_MEMBER_IC", OP_SET_MEMBER_IC: "SET_MEMBER_IC",
	OP_CALL: "CALL", OP_CALL_METHOD_IC: "CALL_METHOD_IC", OP_RET: "RET", OP_RET_UNIT: "RET_UNIT",
	OP_JUMP: "JUMP", OP_JUMP_IF_FALSE: "JUMP_IF_FALSE", OP_JUMP_IF_TRUE: "JUMP_IF_TRUE",
	OP_MATCH_LITERAL: "MATCH_LITERAL", OP_MATCH_ENUM: "MATCH_ENUM", OP_MATCH_TUPLE: "MATCH_TUPLE",
	OP_ITER_INIT: "ITER_INIT", OP_ITER_NEXT: "ITER_NEXT",
	OP_LOOP_BREAK_TARGET: "LOOP_BREAK_TARGET", OP_LOOP_CONTINUE_TARGET: "LOOP_CONTINUE_TARGET",
	OP_TRY_PUSH: "TRY_PUSH", OP_TRY_POP: "TRY_POP", OP_THROW: "THROW",
	OP_FINALLY_ENTER: "FINALLY_ENTER", OP_FINALLY_EXIT: "FINALLY_EXIT",
	OP_MAKE_STRUCT: "MAKE_STRUCT", OP_MAKE_ENUM: "MAKE_ENUM",
	OP_TYPE_NAME: "TYPE_NAME", OP_IMPORT: "IMPORT",
}

// operandCounts lists how many int operands follow each opcode in
// Chunk.Code, mirroring the operand shapes documented next to each OpCode
// constant.
var operandCounts = map[OpCode]int{
	OP_CONST: 1, OP_LOAD_GLOBAL: 1, OP_STORE_GLOBAL: 1, OP_LOAD_LOCAL: 1,
	OP_STORE_LOCAL: 1, OP_LOAD_UPVALUE: 1, OP_STORE_UPVALUE: 1,
	OP_MAKE_LIST: 1, OP_MAKE_TUPLE: 1, OP_MAKE_SET: 1, OP_MAKE_DICT: 1, OP_MAKE_RANGE: 1,
	OP_GET_MEMBER: 1, OP_SET_MEMBER: 1,
	// IC opcodes carry a name-const index plus an ICSlot index.
	OP_GET_MEMBER_IC: 2, OP_SET_MEMBER_IC: 2,
	// OP_CALL_METHOD_IC: name-const index, arg count, ICSlot index.
	OP_CALL: 1, OP_CALL_METHOD_IC: 3,
	OP_JUMP: 1, OP_JUMP_IF_FALSE: 1, OP_JUMP_IF_TRUE: 1,
	OP_MATCH_ENUM: 1, OP_MATCH_TUPLE: 1,
	OP_ITER_NEXT: 1, OP_MAKE_STRUCT: 1, OP_MAKE_ENUM: 1, OP_IMPORT: 1,
	// OP_TRY_PUSH carries both a catch and a finally target ip.
	OP_TRY_PUSH: 2,
	OP_AND: 1, OP_OR: 1,
}

// Disassemble renders a Chunk as one instruction per line, operand values
// included, for the `disasm` CLI command and for debugging the compiler by
// eye the way the teacher's pretty-printers render runtime values.
func (c *Chunk) Disassemble(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	ip := 0
	for ip < len(c.Code) {
		op := OpCode(c.Code[ip])
		opName, ok := opCodeNames[op]
		if !ok {
			opName = fmt.Sprintf("OP(%d)", int(op))
		}
		n := operandCounts[op]
		fmt.Fprintf(&b, "%04d  %-20s", ip, opName)
		for i := 0; i < n && ip+1+i < len(c.Code); i++ {
			fmt.Fprintf(&b, " %d", c.Code[ip+1+i])
		}
		b.WriteByte('\n')
		ip += 1 + n
	}
	return b.String()
}
