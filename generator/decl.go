package generator

import (
	"bytes"
	"fmt"
	"strconv"
)

const (
	timerID  = "$timer"
	checkID  = "$check"
	driverID = "$test"

	indent = "    "
)

// decl is one top-level field of the emitted module.
type decl interface {
	emit(b *bytes.Buffer)
}

type importDecl struct {
	module string
	name   string
	id     string
}

func (d importDecl) emit(b *bytes.Buffer) {
	fmt.Fprintf(b, "(import %q %q (func %s))\n", d.module, d.name, d.id)
}

type globalDecl struct {
	id string
}

func (d globalDecl) emit(b *bytes.Buffer) {
	fmt.Fprintf(b, "(global %s (mut i64) (i64.const 0))\n", d.id)
}

// setterFunc is a bank function: it stores value into the check global.
type setterFunc struct {
	global string
	value  int64
}

func (d setterFunc) emit(b *bytes.Buffer) {
	b.WriteString("(func\n")
	b.WriteString(indent + "(global.set " + d.global + " (i64.const ")
	b.WriteString(strconv.FormatInt(d.value, 10))
	b.WriteString("))\n")
	b.WriteString(")\n")
}

type memoryDecl struct {
	pages int
}

func (d memoryDecl) emit(b *bytes.Buffer) {
	fmt.Fprintf(b, "(memory (export \"memory\") %d %d)\n", d.pages, d.pages)
}

// entrypointStub satisfies hosts that require a user_entrypoint export.
type entrypointStub struct{}

func (entrypointStub) emit(b *bytes.Buffer) {
	b.WriteString("(func (export \"user_entrypoint\") (param $args_len i32) (result i32) i32.const 0)\n")
}

type startDecl struct {
	id string
}

func (d startDecl) emit(b *bytes.Buffer) {
	fmt.Fprintf(b, "(start %s)\n", d.id)
}

// driverFunc calls the bank between two timer toggles, then divides 1 by
// the check global so that a zero value traps.
type driverFunc struct {
	id     string
	timer  string
	global string
	calls  []int
}

func (d driverFunc) emit(b *bytes.Buffer) {
	fmt.Fprintf(b, "(func %s\n", d.id)
	fmt.Fprintf(b, indent+"(call %s)\n", d.timer)
	for _, c := range d.calls {
		b.WriteString(indent + "(call ")
		b.WriteString(strconv.Itoa(c))
		b.WriteString(")\n")
	}
	fmt.Fprintf(b, indent+"(call %s)\n", d.timer)
	b.WriteString(indent + "(i64.const 1)\n")
	fmt.Fprintf(b, indent+"(global.get %s)\n", d.global)
	b.WriteString(indent + "(i64.div_u)\n")
	b.WriteString(indent + "(drop)\n")
	b.WriteString(")\n")
}
