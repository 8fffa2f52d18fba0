// Package environ holds the value model and the per-session environment the
// evaluator and process manager share: Expression, Scope, and Environment.
// They are kept in one package because Scope stores Expressions and
// Environment's builtin dispatch table stores Expressions that close over
// Scopes — splitting them would just move the cycle from Rust modules (which
// tolerate it) onto Go packages (which don't).
package environ

import (
	"fmt"
	"strings"
)

// Kind tags the variant of an Expression.
type Kind int

const (
	KindNil Kind = iota
	KindTrue
	KindInt
	KindFloat
	KindSymbol
	KindString
	KindLambda
	KindMacro
	KindList
	KindFunc
	KindProcess
	KindFile
	KindValues
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindTrue:
		return "true"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindLambda:
		return "lambda"
	case KindMacro:
		return "macro"
	case KindList:
		return "list"
	case KindFunc:
		return "func"
	case KindProcess:
		return "process"
	case KindFile:
		return "file"
	case KindValues:
		return "values"
	default:
		return "unknown"
	}
}

// Builtin is a host-implemented operator. It receives the raw, unevaluated
// tail of the form that invoked it and decides for itself how (and whether)
// to evaluate each argument — see §4.C.3.
type Builtin func(env *Environment, args []*Expression) (*Expression, error)

// Lambda is a closure: a parameter expression, a body expression, and the
// scope that was current when the lambda value was created.
type Lambda struct {
	Params  *Expression
	Body    *Expression
	Capture *Scope
}

// ProcStatus distinguishes a still-running child from one already reaped.
type ProcStatus int

const (
	ProcRunning ProcStatus = iota
	ProcOver
)

// ProcState reifies a child process as a value.
type ProcState struct {
	Status ProcStatus
	Pid    int
	Code   int // valid only when Status == ProcOver
}

// FileRole distinguishes the handles a File expression can wrap.
type FileRole int

const (
	FileStdin FileRole = iota
	FileStdout
	FileStderr
	FileRead
	FileReadBinary
	FileWrite
)

// FileState is the shared, reference-counted handle a File expression wraps.
type FileState struct {
	Role FileRole
	Name string // path, when opened from a redirection
	// Handle is an io.Closer in practice (*os.File); kept as interface{} here
	// so this package does not need to import os for a type it never reads.
	Handle interface{}
}

// Expression is the tagged-union value of the language: every case in
// §3 is a field here, selected by Kind. Only the fields matching
// Kind are meaningful; the rest are zero.
type Expression struct {
	Kind Kind

	Int    int64
	Float  float64
	Str    string // Symbol name or String payload
	List   []*Expression
	Lambda *Lambda
	Macro  *Lambda
	Func   Builtin
	Proc   *ProcState
	File   *FileState
	Values []*Expression
}

// Nil and True are shared singletons for the two constant atoms; since they
// carry no payload there is no reason to allocate a fresh one on every
// return path.
var (
	Nil  = &Expression{Kind: KindNil}
	True = &Expression{Kind: KindTrue}
)

func Int(i int64) *Expression      { return &Expression{Kind: KindInt, Int: i} }
func Float(f float64) *Expression  { return &Expression{Kind: KindFloat, Float: f} }
func Symbol(s string) *Expression  { return &Expression{Kind: KindSymbol, Str: s} }
func String(s string) *Expression  { return &Expression{Kind: KindString, Str: s} }
func List(items []*Expression) *Expression {
	return &Expression{Kind: KindList, List: items}
}
func Func(f Builtin) *Expression { return &Expression{Kind: KindFunc, Func: f} }
func Values(items []*Expression) *Expression {
	return &Expression{Kind: KindValues, Values: items}
}
func Proc(state *ProcState) *Expression { return &Expression{Kind: KindProcess, Proc: state} }
func File(state *FileState) *Expression { return &Expression{Kind: KindFile, File: state} }

// IsTruthy reports whether an expression counts as true in conditional
// position: everything except Nil is truthy, matching the source's "Nil is
// the only false value" convention.
func (e *Expression) IsTruthy() bool {
	return e.Kind != KindNil
}

// Clone returns a shallow copy. Processes and files keep their pointer
// identity (they are reference-counted handles, not values to duplicate).
func (e *Expression) Clone() *Expression {
	if e == nil {
		return Nil
	}
	c := *e
	return &c
}

// MakeString is the canonical textualization used both for the `str`-style
// coercions and for writing results to the terminal (§4.A).
func (e *Expression) MakeString() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindNil:
		return ""
	case KindTrue:
		return "true"
	case KindInt:
		return fmt.Sprintf("%d", e.Int)
	case KindFloat:
		return fmt.Sprintf("%g", e.Float)
	case KindSymbol, KindString:
		return e.Str
	case KindLambda:
		return "<lambda>"
	case KindMacro:
		return "<macro>"
	case KindFunc:
		return "<func>"
	case KindList:
		parts := make([]string, len(e.List))
		for i, x := range e.List {
			parts[i] = x.MakeString()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindProcess:
		return fmt.Sprintf("%d", e.Proc.Pid)
	case KindFile:
		switch e.File.Role {
		case FileStdin:
			return "$stdin"
		case FileStdout:
			return "$stdout"
		case FileStderr:
			return "$stderr"
		default:
			return "$file:" + e.File.Name
		}
	case KindValues:
		if len(e.Values) == 0 {
			return ""
		}
		return e.Values[0].MakeString()
	default:
		return ""
	}
}

// Write renders the result of a top-level evaluation the way the REPL
// prints it: textualized, with a trailing newline.
func (e *Expression) Write() string {
	return e.MakeString() + "\n"
}
