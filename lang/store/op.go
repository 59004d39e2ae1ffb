package store

// RegID, ValueID, InputID, and OpAddr are small indices into, respectively,
// a code object's register space, its constant pool, its input list, and
// its own op list. OpCount counts remaining dependencies/uses.
type (
	RegID   = uint32
	ValueID = uint32
	InputID = uint32
	OpAddr  = uint32
	OpCount = uint32
)

// BuiltinOp enumerates the exact set of builtin names from the
// specification's external interface section.
type BuiltinOp int

const (
	Add BuiltinOp = iota
	Sub
	Mul
	Div
	Neg
	EmptyRecord
	Insert
	Project
	EmptyTuple
	Append
	Nil
	Cons
	Compile
	Fetch
	JoinURL
	DecodeUTF8
	EncodeUTF8
	Sys
)

var builtinNames = map[string]BuiltinOp{
	"add":           Add,
	"sub":           Sub,
	"mul":           Mul,
	"div":           Div,
	"neg":           Neg,
	"empty_record":  EmptyRecord,
	"insert":        Insert,
	"project":       Project,
	"empty_tuple":   EmptyTuple,
	"append":        Append,
	"nil":           Nil,
	"cons":          Cons,
	"compile":       Compile,
	"fetch":         Fetch,
	"join_url":      JoinURL,
	"decode_utf8":   DecodeUTF8,
	"encode_utf8":   EncodeUTF8,
	"sys":           Sys,
}

// ParseBuiltinOp resolves a builtin name to its op code. Unknown names are a
// compile-time error per the specification's compiler error semantics.
func ParseBuiltinOp(name string) (BuiltinOp, bool) {
	op, ok := builtinNames[name]
	return op, ok
}

func (op BuiltinOp) String() string {
	for name, o := range builtinNames {
		if o == op {
			return name
		}
	}
	return "unknown_builtin"
}

// Dest is the output description of an op: which register it writes, and
// the addresses of the ops that consume it (I4). Completing the op
// decrements each listed consumer's outstanding-dependency count once per
// entry. Register slots carry no use count and are not freed before the
// frame ends.
type Dest struct {
	Reg  RegID
	Uses []OpAddr
}

// OpCase is one arm of a Match op: match the scrutinee against a constant
// (Tag compares as a string equality, Eq compares as a literal equality) or
// fall through unconditionally (Default).
type OpCase struct {
	Kind    OpCaseKind
	Literal ValueID // unused for Default
	Target  RegID
}

type OpCaseKind int

const (
	CaseTag OpCaseKind = iota
	CaseEq
	CaseDefault
)

// Op is one instruction of a flattened code object.
type Op struct {
	Kind    OpKind
	Dest    Dest    // every Op, including SetValue/SetInput, writes its result through Dest
	Value   ValueID // SetValue
	Input   InputID // SetInput
	Src     RegID   // Force
	Fn      RegID   // Bind
	Target  RegID   // Invoke, Match (scrutinee)
	Args    []RegID // Bind (extra args), Builtin
	Builtin BuiltinOp
	Cases   []OpCase // Match
}

type OpKind int

const (
	OpSetValue OpKind = iota
	OpSetInput
	OpForce
	OpBind
	OpInvoke
	OpBuiltin
	OpMatch
)

// NumDeps returns the number of in-frame data dependencies this op has,
// i.e. the number of "dependency complete" notifications the scheduler must
// see before the op is ready to run. SetValue and SetInput have none: they
// are part of the initial ready set (I5).
func (o Op) NumDeps() OpCount {
	switch o.Kind {
	case OpForce:
		return 1
	case OpBind:
		return 1 + OpCount(len(o.Args))
	case OpInvoke:
		return 1
	case OpBuiltin:
		return OpCount(len(o.Args))
	case OpMatch:
		// scrutinee plus every case target: graph.go's outEdges() makes a
		// Match node a consumer of MatchScrut and each case's Target, so
		// flatten.go wires that many producers to decrement this op's
		// depsLeft before it is ready.
		return 1 + OpCount(len(o.Cases))
	default:
		return 0
	}
}

// Code is a flattened register-machine program: the op list, the initial
// ready set, the embedded constants pool, and the return register.
type Code struct {
	Ret       RegID
	Ready     []OpAddr
	Ops       []Op
	Constants []Handle
}
