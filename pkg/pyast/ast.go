package pyast

// ---------------------------------------------------------------------------
// AST: source-level tree rebuilt from Python 2 bytecode
// ---------------------------------------------------------------------------

// Pos is the source line a node was reconstructed from. It is embedded in
// every node.
type Pos int

// Line returns the 1-based source line, or 0 when unknown.
func (p Pos) Line() int { return int(p) }

// Node is the interface implemented by all AST nodes and stack sentinels.
type Node interface {
	Line() int
	node() // marker method
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Literal is a string or numeric constant. Value is a string, int64,
// float64 or complex128.
type Literal struct {
	Pos
	Value any
}

func (n *Literal) node() {}
func (n *Literal) expr() {}

// Name is an identifier reference. The None singleton is a Name too.
type Name struct {
	Pos
	ID  string
	Ctx Context
}

func (n *Name) node() {}
func (n *Name) expr() {}

// BinOp is a binary arithmetic or bitwise operation.
type BinOp struct {
	Pos
	Left  Expr
	Op    Operator
	Right Expr
}

func (n *BinOp) node() {}
func (n *BinOp) expr() {}

// UnaryOp is a prefix operation.
type UnaryOp struct {
	Pos
	Op      UnaryOperator
	Operand Expr
}

func (n *UnaryOp) node() {}
func (n *UnaryOp) expr() {}

// Repr is the backquote conversion `x`.
type Repr struct {
	Pos
	Value Expr
}

func (n *Repr) node() {}
func (n *Repr) expr() {}

// Compare is a comparison. Ops and Comparators are parallel.
type Compare struct {
	Pos
	Left        Expr
	Ops         []CmpOp
	Comparators []Expr
}

func (n *Compare) node() {}
func (n *Compare) expr() {}

// IfExp is a conditional expression: Body if Test else OrElse.
type IfExp struct {
	Pos
	Test   Expr
	Body   Expr
	OrElse Expr
}

func (n *IfExp) node() {}
func (n *IfExp) expr() {}

// Keyword is one name=value argument of a Call.
type Keyword struct {
	Arg   string
	Value Expr
}

// Call is a function call. StarArgs and KwArgs are nil when absent.
type Call struct {
	Pos
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
	StarArgs Expr
	KwArgs   Expr
}

func (n *Call) node() {}
func (n *Call) expr() {}

// Attribute is value.attr.
type Attribute struct {
	Pos
	Value Expr
	Attr  string
	Ctx   Context
}

func (n *Attribute) node() {}
func (n *Attribute) expr() {}

// Subscript is value[slice].
type Subscript struct {
	Pos
	Value Expr
	Slice SliceKind
	Ctx   Context
}

func (n *Subscript) node() {}
func (n *Subscript) expr() {}

// Yield is a yield expression. Value may be nil.
type Yield struct {
	Pos
	Value Expr
}

func (n *Yield) node() {}
func (n *Yield) expr() {}

// List is a list display or a list assignment target.
type List struct {
	Pos
	Elts []Expr
	Ctx  Context
}

func (n *List) node() {}
func (n *List) expr() {}

// Tuple is a tuple display or a tuple assignment target.
type Tuple struct {
	Pos
	Elts []Expr
	Ctx  Context
}

func (n *Tuple) node() {}
func (n *Tuple) expr() {}

// Set is a set display.
type Set struct {
	Pos
	Elts []Expr
}

func (n *Set) node() {}
func (n *Set) expr() {}

// Dict is a dict display. Keys and Values are parallel.
type Dict struct {
	Pos
	Keys   []Expr
	Values []Expr
}

func (n *Dict) node() {}
func (n *Dict) expr() {}

// ConstTuple is a folded tuple constant as loaded by LOAD_CONST. Values
// holds raw argument values (nil, string, int64, float64, complex128 or
// []any).
type ConstTuple struct {
	Pos
	Values []any
}

func (n *ConstTuple) node() {}
func (n *ConstTuple) expr() {}

// ---------------------------------------------------------------------------
// Slice kinds
// ---------------------------------------------------------------------------

// SliceKind is the index part of a Subscript: *Index, *Slice or *ExtSlice.
type SliceKind interface {
	Node
	slice() // marker method
}

// Index is a plain subscript index.
type Index struct {
	Pos
	Value Expr
}

func (n *Index) node()  {}
func (n *Index) slice() {}

// Slice is lower:upper:step. Any bound may be nil. A Slice built by
// BUILD_SLICE lives on the stack as an expression until a subscript
// consumes it.
type Slice struct {
	Pos
	Lower Expr
	Upper Expr
	Step  Expr
}

func (n *Slice) node()  {}
func (n *Slice) expr()  {}
func (n *Slice) slice() {}

// ExtSlice is a multi-dimensional index containing at least one Slice.
type ExtSlice struct {
	Pos
	Dims []SliceKind
}

func (n *ExtSlice) node()  {}
func (n *ExtSlice) slice() {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Alias is one imported name, with its optional "as" binding.
type Alias struct {
	Name   string
	AsName string
}

// Assign binds Value to every target, left to right.
type Assign struct {
	Pos
	Targets []Expr
	Value   Expr
}

func (n *Assign) node() {}
func (n *Assign) stmt() {}

// AugAssign is target op= value.
type AugAssign struct {
	Pos
	Target Expr
	Op     Operator
	Value  Expr
}

func (n *AugAssign) node() {}
func (n *AugAssign) stmt() {}

// Import is "import name". IsFrom marks the transient form that precedes
// IMPORT_FROM / IMPORT_STAR.
type Import struct {
	Pos
	Names  []*Alias
	IsFrom bool
	Level  int
}

func (n *Import) node() {}
func (n *Import) stmt() {}

// ImportFrom is "from module import names".
type ImportFrom struct {
	Pos
	Module string
	Names  []*Alias
	Level  int
}

func (n *ImportFrom) node() {}
func (n *ImportFrom) stmt() {}

// Return is a return statement. Value is never nil; "return" alone
// returns the None name.
type Return struct {
	Pos
	Value Expr
}

func (n *Return) node() {}
func (n *Return) stmt() {}

// Delete is a del statement.
type Delete struct {
	Pos
	Targets []Expr
}

func (n *Delete) node() {}
func (n *Delete) stmt() {}

// Print is the print statement. Dest is nil for stdout.
type Print struct {
	Pos
	Dest   Expr
	Values []Expr
	NL     bool
}

func (n *Print) node() {}
func (n *Print) stmt() {}

// Raise is raise [type [, inst [, tback]]].
type Raise struct {
	Pos
	Type  Expr
	Inst  Expr
	Tback Expr
}

func (n *Raise) node() {}
func (n *Raise) stmt() {}

// Exec is exec body [in globals [, locals]].
type Exec struct {
	Pos
	Body    Expr
	Globals Expr
	Locals  Expr
}

func (n *Exec) node() {}
func (n *Exec) stmt() {}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Pos
	Value Expr
}

func (n *ExprStmt) node() {}
func (n *ExprStmt) stmt() {}

// FunctionDef is a function definition. Definitions are produced by the
// caller; the decompiler only names and decorates them.
type FunctionDef struct {
	Pos
	Name       string
	Args       []string
	Decorators []Expr
	Body       []Node
}

func (n *FunctionDef) node() {}
func (n *FunctionDef) stmt() {}

// ClassDef is a class definition.
type ClassDef struct {
	Pos
	Name       string
	Bases      []Expr
	Decorators []Expr
	Body       []Node
}

func (n *ClassDef) node() {}
func (n *ClassDef) stmt() {}

// If is a two-branch conditional statement. It arrives from control-flow
// reconstruction and is turned into an IfExp when consumed as a value.
type If struct {
	Pos
	Test   Expr
	Body   []Node
	OrElse []Node
}

func (n *If) node() {}
func (n *If) stmt() {}

// ---------------------------------------------------------------------------
// Stack sentinels
// ---------------------------------------------------------------------------

// ClosureCell marks a captured-variable cell loaded by LOAD_CLOSURE. It has
// no source form and never appears in a finished tree.
type ClosureCell struct {
	Pos
	Name string
}

func (n *ClosureCell) node() {}

// Placeholder stands in for the value of one unpacking target while its
// store instructions are folded.
type Placeholder struct {
	Pos
}

func (n *Placeholder) node() {}
func (n *Placeholder) expr() {}
