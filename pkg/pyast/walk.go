package pyast

// Inspect traverses the tree rooted at node in depth-first field order,
// calling f for each node. If f returns false the children of that node are
// skipped. Nil children are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, c := range Children(node) {
		Inspect(c, f)
	}
}

// InspectAll runs Inspect over every node of a block body.
func InspectAll(body []Node, f func(Node) bool) {
	for _, n := range body {
		Inspect(n, f)
	}
}

// Children returns the direct child nodes of n in field order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			add(e)
		}
	}

	switch n := n.(type) {
	case *BinOp:
		add(n.Left, n.Right)
	case *UnaryOp:
		add(n.Operand)
	case *Repr:
		add(n.Value)
	case *Compare:
		add(n.Left)
		addExprs(n.Comparators)
	case *IfExp:
		add(n.Test, n.Body, n.OrElse)
	case *Call:
		add(n.Func)
		addExprs(n.Args)
		for _, kw := range n.Keywords {
			add(kw.Value)
		}
		add(n.StarArgs, n.KwArgs)
	case *Attribute:
		add(n.Value)
	case *Subscript:
		add(n.Value, n.Slice)
	case *Index:
		add(n.Value)
	case *Slice:
		add(n.Lower, n.Upper, n.Step)
	case *ExtSlice:
		for _, d := range n.Dims {
			add(d)
		}
	case *Yield:
		add(n.Value)
	case *List:
		addExprs(n.Elts)
	case *Tuple:
		addExprs(n.Elts)
	case *Set:
		addExprs(n.Elts)
	case *Dict:
		for i := range n.Keys {
			add(n.Keys[i], n.Values[i])
		}
	case *Assign:
		addExprs(n.Targets)
		add(n.Value)
	case *AugAssign:
		add(n.Target, n.Value)
	case *Return:
		add(n.Value)
	case *Delete:
		addExprs(n.Targets)
	case *Print:
		add(n.Dest)
		addExprs(n.Values)
	case *Raise:
		add(n.Type, n.Inst, n.Tback)
	case *Exec:
		add(n.Body, n.Globals, n.Locals)
	case *ExprStmt:
		add(n.Value)
	case *FunctionDef:
		addExprs(n.Decorators)
		add(n.Body...)
	case *ClassDef:
		addExprs(n.Bases)
		addExprs(n.Decorators)
		add(n.Body...)
	case *If:
		add(n.Test)
		add(n.Body...)
		add(n.OrElse...)
	}
	return out
}
