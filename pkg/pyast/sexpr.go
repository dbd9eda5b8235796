package pyast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SExpr renders a node as an s-expression. The form is stable and is what
// tests, the CLI and the result cache compare against:
//
//	(assign (targets (name "y" store)) "hello")
//	(expr (compare (name "x" load) eq 1))
//
// Absent optional children print as nil.
func SExpr(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// SExprBlock renders a block body, one statement per line.
func SExprBlock(body []Node) string {
	var sb strings.Builder
	for i, n := range body {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeNode(&sb, n)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	w := func(parts ...any) {
		strs := make([]string, 0, len(parts))
		for _, p := range parts {
			switch p := p.(type) {
			case nil:
				strs = append(strs, "nil")
			case Node:
				strs = append(strs, SExpr(p))
			case string:
				if p != "" {
					strs = append(strs, p)
				}
			case []Node:
				for _, c := range p {
					strs = append(strs, SExpr(c))
				}
			default:
				strs = append(strs, fmt.Sprint(p))
			}
		}
		sb.WriteString("(" + strings.Join(strs, " ") + ")")
	}
	exprs := func(es []Expr) []Node {
		out := make([]Node, len(es))
		for i, e := range es {
			out[i] = e
		}
		return out
	}
	opt := func(e Expr) any {
		if e == nil {
			return "nil"
		}
		return e
	}

	switch n := n.(type) {
	case nil:
		sb.WriteString("nil")
	case *Literal:
		sb.WriteString(formatValue(n.Value))
	case *Name:
		w("name", quote(n.ID), n.Ctx.String())
	case *BinOp:
		w("binop", n.Op.String(), n.Left, n.Right)
	case *UnaryOp:
		w("unaryop", n.Op.String(), n.Operand)
	case *Repr:
		w("repr", n.Value)
	case *Compare:
		parts := []any{"compare", n.Left}
		for i, op := range n.Ops {
			parts = append(parts, op.String(), n.Comparators[i])
		}
		w(parts...)
	case *IfExp:
		w("ifexp", n.Test, n.Body, n.OrElse)
	case *Call:
		parts := []any{"call", n.Func}
		for _, a := range n.Args {
			parts = append(parts, a)
		}
		for _, kw := range n.Keywords {
			parts = append(parts, keywordSExpr(kw))
		}
		if n.StarArgs != nil {
			parts = append(parts, "(star "+SExpr(n.StarArgs)+")")
		}
		if n.KwArgs != nil {
			parts = append(parts, "(dstar "+SExpr(n.KwArgs)+")")
		}
		w(parts...)
	case *Attribute:
		w("attr", n.Value, quote(n.Attr), n.Ctx.String())
	case *Subscript:
		w("subscript", n.Value, n.Slice, n.Ctx.String())
	case *Index:
		w("index", n.Value)
	case *Slice:
		w("slice", opt(n.Lower), opt(n.Upper), opt(n.Step))
	case *ExtSlice:
		dims := make([]Node, len(n.Dims))
		for i, d := range n.Dims {
			dims[i] = d
		}
		w("extslice", dims)
	case *Yield:
		w("yield", opt(n.Value))
	case *List:
		w("list", n.Ctx.String(), exprs(n.Elts))
	case *Tuple:
		w("tuple", n.Ctx.String(), exprs(n.Elts))
	case *Set:
		w("set", exprs(n.Elts))
	case *Dict:
		parts := []any{"dict"}
		for i := range n.Keys {
			parts = append(parts, "("+SExpr(n.Keys[i])+" "+SExpr(n.Values[i])+")")
		}
		w(parts...)
	case *ConstTuple:
		sb.WriteString(formatValue(n.Values))
	case *Assign:
		w("assign", group("targets", exprs(n.Targets)), n.Value)
	case *AugAssign:
		w("augassign", n.Target, n.Op.String(), n.Value)
	case *Import:
		w("import", aliases(n.Names))
	case *ImportFrom:
		w("importfrom", quote(n.Module), n.Level, aliases(n.Names))
	case *Return:
		w("return", opt(n.Value))
	case *Delete:
		w("delete", exprs(n.Targets))
	case *Print:
		nl := "nonl"
		if n.NL {
			nl = "nl"
		}
		w("print", opt(n.Dest), nl, exprs(n.Values))
	case *Raise:
		w("raise", opt(n.Type), opt(n.Inst), opt(n.Tback))
	case *Exec:
		w("exec", n.Body, opt(n.Globals), opt(n.Locals))
	case *ExprStmt:
		w("expr", n.Value)
	case *FunctionDef:
		w("def", quote(n.Name), group("decorators", exprs(n.Decorators)), n.Body)
	case *ClassDef:
		w("class", quote(n.Name), group("bases", exprs(n.Bases)),
			group("decorators", exprs(n.Decorators)), n.Body)
	case *If:
		w("if", n.Test, group("body", n.Body), group("orelse", n.OrElse))
	case *ClosureCell:
		w("closure", quote(n.Name))
	case *Placeholder:
		sb.WriteString("placeholder")
	default:
		fmt.Fprintf(sb, "(unknown %T)", n)
	}
}

// group renders (head child...).
func group(head string, nodes []Node) string {
	parts := []string{head}
	for _, n := range nodes {
		parts = append(parts, SExpr(n))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func keywordSExpr(kw *Keyword) string {
	return "(kw " + quote(kw.Arg) + " " + SExpr(kw.Value) + ")"
}

func aliases(names []*Alias) string {
	parts := make([]string, len(names))
	for i, a := range names {
		if a.AsName == "" {
			parts[i] = "(alias " + quote(a.Name) + ")"
		} else {
			parts[i] = "(alias " + quote(a.Name) + " " + quote(a.AsName) + ")"
		}
	}
	return strings.Join(parts, " ")
}

// quote writes a string in the s-expression reader's syntax, which only
// knows the \" and \\ escapes.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// formatValue renders a raw constant.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "none"
	case string:
		return quote(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case complex128:
		return "(complex " + formatFloat(real(v)) + " " + formatFloat(imag(v)) + ")"
	case []any:
		parts := make([]string, 0, len(v)+1)
		parts = append(parts, "consttuple")
		for _, e := range v {
			parts = append(parts, formatValue(e))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return quote(strconv.FormatFloat(f, 'g', -1, 64))
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
