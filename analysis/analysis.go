// Package analysis answers which identifiers a decompiled block reads,
// binds and deletes. It is the boundary used by dependency-driven
// re-execution: a block needs re-running when one of its reads changes,
// and its writes are what it produces.
package analysis

import (
	"slices"
	"strings"

	"github.com/chazu/pyrecon/pkg/pyast"
)

// Names lists identifiers by use. Each list is sorted and has no
// duplicates.
type Names struct {
	Reads   []string
	Writes  []string
	Deletes []string
}

// Analyze collects the names used by a block body. Names are classified by
// their context tag; owners of attribute and subscript targets are reads.
// An augmented assignment both reads and writes its target. Imports and
// definitions bind names. Definition bodies are a separate scope and are
// not entered. The None singleton is not a read.
func Analyze(body []pyast.Node) Names {
	c := &collector{
		reads:   map[string]bool{},
		writes:  map[string]bool{},
		deletes: map[string]bool{},
	}
	pyast.InspectAll(body, c.visit)
	return Names{
		Reads:   sortedKeys(c.reads),
		Writes:  sortedKeys(c.writes),
		Deletes: sortedKeys(c.deletes),
	}
}

type collector struct {
	reads, writes, deletes map[string]bool
}

func (c *collector) visit(n pyast.Node) bool {
	switch n := n.(type) {
	case *pyast.Name:
		switch n.Ctx {
		case pyast.Load:
			if n.ID != "None" {
				c.reads[n.ID] = true
			}
		case pyast.Store:
			c.writes[n.ID] = true
		case pyast.Del:
			c.deletes[n.ID] = true
		}
	case *pyast.AugAssign:
		if name, ok := n.Target.(*pyast.Name); ok {
			c.reads[name.ID] = true
		}
	case *pyast.Import:
		for _, a := range n.Names {
			c.writes[boundName(a, true)] = true
		}
	case *pyast.ImportFrom:
		for _, a := range n.Names {
			if a.Name != "*" {
				c.writes[boundName(a, false)] = true
			}
		}
	case *pyast.FunctionDef:
		c.bindDef(n.Name, n.Decorators)
		return false
	case *pyast.ClassDef:
		c.bindDef(n.Name, n.Decorators)
		for _, b := range n.Bases {
			pyast.Inspect(b, c.visit)
		}
		return false
	}
	return true
}

func (c *collector) bindDef(name string, decorators []pyast.Expr) {
	if name != "" {
		c.writes[name] = true
	}
	for _, d := range decorators {
		pyast.Inspect(d, c.visit)
	}
}

// boundName is the identifier an import alias binds. "import a.b" binds a.
func boundName(a *pyast.Alias, dotted bool) string {
	if a.AsName != "" {
		return a.AsName
	}
	if dotted {
		top, _, _ := strings.Cut(a.Name, ".")
		return top
	}
	return a.Name
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SExpr renders the names as "(reads ...) (writes ...) (deletes ...)".
func (n Names) SExpr() string {
	return list("reads", n.Reads) + " " + list("writes", n.Writes) + " " + list("deletes", n.Deletes)
}

func list(head string, ids []string) string {
	var sb strings.Builder
	sb.WriteString("(" + head)
	for _, id := range ids {
		sb.WriteString(" \"" + id + "\"")
	}
	sb.WriteString(")")
	return sb.String()
}
