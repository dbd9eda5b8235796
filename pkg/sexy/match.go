package sexy

import "fmt"

// Match reports whether got matches pattern. "..." in a pattern matches any
// single datum; as the last item of a list it matches any remaining items,
// including none. The error names the path of the first mismatch.
func Match(pattern, got *Node) error {
	return match(pattern, got, "root")
}

// MatchAll matches a sequence of data item by item.
func MatchAll(patterns, got []*Node) error {
	return match(NewList(patterns), NewList(got), "block")
}

func match(pattern, got *Node, path string) error {
	if pattern.Type == NodeEllipsis {
		return nil
	}
	if pattern.Type != got.Type {
		return fmt.Errorf("at %s: expected %s, got %s", path, pattern, got)
	}
	if pattern.IsAtom() {
		if pattern.Text != got.Text {
			return fmt.Errorf("at %s: expected %s, got %s", path, pattern, got)
		}
		return nil
	}

	items := pattern.Items
	rest := false
	if n := len(items); n > 0 && items[n-1].Type == NodeEllipsis {
		items = items[:n-1]
		rest = true
	}
	if len(got.Items) < len(items) || (!rest && len(got.Items) != len(items)) {
		return fmt.Errorf("at %s: expected %d items, got %d in %s", path, len(items), len(got.Items), got)
	}
	for i, item := range items {
		if err := match(item, got.Items[i], fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}
