package bytecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseListing reads a text listing, one instruction per line:
//
//	[line] OPNAME [arg]
//
// A leading integer sets the source line for that and the following
// instructions. '#' starts a comment. Argument syntax is described in the package documentation.
func ParseListing(src string) ([]Instruction, error) {
	var out []Instruction
	line := 0
	for n, text := range strings.Split(src, "\n") {
		text = stripComment(text)
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		rest := strings.TrimSpace(text)
		if v, err := strconv.Atoi(fields[0]); err == nil {
			if len(fields) == 1 {
				return nil, fmt.Errorf("listing line %d: missing opcode", n+1)
			}
			line = v
			rest = strings.TrimSpace(rest[len(fields[0]):])
			fields = fields[1:]
		}
		name := fields[0]
		argText := strings.TrimSpace(rest[len(name):])

		var arg any
		if argText != "" {
			var err error
			arg, err = parseTopArg(argText)
			if err != nil {
				return nil, fmt.Errorf("listing line %d: %w", n+1, err)
			}
		}
		ins, err := New(name, arg)
		if err != nil {
			return nil, fmt.Errorf("listing line %d: %w", n+1, err)
		}
		ins.Line = line
		ins.Offset = len(out)
		out = append(out, ins)
	}
	return out, nil
}

// FormatListing renders instructions in the syntax ParseListing reads.
func FormatListing(instrs []Instruction) string {
	var sb strings.Builder
	for _, ins := range instrs {
		line := fmt.Sprintf("%4d  %-22s", ins.Line, ins.Name)
		if ins.Arg != nil || ins.Op.HasArg() {
			line += FormatArg(ins.Op, ins.Arg)
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatArg renders a decoded argument. Strings loaded by LOAD_CONST are
// always quoted so they stay distinct from None.
func FormatArg(op Opcode, arg any) string {
	switch v := arg.(type) {
	case nil:
		return "None"
	case string:
		if op != LoadConst && isBareWord(v) {
			return v
		}
		return strconv.Quote(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case complex128:
		if real(v) == 0 {
			return formatFloat(imag(v)) + "j"
		}
		im := formatFloat(imag(v))
		if !strings.HasPrefix(im, "-") {
			im = "+" + im
		}
		return formatFloat(real(v)) + im + "j"
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = FormatArg(LoadConst, e)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("%v", arg)
}

// formatFloat writes infinities as the overflowing literal 1e999, which
// reads back as the same infinity.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "1e999"
	case math.IsInf(f, -1):
		return "-1e999"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func isBareWord(s string) bool {
	if s == "" || s == "None" || looksNumeric(s) {
		return false
	}
	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.<>=!*", r)) {
			return false
		}
	}
	return true
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
	}
	return i < len(s) && s[i] >= '0' && s[i] <= '9'
}

// stripComment removes a trailing '#' comment outside quotes.
func stripComment(text string) string {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == '#':
			return text[:i]
		}
	}
	return text
}

// parseTopArg parses the argument text of a listing line. Unlike tuple
// elements, a bare top-level word may contain spaces ("not in").
func parseTopArg(text string) (any, error) {
	switch {
	case text[0] == '(' || text[0] == '"' || text[0] == '\'' || looksNumeric(text):
		p := &argParser{src: text}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos != len(p.src) {
			return nil, fmt.Errorf("trailing text after argument: %q", p.src[p.pos:])
		}
		return v, nil
	case text == "None":
		return nil, nil
	}
	return strings.Join(strings.Fields(text), " "), nil
}

type argParser struct {
	src string
	pos int
}

func (p *argParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *argParser) value() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of argument")
	}
	switch c := p.src[p.pos]; c {
	case '(':
		return p.tuple()
	case '"', '\'':
		return p.str(c)
	}
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(" \t,()", rune(p.src[p.pos])) {
		p.pos++
	}
	word := p.src[start:p.pos]
	if word == "None" {
		return nil, nil
	}
	if looksNumeric(word) {
		return parseNumber(word)
	}
	return word, nil
}

func (p *argParser) tuple() (any, error) {
	p.pos++ // (
	items := []any{}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated tuple")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == ')' {
			continue
		}
		return nil, fmt.Errorf("expected ',' or ')' in tuple")
	}
}

func (p *argParser) str(quote byte) (any, error) {
	start := p.pos
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			if quote == '"' {
				return strconv.Unquote(p.src[start:p.pos])
			}
			return sb.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch e := p.src[p.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}
	return nil, fmt.Errorf("unterminated string")
}

func parseNumber(word string) (any, error) {
	if strings.HasSuffix(word, "j") || strings.HasSuffix(word, "J") {
		c, err := strconv.ParseComplex(word[:len(word)-1]+"i", 128)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("bad complex literal %q", word)
		}
		return c, nil
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return i, nil
	}
	// Overflow yields the signed infinity, as it does for a Python literal.
	f, err := strconv.ParseFloat(word, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("bad number %q", word)
	}
	return f, nil
}
