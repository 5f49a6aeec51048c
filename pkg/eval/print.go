package eval

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// Print renders a value of type t the way the ML top level does:
// ~3, 3.5, "s", #"c", (1,2), [1,2], {a=1,b=2}, SOME 3, fn.
func Print(v any, t types.Type) string {
	var b strings.Builder
	printValue(&b, v, t)
	return b.String()
}

func printValue(b *strings.Builder, v any, t types.Type) {
	switch t := t.(type) {
	case *types.Fn:
		b.WriteString("fn")
		return
	case *types.Tuple:
		if values, ok := v.([]any); ok && len(values) == len(t.Args) {
			b.WriteByte('(')
			for i, e := range values {
				if i > 0 {
					b.WriteByte(',')
				}
				printValue(b, e, t.Args[i])
			}
			b.WriteByte(')')
			return
		}
	case *types.List:
		if values, ok := v.([]any); ok {
			b.WriteByte('[')
			for i, e := range values {
				if i > 0 {
					b.WriteByte(',')
				}
				printValue(b, e, t.Elem)
			}
			b.WriteByte(']')
			return
		}
	case *types.Record:
		if values, ok := v.([]any); ok && len(values) == len(t.Labels) {
			b.WriteByte('{')
			for i, e := range values {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(t.Labels[i])
				b.WriteByte('=')
				printValue(b, e, t.Args[i])
			}
			b.WriteByte('}')
			return
		}
	case *types.Data:
		if c, ok := v.([]any); ok && len(c) > 0 {
			if tag, ok := c[0].(string); ok {
				b.WriteString(tag)
				if len(c) == 2 {
					b.WriteByte(' ')
					var payload types.Type
					if len(t.Args) > 0 {
						payload = t.Args[0]
					}
					printPayload(b, c[1], payload)
				}
				return
			}
		}
	}
	printScalar(b, v)
}

// printPayload parenthesizes constructor payloads that are themselves
// constructor applications.
func printPayload(b *strings.Builder, v any, t types.Type) {
	if d, ok := t.(*types.Data); ok {
		if c, ok := v.([]any); ok && len(c) == 2 {
			b.WriteByte('(')
			printValue(b, v, d)
			b.WriteByte(')')
			return
		}
	}
	printValue(b, v, t)
}

// printScalar renders a value from its Go representation alone. It is used
// for primitives and when the static type is a type variable.
func printScalar(b *strings.Builder, v any) {
	switch v := v.(type) {
	case int:
		b.WriteString(ast.FormatInt(v))
	case float64:
		b.WriteString(ast.FormatReal(v))
	case string:
		b.WriteString(ast.FormatString(v))
	case rune:
		b.WriteString(ast.FormatChar(v))
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case UnitValue:
		b.WriteString("()")
	case Applicable:
		b.WriteString("fn")
	case []any:
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			printScalar(b, e)
		}
		b.WriteByte(']')
	case nil:
		b.WriteString("-")
	default:
		b.WriteString(describe(v))
	}
}
