package types

import (
	"strings"
)

const (
	precArrow = iota
	precUnion
	precIntersection
	precAtom
)

// showType prints t so that it can be read back by typeparse,
// adding parentheses only where prec requires them
func showType(t Type, prec int) string {
	switch t := t.(type) {
	case TraitType:
		if len(t.Args) == 0 {
			return t.Name
		}
		return t.Name + `[\` + joinStaticArgs(t.Args) + `\]`
	case TupleType:
		parts := make([]string, 0, len(t.Elements)+len(t.Keywords)+1)
		for _, elem := range t.Elements {
			parts = append(parts, showType(elem, precArrow))
		}
		if t.VarArgs != nil {
			parts = append(parts, showType(t.VarArgs, precArrow)+"...")
		}
		for _, k := range t.Keywords {
			parts = append(parts, k.Name+"="+showType(k.Type, precArrow))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ArrowType:
		sb := strings.Builder{}
		if len(t.StaticParams) > 0 {
			sb.WriteString(`[\`)
			for i, p := range t.StaticParams {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.String())
			}
			sb.WriteString(`\] `)
		}
		sb.WriteString(showType(t.Domain, precUnion))
		sb.WriteString("->")
		sb.WriteString(showType(t.Range, precArrow))
		if len(t.Effect.Throws) > 0 {
			sb.WriteString(" throws {")
			for i, thrown := range t.Effect.Throws {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(showType(thrown, precArrow))
			}
			sb.WriteString("}")
		}
		if t.Effect.IO {
			sb.WriteString(" io")
		}
		return parenthesize(sb.String(), prec > precArrow)
	case UnionType:
		parts := make([]string, len(t.Elements))
		for i, elem := range t.Elements {
			parts[i] = showType(elem, precIntersection)
		}
		return parenthesize(strings.Join(parts, "|"), prec > precUnion)
	case IntersectionType:
		parts := make([]string, len(t.Elements))
		for i, elem := range t.Elements {
			parts[i] = showType(elem, precAtom)
		}
		return parenthesize(strings.Join(parts, "&"), prec > precIntersection)
	case FixedPointType:
		return parenthesize("fix "+t.Binder.String()+"."+showType(t.Body, precArrow), prec > precArrow)
	case ArrayType:
		extents := make([]string, len(t.Extents))
		for i, e := range t.Extents {
			extents[i] = e.String()
		}
		return showType(t.Elem, precAtom) + "[" + strings.Join(extents, ", ") + "]"
	case MatrixType:
		extents := make([]string, len(t.Extents))
		for i, e := range t.Extents {
			extents[i] = e.String()
		}
		return showType(t.Elem, precAtom) + "^(" + strings.Join(extents, " x ") + ")"
	default:
		return t.String()
	}
}

func parenthesize(s string, wrap bool) string {
	if wrap {
		return "(" + s + ")"
	}
	return s
}

func joinStaticArgs(args []StaticArg) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, ", ")
}
