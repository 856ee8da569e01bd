// Package cql implements a small text query language over shape terms,
// compiled into filter predicates. It exists for tooling and debug consoles
// that build queries from strings:
//
//	CONTAINS(position, velocity) & !TAG(faction, hostile)
//	EXACT(position) | ALL()
package cql

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/filter"
)

// TermValidator checks that a term name used in a query is known to the
// caller, typically the registry's component table. A nil validator accepts
// every name.
type TermValidator func(name string) error

type cqlOperator int

const (
	opAnd cqlOperator = iota
	opOr
)

var operatorMap = map[string]cqlOperator{"&": opAnd, "|": opOr}

// Capture tells the parser library how to transform a parsed string token
// into the operator type.
func (o *cqlOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type cqlName struct {
	Name string `parser:"@Ident"`
}

type cqlAll struct{}

func (a *cqlAll) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = cqlAll{}
	}
	return nil
}

type cqlNot struct {
	SubExpression *cqlValue `parser:"\"!\" @@"`
}

type cqlExact struct {
	Names []*cqlName `parser:"\"EXACT\" \"(\" (@@ \",\")* @@ \")\""`
}

type cqlContains struct {
	Names []*cqlName `parser:"\"CONTAINS\" \"(\" (@@ \",\")* @@ \")\""`
}

type cqlTag struct {
	Name  *cqlName `parser:"\"TAG\" \"(\" @@ \",\""`
	Value *cqlName `parser:"@@ \")\""`
}

type cqlValue struct {
	All           *cqlAll      `parser:"@(\"ALL\" \"(\" \")\")"`
	Exact         *cqlExact    `parser:"| @@"`
	Contains      *cqlContains `parser:"| @@"`
	Tag           *cqlTag      `parser:"| @@"`
	Not           *cqlNot      `parser:"| @@"`
	Subexpression *cqlTerm     `parser:"| \"(\" @@ \")\""`
}

type cqlFactor struct {
	Base *cqlValue `parser:"@@"`
}

type cqlOpFactor struct {
	Operator cqlOperator `parser:"@(\"&\" | \"|\")"`
	Factor   *cqlFactor  `parser:"@@"`
}

type cqlTerm struct {
	Left  *cqlFactor     `parser:"@@"`
	Right []*cqlOpFactor `parser:"@@*"`
}

// Display

func (o cqlOperator) String() string {
	switch o {
	case opAnd:
		return "&"
	case opOr:
		return "|"
	}
	panic("unsupported operator")
}

func names(list []*cqlName) string {
	parts := make([]string, len(list))
	for i, name := range list {
		parts[i] = name.Name
	}
	return strings.Join(parts, ", ")
}

func (v *cqlValue) String() string {
	switch {
	case v.All != nil:
		return "ALL()"
	case v.Exact != nil:
		return "EXACT(" + names(v.Exact.Names) + ")"
	case v.Contains != nil:
		return "CONTAINS(" + names(v.Contains.Names) + ")"
	case v.Tag != nil:
		return "TAG(" + v.Tag.Name.Name + ", " + v.Tag.Value.Name + ")"
	case v.Not != nil:
		return "!(" + v.Not.SubExpression.String() + ")"
	case v.Subexpression != nil:
		return "(" + v.Subexpression.String() + ")"
	default:
		panic("logic error displaying CQL ast. Check the code in cql.go")
	}
}

func (f *cqlFactor) String() string {
	return f.Base.String()
}

func (o *cqlOpFactor) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Factor)
}

func (t *cqlTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalCQLParser = participle.MustBuild[cqlTerm]()

func validateNames(list []*cqlName, validate TermValidator) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, name := range list {
		if validate != nil {
			if err := validate(name.Name); err != nil {
				return nil, eris.Wrap(err, "")
			}
		}
		out = append(out, name.Name)
	}
	return out, nil
}

func valueToFilter(value *cqlValue, validate TermValidator) (filter.ShapeFilter, error) {
	switch {
	case value.Not != nil:
		result, err := valueToFilter(value.Not.SubExpression, validate)
		if err != nil {
			return nil, err
		}
		return filter.Not(result), nil
	case value.Exact != nil:
		if len(value.Exact.Names) == 0 {
			return nil, eris.New("EXACT cannot have zero parameters")
		}
		list, err := validateNames(value.Exact.Names, validate)
		if err != nil {
			return nil, err
		}
		return filter.Exact(list...), nil
	case value.Contains != nil:
		if len(value.Contains.Names) == 0 {
			return nil, eris.New("CONTAINS cannot have zero parameters")
		}
		list, err := validateNames(value.Contains.Names, validate)
		if err != nil {
			return nil, err
		}
		return filter.Contains(list...), nil
	case value.Tag != nil:
		return filter.Tag(value.Tag.Name.Name, value.Tag.Value.Name), nil
	case value.All != nil:
		return filter.All(), nil
	case value.Subexpression != nil:
		return termToFilter(value.Subexpression, validate)
	default:
		return nil, eris.New("unknown error during conversion from CQL AST to filter")
	}
}

func termToFilter(term *cqlTerm, validate TermValidator) (filter.ShapeFilter, error) {
	if term.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := valueToFilter(term.Left.Base, validate)
	if err != nil {
		return nil, err
	}
	for _, opFactor := range term.Right {
		result, err := valueToFilter(opFactor.Factor.Base, validate)
		if err != nil {
			return nil, err
		}
		switch opFactor.Operator {
		case opAnd:
			acc = filter.And(acc, result)
		case opOr:
			acc = filter.Or(acc, result)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse compiles a query string into a shape filter.
func Parse(cqlText string, validate TermValidator) (filter.ShapeFilter, error) {
	term, err := internalCQLParser.ParseString("", cqlText)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return termToFilter(term, validate)
}
