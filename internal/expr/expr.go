// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package expr parses and evaluates the boolean expressions used to describe
// expression-based components.
//
// Grammar:
//
//	expr    = xor { "|" xor }
//	xor     = and { "^" and }
//	and     = unary { "&" unary }
//	unary   = "!" unary | primary
//	primary = var | "$" | "0" | "1" | "(" expr ")" | ("&" | "|" | "^") "*"
//
// A var is either one of the input names given to Parse or a single letter, A
// being input 0, B input 1 and so on. "$" is the input at the replication
// index: an expression using it yields one output per input. The reduce forms
// "&*", "|*" and "^*" apply the operator to all inputs. "." and "+" are
// accepted as aliases of "&" and "|", "~" as an alias of "!".
//
package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/db47h/logicsim/logic"
	"github.com/pkg/errors"
)

type node interface {
	eval(in []logic.State, i int) logic.State
}

type (
	varNode   int
	constNode logic.State
	indexNode struct{}
	notNode   struct{ x node }
	opNode    struct {
		op   func(...logic.State) logic.State
		x, y node
	}
	reduceNode struct {
		op func(...logic.State) logic.State
	}
)

func (n varNode) eval(in []logic.State, _ int) logic.State {
	if int(n) >= len(in) {
		return logic.Unknown
	}
	return in[n]
}

func (n constNode) eval([]logic.State, int) logic.State { return logic.State(n) }

func (indexNode) eval(in []logic.State, i int) logic.State {
	if i < 0 || i >= len(in) {
		return logic.Unknown
	}
	return in[i]
}

func (n notNode) eval(in []logic.State, i int) logic.State { return logic.Not(n.x.eval(in, i)) }

func (n opNode) eval(in []logic.State, i int) logic.State {
	return n.op(n.x.eval(in, i), n.y.eval(in, i))
}

func (n reduceNode) eval(in []logic.State, _ int) logic.State { return n.op(in...) }

// Expr is a compiled expression.
//
type Expr struct {
	src        string
	root       node
	maxInput   int
	replicated bool
}

// String returns the source of the expression.
//
func (e *Expr) String() string { return e.src }

// MaxInput returns the highest input index referenced by name, or -1.
//
func (e *Expr) MaxInput() int { return e.maxInput }

// Replicated returns true if the expression uses the replication index "$".
//
func (e *Expr) Replicated() bool { return e.replicated }

// Outputs returns the number of outputs the expression yields for the given
// input count.
//
func (e *Expr) Outputs(inputs int) int {
	if e.replicated {
		return inputs
	}
	return 1
}

// Eval evaluates the expression for replication index i.
//
func (e *Expr) Eval(in []logic.State, i int) logic.State {
	return e.root.eval(in, i)
}

// Outputs returns the total output count of a set of expressions.
//
func Outputs(es []*Expr, inputs int) int {
	n := 0
	for _, e := range es {
		n += e.Outputs(inputs)
	}
	return n
}

// EvalAll evaluates all expressions, expanding replicated ones.
//
func EvalAll(es []*Expr, in []logic.State) []logic.State {
	out := make([]logic.State, 0, Outputs(es, len(in)))
	for _, e := range es {
		if !e.replicated {
			out = append(out, e.Eval(in, 0))
			continue
		}
		for i := range in {
			out = append(out, e.Eval(in, i))
		}
	}
	return out
}

type parser struct {
	src   string
	names []string
	items []Item
	pos   int
	e     *Expr
}

// Parse compiles src. Input names are resolved against names first, then as
// single letters.
//
func Parse(src string, names []string) (*Expr, error) {
	p := &parser{src: src, names: names, items: Lex(src), e: &Expr{src: src, maxInput: -1}}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if it := p.peek(); it.Type != EOF {
		return nil, p.errorf(it, "unexpected %q", it.Value)
	}
	p.e.root = n
	return p.e, nil
}

// MustParse is like Parse but panics on error.
//
func MustParse(src string, names []string) *Expr {
	e, err := Parse(src, names)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) peek() Item { return p.items[p.pos] }

func (p *parser) next() Item {
	it := p.items[p.pos]
	if it.Type != EOF && it.Type != Raw {
		p.pos++
	}
	return it
}

func (p *parser) errorf(it Item, format string, args ...interface{}) error {
	return errors.Errorf("in %q at pos %d: "+format, append([]interface{}{p.src, it.Pos + 1}, args...)...)
}

func (p *parser) binary(t Type, op func(...logic.State) logic.State, operand func() (node, error)) (node, error) {
	x, err := operand()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == t {
		p.next()
		y, err := operand()
		if err != nil {
			return nil, err
		}
		x = opNode{op, x, y}
	}
	return x, nil
}

func (p *parser) expr() (node, error) { return p.binary(Or, logic.Or, p.xor) }
func (p *parser) xor() (node, error)  { return p.binary(Xor, logic.Xor, p.and) }
func (p *parser) and() (node, error)  { return p.binary(And, logic.And, p.unary) }

func (p *parser) unary() (node, error) {
	if p.peek().Type == Not {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	it := p.next()
	switch it.Type {
	case Var:
		i, err := p.resolve(it)
		if err != nil {
			return nil, err
		}
		if i > p.e.maxInput {
			p.e.maxInput = i
		}
		return varNode(i), nil
	case Const:
		if it.Value == "1" {
			return constNode(logic.High), nil
		}
		return constNode(logic.Low), nil
	case Index:
		p.e.replicated = true
		return indexNode{}, nil
	case ParenOpen:
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.Type != ParenClose {
			return nil, p.errorf(c, "expected closing parenthesis")
		}
		return x, nil
	case And, Or, Xor:
		if s := p.next(); s.Type != Star {
			return nil, p.errorf(s, "expected * after reduce operator %q", it.Value)
		}
		return reduceNode{map[Type]func(...logic.State) logic.State{And: logic.And, Or: logic.Or, Xor: logic.Xor}[it.Type]}, nil
	case EOF:
		return nil, p.errorf(it, "unexpected end of expression")
	}
	return nil, p.errorf(it, "unexpected %q", it.Value)
}

func (p *parser) resolve(it Item) (int, error) {
	for i, n := range p.names {
		if n == it.Value {
			return i, nil
		}
	}
	if r, w := utf8.DecodeRuneInString(it.Value); w == len(it.Value) && ('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
		return int(unicode.ToUpper(r) - 'A'), nil
	}
	return 0, p.errorf(it, "unknown input %q (known: %s)", it.Value, strings.Join(p.names, ", "))
}
