// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package expr

import (
	"unicode"
	"unicode/utf8"
)

// Tokens
const (
	EOF Type = iota
	Raw
	Var
	Const
	Index
	Not
	And
	Or
	Xor
	Star
	ParenOpen
	ParenClose
)

// Type is a token type.
//
type Type int

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   int
	Value string
}

type stateFn func(l *lexer) stateFn

type lexer struct {
	input string
	pos   int // current position
	start int // start of the current token
	items []Item
}

// Lex splits input into tokens. The last item is always EOF or Raw (on the first
// invalid character).
//
func Lex(input string) []Item {
	l := &lexer{input: input}
	for state := lexInit; state != nil; {
		state = state(l)
	}
	return l.items
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.pos++
		return utf8.RuneError
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	return r
}

func (l *lexer) backup() {
	if l.pos > len(l.input) {
		l.pos--
		return
	}
	_, w := utf8.DecodeLastRuneInString(l.input[:l.pos])
	l.pos -= w
}

func (l *lexer) emit(t Type) {
	end := l.pos
	if end > len(l.input) {
		end = len(l.input)
	}
	l.items = append(l.items, Item{Type: t, Pos: l.start, Value: l.input[l.start:end]})
	l.start = l.pos
}

func lexInit(l *lexer) stateFn {
	if l.pos >= len(l.input) {
		l.start = len(l.input)
		l.emit(EOF)
		return nil
	}
	r := l.next()
	switch {
	case unicode.IsSpace(r):
		for unicode.IsSpace(r) {
			r = l.next()
		}
		l.backup()
		l.start = l.pos
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case r == '0' || r == '1':
		l.emit(Const)
	case r == '$':
		l.emit(Index)
	case r == '!' || r == '~':
		l.emit(Not)
	case r == '&' || r == '.':
		l.emit(And)
	case r == '|' || r == '+':
		l.emit(Or)
	case r == '^':
		l.emit(Xor)
	case r == '*':
		l.emit(Star)
	case r == '(':
		l.emit(ParenOpen)
	case r == ')':
		l.emit(ParenClose)
	default:
		l.emit(Raw)
		return nil
	}
	return lexInit
}

func lexIdent(l *lexer) stateFn {
	r := l.next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		r = l.next()
	}
	l.backup()
	l.emit(Var)
	return lexInit
}
