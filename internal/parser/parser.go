// Package parser parses message templates.
//
// A template is literal text with named placeholders such as ":user" or positional
// placeholders such as "{0}". A placeholder can be followed by a chain of transformers:
// ":user|capitalize", ":count|plural(=0 {none} other {# items})".
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

func Parse(input string) (*Message, error) {
	tokens, err := runLexer(input)
	if err != nil {
		return nil, err
	}

	it := newIterator(tokens)

	msg := &Message{
		Ops: make([]Op, 0),
	}

	for it.HasNext() {
		token, ok := it.Next()
		if !ok {
			break
		}

		switch token.TokenType {
		case literal:
			msg.Ops = append(msg.Ops, LiteralOp{Value: token.Data})
		case replacement, indexReplacement:
			transformers, err := parseTransformers(it)
			if err != nil {
				return nil, fmt.Errorf("unable to parse transformers: %w", err)
			}

			msg.Ops = append(msg.Ops, ReplacementOp{
				Key:          token.Data,
				Positional:   token.TokenType == indexReplacement,
				Transformers: transformers,
			})
		}
	}

	return msg, nil
}

func parseTransformers(it *iterator[Token]) (transformers []Transformer, err error) {
	for it.HasNext() {
		token, ok := it.Peek()
		if !ok || token.TokenType != transformer {
			break
		}

		token, _ = it.Next()

		switch token.Data {
		case "capitalize":
			transformers = append(transformers, CapitalizeTransformer{})
		case "upper":
			transformers = append(transformers, UpperTransformer{})
		case "lower":
			transformers = append(transformers, LowerTransformer{})
		case "replace":
			transformers = append(transformers, ReplaceTransformer{})
		case "plural":
			plural, err := parsePlural(it)
			if err != nil {
				return nil, err
			}

			transformers = append(transformers, plural)
		}
	}

	return transformers, nil
}

func parsePlural(it *iterator[Token]) (PluralTransformer, error) {
	plural := PluralTransformer{
		Cases: make([]PluralCase, 0),
	}

	for it.HasNext() {
		pcase, err := parsePluralCase(it)
		if err != nil {
			return PluralTransformer{}, fmt.Errorf("unable to parse plural case: %w", err)
		}

		if pcase == nil {
			break
		}

		if pcase.Type == OpPluralCaseOther {
			plural.Other = pcase.Ops
			continue
		}

		plural.Cases = append(plural.Cases, *pcase)
	}

	if len(plural.Other) == 0 {
		return PluralTransformer{}, fmt.Errorf("missing 'other' case for plural transformer")
	}

	return plural, nil
}

func parsePluralCase(it *iterator[Token]) (*PluralCase, error) {
	pcase := &PluralCase{
		Type: OpPluralCaseTypeExact,
		Ops:  make([]Op, 0),
	}

	peek, ok := it.Peek()
	if !ok {
		return nil, nil
	}

	if peek.TokenType != pluralNumeric && peek.TokenType != pluralOther {
		return nil, nil
	}

	// Collect the case type and its bounds up to the opening brace.
	for it.HasNext() {
		token, ok := it.Peek()
		if !ok {
			return nil, nil
		}

		if token.TokenType == pluralTranslationStart {
			break
		}

		switch token.TokenType {
		case pluralNumeric:
			n, err := strconv.Atoi(token.Data)
			if err != nil {
				return nil, fmt.Errorf("unable to convert %q to int: %w", token.Data, err)
			}

			// The second number of a range is the upper bound.
			if pcase.Type == OpPluralCaseTypeRange {
				pcase.B = n
			} else {
				pcase.A = n
			}
		case pluralRange:
			pcase.Type = OpPluralCaseTypeRange
		case pluralOther:
			pcase.Type = OpPluralCaseOther
		default:
			return nil, fmt.Errorf("unexpected end of plural case with type %s", token.TokenType)
		}

		it.Next()
	}

	token, ok := it.Next()
	if !ok {
		return nil, nil
	}

	if token.TokenType != pluralTranslationStart {
		return nil, fmt.Errorf("expected translation start token, got %s", token.TokenType)
	}

	for it.HasNext() {
		token, ok := it.Next()
		if !ok {
			return nil, fmt.Errorf("unexpected end of plural case")
		}

		if token.TokenType == pluralTranslationEnd {
			break
		}

		switch token.TokenType {
		case literal:
			pcase.Ops = append(pcase.Ops, LiteralOp{Value: token.Data})
		case pluralCount:
			pcase.Ops = append(pcase.Ops, PluralCountOp{})
		}
	}

	if pcase.Type == OpPluralCaseTypeRange && pcase.B < pcase.A {
		return nil, fmt.Errorf("invalid plural range %d-%d", pcase.A, pcase.B)
	}

	return pcase, nil
}

// Message is a parsed template.
type Message struct {
	Ops []Op
}

// Raw renders the message back into its template form.
func (m Message) Raw() string {
	var b strings.Builder

	for _, op := range m.Ops {
		switch v := op.(type) {
		case LiteralOp:
			writeLiteral(&b, v.Value)
		case ReplacementOp:
			b.WriteString(v.Placeholder())

			for _, t := range v.Transformers {
				b.WriteRune('|')
				t.writeRaw(&b)
			}
		}
	}

	return b.String()
}

// writeLiteral escapes every : and { that would otherwise start a placeholder.
func writeLiteral(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) && startsPlaceholder(s[i], s[i+1]) {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
}

func startsPlaceholder(c, next byte) bool {
	switch c {
	case ':':
		return strings.IndexByte(lowercase, next) >= 0
	case '{':
		return strings.IndexByte(digits, next) >= 0
	}

	return false
}

// Placeholders returns the keys of all placeholders in order of appearance.
func (m Message) Placeholders() []string {
	var keys []string
	for _, op := range m.Ops {
		if r, ok := op.(ReplacementOp); ok {
			keys = append(keys, r.Key)
		}
	}

	return keys
}

// Op is one of LiteralOp, ReplacementOp or PluralCountOp.
type Op interface {
	op()
}

type LiteralOp struct {
	Value string
}

// ReplacementOp is a placeholder. Positional placeholders such as {0} have the index as Key.
type ReplacementOp struct {
	Key          string
	Positional   bool
	Transformers []Transformer
}

// Placeholder returns the placeholder as written in the template, without transformers.
func (r ReplacementOp) Placeholder() string {
	if r.Positional {
		return "{" + r.Key + "}"
	}

	return ":" + r.Key
}

// PluralCountOp is the # sign inside a plural case.
type PluralCountOp struct{}

func (LiteralOp) op()     {}
func (ReplacementOp) op() {}
func (PluralCountOp) op() {}

// Transformer modifies the value of a placeholder before it is written.
type Transformer interface {
	writeRaw(b *strings.Builder)
}

type CapitalizeTransformer struct{}

type UpperTransformer struct{}

type LowerTransformer struct{}

// ReplaceTransformer replaces the value with the message it names, if one exists.
type ReplaceTransformer struct{}

type PluralTransformer struct {
	Cases []PluralCase
	Other []Op
}

func (CapitalizeTransformer) writeRaw(b *strings.Builder) { b.WriteString("capitalize") }
func (UpperTransformer) writeRaw(b *strings.Builder)      { b.WriteString("upper") }
func (LowerTransformer) writeRaw(b *strings.Builder)      { b.WriteString("lower") }
func (ReplaceTransformer) writeRaw(b *strings.Builder)    { b.WriteString("replace") }

func (t PluralTransformer) writeRaw(b *strings.Builder) {
	b.WriteString("plural(")

	for i, c := range t.Cases {
		if i > 0 {
			b.WriteRune(' ')
		}

		b.WriteRune('=')
		b.WriteString(strconv.Itoa(c.A))

		if c.Type == OpPluralCaseTypeRange {
			b.WriteRune('-')
			b.WriteString(strconv.Itoa(c.B))
		}

		b.WriteRune(' ')
		writePluralOps(b, c.Ops)
	}

	if len(t.Other) > 0 {
		if len(t.Cases) > 0 {
			b.WriteRune(' ')
		}

		b.WriteString("other ")
		writePluralOps(b, t.Other)
	}

	b.WriteRune(')')
}

func writePluralOps(b *strings.Builder, ops []Op) {
	b.WriteRune('{')
	for _, op := range ops {
		switch op := op.(type) {
		case LiteralOp:
			b.WriteString(op.Value)
		case PluralCountOp:
			b.WriteRune('#')
		}
	}
	b.WriteRune('}')
}

// Select returns the ops of the first case that matches count, or the other case.
func (t PluralTransformer) Select(count int) []Op {
	for _, c := range t.Cases {
		if c.Match(count) {
			return c.Ops
		}
	}

	return t.Other
}

type PluralCase struct {
	Type OpPluralCaseType
	A    int
	B    int

	// Ops is a list of LiteralOp and PluralCountOp that is written if the case matches.
	Ops []Op
}

func (c PluralCase) Match(count int) bool {
	switch c.Type {
	case OpPluralCaseTypeRange:
		return count >= c.A && count <= c.B
	case OpPluralCaseTypeExact:
		return count == c.A
	}

	return false
}

type OpPluralCaseType int

const (
	OpPluralCaseTypeRange OpPluralCaseType = iota
	OpPluralCaseTypeExact
	OpPluralCaseOther
)
