// pkg/cleaner/genre.go
package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

var (
	// errNotAList is returned when the text is a valid literal but not a sequence
	errNotAList = errors.New("literal is not a list")
	// errMalformedLiteral is returned when the text is not a literal at all
	errMalformedLiteral = errors.New("malformed literal")
)

// genreStrategy extracts the primary genre from a non-missing genre field.
// ok is false when the strategy cannot interpret the text.
type genreStrategy struct {
	name    string
	extract func(text string) (genre model.NullString, ok bool)
}

// genreStrategies are tried in order; the first one that interprets the text wins
var genreStrategies = []genreStrategy{
	{name: "list_literal", extract: firstFromListLiteral},
	{name: "delimited", extract: firstFromDelimited},
}

// ExtractPrimaryGenre returns the first genre of a field stored either as a
// serialized list ("['Action', 'Drama']") or as a delimited string
// ("Action, Drama"). Missing, empty and "[]" inputs have no primary genre.
func ExtractPrimaryGenre(value interface{}) model.NullString {
	if isMissing(value) {
		return model.NullString{}
	}

	text := toString(value)
	for _, strategy := range genreStrategies {
		if genre, ok := strategy.extract(text); ok {
			return genre
		}
	}
	return model.NullString{}
}

// firstFromListLiteral returns the first element, unchanged, of a list literal
func firstFromListLiteral(text string) (model.NullString, bool) {
	elems, err := decodeListLiteral(text)
	if err != nil {
		return model.NullString{}, false
	}
	if len(elems) == 0 {
		return model.NullString{}, true
	}
	return elems[0], true
}

// firstFromDelimited returns the first comma separated segment, trimmed
func firstFromDelimited(text string) (model.NullString, bool) {
	if text == "" {
		return model.NullString{}, true
	}
	first, _, _ := strings.Cut(text, ",")
	return model.String(strings.TrimSpace(first)), true
}

// decodeListLiteral decodes a Python style sequence literal: a list "[...]",
// a tuple "(...)", or a bare comma separated run of literals. Elements may be
// quoted strings, numbers, True, False or None (returned as invalid).
func decodeListLiteral(text string) ([]model.NullString, error) {
	p := &literalParser{src: strings.TrimSpace(text)}
	if p.src == "" {
		return nil, errMalformedLiteral
	}

	var (
		elems []model.NullString
		err   error
	)

	switch p.src[0] {
	case '[':
		p.pos++
		elems, _, err = p.parseElements(']')
	case '(':
		p.pos++
		var trailingComma bool
		elems, trailingComma, err = p.parseElements(')')
		// "('Drama')" is a parenthesized string, not a tuple
		if err == nil && len(elems) == 1 && !trailingComma {
			return nil, errNotAList
		}
	default:
		elems, err = p.parseBareTuple()
	}
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.done() {
		return nil, fmt.Errorf("%w: trailing input at offset %d", errMalformedLiteral, p.pos)
	}
	return elems, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) done() bool {
	return p.pos >= len(p.src)
}

func (p *literalParser) peek() byte {
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for !p.done() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// parseElements reads comma separated literals up to the closing byte
func (p *literalParser) parseElements(closing byte) ([]model.NullString, bool, error) {
	elems := make([]model.NullString, 0, 4)
	trailingComma := false

	for {
		p.skipSpace()
		if p.done() {
			return nil, false, fmt.Errorf("%w: unterminated sequence", errMalformedLiteral)
		}
		if p.peek() == closing {
			p.pos++
			return elems, trailingComma, nil
		}

		elem, err := p.parseScalar()
		if err != nil {
			return nil, false, err
		}
		elems = append(elems, elem)
		trailingComma = false

		p.skipSpace()
		if p.done() {
			return nil, false, fmt.Errorf("%w: unterminated sequence", errMalformedLiteral)
		}
		switch p.peek() {
		case ',':
			p.pos++
			trailingComma = true
		case closing:
			// handled at the top of the loop
		default:
			return nil, false, fmt.Errorf("%w: unexpected %q at offset %d", errMalformedLiteral, p.peek(), p.pos)
		}
	}
}

// parseBareTuple reads "'a', 'b'" style input. A single literal without a
// comma is valid but not a sequence.
func (p *literalParser) parseBareTuple() ([]model.NullString, error) {
	var elems []model.NullString
	sawComma := false

	for {
		p.skipSpace()
		if p.done() {
			break
		}
		elem, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)

		p.skipSpace()
		if p.done() {
			break
		}
		if p.peek() != ',' {
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", errMalformedLiteral, p.peek(), p.pos)
		}
		p.pos++
		sawComma = true
	}

	if !sawComma {
		return nil, errNotAList
	}
	return elems, nil
}

// parseScalar reads one string, number or keyword literal
func (p *literalParser) parseScalar() (model.NullString, error) {
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		s, err := p.parseQuoted(c)
		if err != nil {
			return model.NullString{}, err
		}
		return model.String(s), nil
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.parseNumber()
	default:
		return p.parseKeyword()
	}
}

func (p *literalParser) parseQuoted(quote byte) (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder

	for !p.done() {
		c := p.peek()
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\n':
			return "", fmt.Errorf("%w: newline in string", errMalformedLiteral)
		case c == '\\':
			p.pos++
			if p.done() {
				return "", fmt.Errorf("%w: dangling escape", errMalformedLiteral)
			}
			sb.WriteString(unescape(p.peek()))
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated string", errMalformedLiteral)
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '\'', '"':
		return string(c)
	default:
		// unknown escapes keep their backslash
		return "\\" + string(c)
	}
}

func (p *literalParser) parseNumber() (model.NullString, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}

	digits := 0
	for !p.done() && isDigit(p.peek()) {
		p.pos++
		digits++
	}
	if !p.done() && p.peek() == '.' {
		p.pos++
		for !p.done() && isDigit(p.peek()) {
			p.pos++
			digits++
		}
	}
	if digits == 0 {
		return model.NullString{}, fmt.Errorf("%w: bad number at offset %d", errMalformedLiteral, start)
	}

	if !p.done() && (p.peek() == 'e' || p.peek() == 'E') {
		p.pos++
		if !p.done() && (p.peek() == '-' || p.peek() == '+') {
			p.pos++
		}
		expDigits := 0
		for !p.done() && isDigit(p.peek()) {
			p.pos++
			expDigits++
		}
		if expDigits == 0 {
			return model.NullString{}, fmt.Errorf("%w: bad exponent at offset %d", errMalformedLiteral, start)
		}
	}

	return model.String(p.src[start:p.pos]), nil
}

func (p *literalParser) parseKeyword() (model.NullString, error) {
	start := p.pos
	for !p.done() && isIdentByte(p.peek()) {
		p.pos++
	}

	switch word := p.src[start:p.pos]; word {
	case "None":
		return model.NullString{}, nil
	case "True", "False":
		return model.String(word), nil
	default:
		return model.NullString{}, fmt.Errorf("%w: unexpected token %q", errMalformedLiteral, word)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
