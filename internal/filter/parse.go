package filter

import (
	"net/netip"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hareinweed/ipview/internal/record"
)

// Grammar, lowest precedence first:
//
//	or   := and ('||' and)*
//	and  := term ('&&' term)*
//	term := '(' or ')' | '!' '(' or ')' | comparison
//	comparison := field operator literal
//
// Whitespace is insignificant between tokens, and the whole input must be
// consumed.

// Compile parses a filter expression into a predicate tree. The returned
// errors are the typed diagnostics from errors.go; any of them leaves the
// caller's previously installed filter untouched.
func Compile(input string) (Pred, error) {
	p := &parser{input: input}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, ErrSyntax
	}
	return pred, nil
}

// fieldSpec carries everything the parser needs to know about a field:
// which operators its literal type supports and how to parse a literal.
type fieldSpec struct {
	field   Field
	ordered bool
	parse   func(string) (Literal, bool)
}

// fieldSpecs maps every alias, English and localized, to its field. Both
// spellings of an alias pair resolve to the same spec.
var fieldSpecs = map[string]*fieldSpec{}

func registerField(spec *fieldSpec, aliases ...string) {
	for _, a := range aliases {
		fieldSpecs[a] = spec
	}
}

func init() {
	registerField(&fieldSpec{field: FieldTime, ordered: true, parse: parseTimeLiteral}, "time", "时间")
	registerField(&fieldSpec{field: FieldSrcIP, parse: parseIPLiteral}, "src_ip", "源IP")
	registerField(&fieldSpec{field: FieldSrcPort, ordered: true, parse: parsePortLiteral}, "src_port", "源端口")
	registerField(&fieldSpec{field: FieldDestIP, parse: parseIPLiteral}, "dest_ip", "目的IP")
	registerField(&fieldSpec{field: FieldDestPort, ordered: true, parse: parsePortLiteral}, "dest_port", "目的端口")
	registerField(&fieldSpec{field: FieldLen, ordered: true, parse: parseLenLiteral}, "len", "IP分组长度")
	registerField(&fieldSpec{field: FieldIPPayloadLen, ordered: true, parse: parseLenLiteral}, "ip_payload_len", "IP数据长度")
	registerField(&fieldSpec{field: FieldTransProto, parse: parseTransLiteral}, "trans_proto", "trans_protocol", "传输层协议")
	registerField(&fieldSpec{field: FieldTransPayloadLen, ordered: true, parse: parseLenLiteral}, "trans_payload_len", "报文段数据长度")
	registerField(&fieldSpec{field: FieldAppProto, parse: parseAppLiteral}, "app_proto", "app_protocol", "应用层协议")
}

// timeLayouts accept a date with optional time of day; the fractional
// second is optional within the first layout.
var timeLayouts = []string{
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

func parseTimeLiteral(s string) (Literal, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Literal{Kind: LitTime, Time: t}, true
		}
	}
	return Literal{}, false
}

func parseIPLiteral(s string) (Literal, bool) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return Literal{}, false
	}
	return Literal{Kind: LitIP, IP: ip}, true
}

func parsePortLiteral(s string) (Literal, bool) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return Literal{}, false
	}
	return Literal{Kind: LitPort, U16: uint16(v)}, true
}

// parseLenLiteral saturates oversized lengths to the 16-bit maximum
// instead of rejecting them.
func parseLenLiteral(s string) (Literal, bool) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Literal{}, false
	}
	return Literal{Kind: LitLen, U16: record.SatU16(int(v))}, true
}

func parseTransLiteral(s string) (Literal, bool) {
	p, err := record.ParseTransProtocol(s)
	if err != nil {
		return Literal{}, false
	}
	return Literal{Kind: LitTransProto, Trans: p}, true
}

func parseAppLiteral(s string) (Literal, bool) {
	p, err := record.ParseAppProtocol(s)
	if err != nil {
		return Literal{}, false
	}
	return Literal{Kind: LitAppProto, App: p}, true
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *parser) consume(tok string) bool {
	if strings.HasPrefix(p.input[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *parser) parseOr() (Pred, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consume("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Pred, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.consume("&&") {
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &And{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Pred, error) {
	p.skipSpace()
	var pred Pred
	var err error
	switch {
	case p.consume("!"):
		p.skipSpace()
		pred, err = p.parseParens()
		if err != nil {
			return nil, err
		}
		pred = &Not{P: pred}
	case strings.HasPrefix(p.input[p.pos:], "("):
		pred, err = p.parseParens()
		if err != nil {
			return nil, err
		}
	default:
		pred, err = p.parseComparison()
		if err != nil {
			return nil, err
		}
	}
	p.skipSpace()
	return pred, nil
}

func (p *parser) parseParens() (Pred, error) {
	if !p.consume("(") {
		return nil, ErrSyntax
	}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.consume(")") {
		return nil, ErrSyntax
	}
	return pred, nil
}

func (p *parser) parseComparison() (Pred, error) {
	name := p.scanIdent()
	if name == "" {
		return nil, ErrSyntax
	}
	spec, ok := fieldSpecs[name]
	if !ok {
		return nil, &InvalidFieldError{Name: name}
	}

	p.skipSpace()
	op, ok := p.scanOperator()
	if !ok {
		return nil, &InvalidOperatorError{Op: p.operatorToken()}
	}

	p.skipSpace()
	text := p.scanLiteral()
	if text == "" {
		return nil, ErrSyntax
	}
	lit, ok := spec.parse(text)
	if !ok {
		return nil, &InvalidLiteralError{Text: text}
	}
	if op.Ordered() && !spec.ordered {
		return nil, &UnsupportedOperatorError{Field: name, Op: op.String()}
	}
	return &Compare{Field: spec.field, Op: op, Lit: lit}, nil
}

// scanIdent reads a field identifier: a letter or underscore followed by
// letters, digits, or underscores, in any script.
func (p *parser) scanIdent() string {
	start := p.pos
	first := true
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if first {
			if r != '_' && !unicode.IsLetter(r) {
				break
			}
			first = false
		} else if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	return p.input[start:p.pos]
}

var operators = []struct {
	tok string
	op  Op
}{
	{"==", OpEq},
	{"!=", OpNe},
	{">=", OpGe},
	{">", OpGt},
	{"<=", OpLe},
	{"<", OpLt},
}

func (p *parser) scanOperator() (Op, bool) {
	for _, cand := range operators {
		if p.consume(cand.tok) {
			return cand.op, true
		}
	}
	return 0, false
}

// operatorToken extracts the offending token for the invalid-operator
// diagnostic: the run of punctuation at the current position.
func (p *parser) operatorToken() string {
	end := p.pos
	for end < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[end:])
		if unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.IsDigit(r) || r == '(' || r == ')' {
			break
		}
		end += size
	}
	if end == p.pos {
		rest := p.input[p.pos:]
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			rest = rest[:i]
		}
		return rest
	}
	return p.input[p.pos:end]
}

// scanLiteral reads a literal token: a timestamp shape, or a run of
// letters, digits, and dots.
func (p *parser) scanLiteral() string {
	if s, ok := p.scanTimeToken(); ok {
		return s
	}
	start := p.pos
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	return p.input[start:p.pos]
}

// scanTimeToken recognizes digits '-' digits '-' digits, optionally
// followed by ' ' digits ':' digits ':' digits and an optional '.' digits
// fraction. The token includes its internal space.
func (p *parser) scanTimeToken() (string, bool) {
	start := p.pos
	if !p.scanDigits() || !p.consume("-") || !p.scanDigits() || !p.consume("-") || !p.scanDigits() {
		p.pos = start
		return "", false
	}
	dateEnd := p.pos
	if p.consume(" ") && p.scanDigits() && p.consume(":") && p.scanDigits() && p.consume(":") && p.scanDigits() {
		fracEnd := p.pos
		if p.consume(".") && p.scanDigits() {
			return p.input[start:p.pos], true
		}
		p.pos = fracEnd
		return p.input[start:p.pos], true
	}
	p.pos = dateEnd
	return p.input[start:dateEnd], true
}

func (p *parser) scanDigits() bool {
	start := p.pos
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	return p.pos > start
}
