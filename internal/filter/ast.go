// Package filter implements the record filter language: a small typed
// boolean expression grammar compiled into a predicate over records.
package filter

import (
	"net/netip"
	"time"

	"github.com/hareinweed/ipview/internal/record"
)

// Field is one of the ten filterable record attributes.
type Field int

const (
	FieldTime Field = iota
	FieldSrcIP
	FieldSrcPort
	FieldDestIP
	FieldDestPort
	FieldLen
	FieldIPPayloadLen
	FieldTransProto
	FieldTransPayloadLen
	FieldAppProto
)

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

// Ordered reports whether the operator needs a totally ordered literal type.
func (op Op) Ordered() bool {
	return op >= OpGt
}

func (op Op) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	}
	return "?"
}

// LiteralKind tags the value stored in a Literal.
type LiteralKind int

const (
	LitTime LiteralKind = iota
	LitIP
	LitPort
	LitLen
	LitTransProto
	LitAppProto
)

// Literal is a typed constant parsed from filter text. Only the value
// matching Kind is meaningful.
type Literal struct {
	Kind  LiteralKind
	Time  time.Time
	IP    netip.Addr
	U16   uint16 // ports and lengths
	Trans record.TransProtocol
	App   record.AppProtocol
}

// Pred is a node of the parsed filter expression. The tree is immutable
// once parsed; evaluation is done by the stateless Eval function.
type Pred interface {
	eval(r *record.Record) bool
}

// Compare tests one record field against a literal.
type Compare struct {
	Field Field
	Op    Op
	Lit   Literal
}

// Not negates its operand.
type Not struct {
	P Pred
}

// And is the conjunction of two predicates.
type And struct {
	L, R Pred
}

// Or is the disjunction of two predicates.
type Or struct {
	L, R Pred
}

// Eval applies a predicate to a record. And short-circuits; Or always
// evaluates both operands.
func Eval(p Pred, r *record.Record) bool {
	return p.eval(r)
}

func (n *Not) eval(r *record.Record) bool {
	return !n.P.eval(r)
}

func (a *And) eval(r *record.Record) bool {
	return a.L.eval(r) && a.R.eval(r)
}

func (o *Or) eval(r *record.Record) bool {
	left := o.L.eval(r)
	right := o.R.eval(r)
	return left || right
}

func (c *Compare) eval(r *record.Record) bool {
	switch c.Field {
	case FieldTime:
		return compareTime(r.Time, c.Op, c.Lit.Time)
	case FieldSrcIP:
		return compareIP(r.SrcIP, c.Op, c.Lit.IP)
	case FieldDestIP:
		return compareIP(r.DestIP, c.Op, c.Lit.IP)
	case FieldSrcPort:
		return compareOptU16(r.SrcPort, c.Op, c.Lit.U16)
	case FieldDestPort:
		return compareOptU16(r.DestPort, c.Op, c.Lit.U16)
	case FieldLen:
		return compareOptU16(record.U16(r.Len), c.Op, c.Lit.U16)
	case FieldIPPayloadLen:
		return compareOptU16(r.IPPayloadLen, c.Op, c.Lit.U16)
	case FieldTransPayloadLen:
		return compareOptU16(r.TransPayloadLen, c.Op, c.Lit.U16)
	case FieldTransProto:
		eq := r.TransProto.Equal(c.Lit.Trans)
		if c.Op == OpNe {
			return !eq
		}
		return eq
	case FieldAppProto:
		eq := r.AppProto == c.Lit.App
		if c.Op == OpNe {
			return !eq
		}
		return eq
	}
	return false
}

func compareTime(t time.Time, op Op, lit time.Time) bool {
	switch op {
	case OpEq:
		return t.Equal(lit)
	case OpNe:
		return !t.Equal(lit)
	case OpGt:
		return t.After(lit)
	case OpGe:
		return !t.Before(lit)
	case OpLt:
		return t.Before(lit)
	case OpLe:
		return !t.After(lit)
	}
	return false
}

func compareIP(ip netip.Addr, op Op, lit netip.Addr) bool {
	eq := ip.IsValid() && ip == lit
	if op == OpNe {
		return !eq
	}
	return eq
}

// compareOptU16 orders an optional value against a literal with the
// convention that an absent value sorts below every present one.
func compareOptU16(v record.OptU16, op Op, lit uint16) bool {
	switch op {
	case OpEq:
		return v.OK && v.V == lit
	case OpNe:
		return !v.OK || v.V != lit
	case OpGt:
		return v.OK && v.V > lit
	case OpGe:
		return v.OK && v.V >= lit
	case OpLt:
		return !v.OK || v.V < lit
	case OpLe:
		return !v.OK || v.V <= lit
	}
	return false
}
