// Package money provides the arbitrary-precision numeric primitives the
// reconciler is built on: a Decimal type (via shopspring/decimal), an Amount
// that can be MISSING, and a per-currency running-sum inventory with
// zero-pruning.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal is an arbitrary-precision signed number. It is a type alias so
// that callers can use the shopspring/decimal API directly (Add, Sub, Mul,
// Div, Cmp, Abs, ...) without a wrapper layer.
type Decimal = decimal.Decimal

// Zero is the additive identity.
var Zero = decimal.Zero

// ParseDecimal parses a decimal string as produced by a feed importer or
// ledger line. Unlike decimal.NewFromString, it rejects the empty string so
// callers can distinguish "no value" from "zero" at the boundary.
func ParseDecimal(s string) (Decimal, error) {
	if s == "" {
		return Zero, fmt.Errorf("money: empty decimal string")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// Amount is a signed quantity of a currency or commodity. The zero value is
// not a valid Amount; use Missing() or New().
//
// Amount ::= Missing | Value(Decimal, CurrencyCode)
//
// MISSING amounts are permitted on postings lacking units/cost and they
// propagate: any computation involving a MISSING operand is itself MISSING
// unless the operation explicitly documents otherwise (see weight.Of).
type Amount struct {
	missing  bool
	Number   Decimal
	Currency string
}

// Missing returns the MISSING amount sentinel.
func Missing() Amount {
	return Amount{missing: true}
}

// New returns a concrete, fully specified amount.
func New(number Decimal, currency string) Amount {
	return Amount{Number: number, Currency: currency}
}

// IsMissing reports whether a is the MISSING sentinel.
func (a Amount) IsMissing() bool {
	return a.missing
}

// Neg returns the negation of a. Negating MISSING yields MISSING.
func (a Amount) Neg() Amount {
	if a.missing {
		return a
	}
	return New(a.Number.Neg(), a.Currency)
}

// String renders the amount the way ledger text would, or "MISSING".
func (a Amount) String() string {
	if a.missing {
		return "MISSING"
	}
	return fmt.Sprintf("%s %s", a.Number.String(), a.Currency)
}

// Equal reports whether two amounts are the same MISSING-ness, currency and
// number (exact, not tolerance-based; see AmountEqual for fuzzy comparison).
func (a Amount) Equal(b Amount) bool {
	if a.missing != b.missing {
		return false
	}
	if a.missing {
		return true
	}
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}
