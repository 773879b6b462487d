// Package hashchain computes the canonical serializations and SHA-256 digests
// that link tickets into a per-register chain and seal daily closures.
//
// Every function here is pure. Field order, separators and number formatting
// are part of the persisted format: changing any of them invalidates every
// stored hash.
package hashchain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

const (
	// FirstTicket is the previous hash of the first ticket ever issued on a register.
	FirstTicket = "FIRST_TICKET"
	// NoDiscount encodes an absent global discount.
	NoDiscount = "NO_DISCOUNT"
	// NoLineDiscount encodes an absent line discount.
	NoLineDiscount = "NONE"
	// NoPayments encodes an empty payment list.
	NoPayments = "NO_PAYMENTS"

	// TimestampLayout is the ISO form hashed for every timestamp, always in UTC.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
	// DateLayout is the form hashed for business dates.
	DateLayout = "2006-01-02"

	placeholderLength = 16

	fieldSep = "|"
	itemSep  = ";"
	partSep  = ":"

	// QuantityPlaces is the precision of line quantities.
	QuantityPlaces = 3
	// AmountPlaces is the precision of monetary values.
	AmountPlaces = 2
)

// Reserved holds the characters that structure a payload. Free-text fields
// are escaped in payloads and rejected on input.
const Reserved = `|;:\`

var escaper = strings.NewReplacer(`\`, `\\`, fieldSep, `\`+fieldSep, itemSep, `\`+itemSep, partSep, `\`+partSep)

// TicketPayload is the canonical byte string hashed for t.
func TicketPayload(t *domain.Ticket) string {
	lines := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = strings.Join([]string{
			escape(l.ProductID),
			Quantity(l.Quantity),
			Amount(l.UnitPrice),
			Amount(l.TotalTTC),
			escape(l.TaxCode),
			EncodeDiscount(l.Discount, NoLineDiscount),
		}, partSep)
	}

	return strings.Join([]string{
		escape(t.Number),
		Timestamp(t.SoldAt),
		Amount(t.Totals.HT),
		Amount(t.Totals.TVA),
		Amount(t.Totals.TTC),
		EncodeDiscount(t.Discount, NoDiscount),
		escape(t.SellerID),
		strconv.Itoa(t.EstablishmentOrdinal),
		strconv.Itoa(t.RegisterOrdinal),
		previousOrSentinel(t.PreviousHash),
		strings.Join(lines, itemSep),
		encodePayments(t.Payments),
	}, fieldSep)
}

// TicketDigest returns the hex SHA-256 of TicketPayload(t).
func TicketDigest(t *domain.Ticket) string {
	return digest(TicketPayload(t))
}

// ClosurePayload is the canonical byte string hashed for c. Payment totals are
// sorted by method so the digest does not depend on aggregation order.
func ClosurePayload(c *domain.Closure) string {
	payments := make([]domain.Payment, len(c.PaymentTotals))
	for i, p := range c.PaymentTotals {
		payments[i] = domain.Payment{Method: p.Method, Amount: p.Amount}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Method < payments[j].Method })

	return strings.Join([]string{
		c.RegisterID.String(),
		c.BusinessDate.Format(DateLayout),
		strconv.Itoa(c.TicketCount),
		strconv.Itoa(c.CancelledCount),
		Amount(c.Totals.HT),
		Amount(c.Totals.TVA),
		Amount(c.Totals.TTC),
		encodePayments(payments),
		escape(c.FirstTicketNumber),
		escape(c.LastTicketNumber),
		escape(c.LastTicketHash),
		Timestamp(c.ClosedAt),
		escape(c.ClosedBy),
	}, fieldSep)
}

// ClosureDigest returns the hex SHA-256 of ClosurePayload(c).
func ClosureDigest(c *domain.Closure) string {
	return digest(ClosurePayload(c))
}

// Sign derives the signature of digest. Without key material the result is a
// placeholder made of the truncated digest; with it, HMAC-SHA256(key, digest).
func Sign(digestHex string, key []byte, keyID string) domain.Signature {
	if len(key) == 0 {
		return domain.Placeholder(truncate(digestHex, placeholderLength))
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(digestHex))
	return domain.Signed(hex.EncodeToString(mac.Sum(nil)), keyID)
}

// EncodeDiscount renders a discount as "{value}{kind}", or sentinel when absent.
func EncodeDiscount(d *domain.Discount, sentinel string) string {
	if d == nil {
		return sentinel
	}
	suffix := "FIX"
	if d.Kind == domain.DiscountPercentage {
		suffix = "%"
	}
	return Amount(d.Value) + suffix
}

// Amount formats a monetary value with two decimals. A value with finer
// precision keeps it, so distinct values never share a rendering.
func Amount(d decimal.Decimal) string {
	return fixed(d, AmountPlaces)
}

// Quantity formats a line quantity with three decimals, keeping finer
// precision like Amount.
func Quantity(d decimal.Decimal) string {
	return fixed(d, QuantityPlaces)
}

// HasPrecision reports whether d carries no digits beyond places decimals.
func HasPrecision(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// ContainsReserved reports whether s holds a payload separator.
func ContainsReserved(s string) bool {
	return strings.ContainsAny(s, Reserved)
}

func fixed(d decimal.Decimal, places int32) string {
	if HasPrecision(d, places) {
		return d.StringFixed(places)
	}
	return d.String()
}

func escape(s string) string {
	return escaper.Replace(s)
}

// Timestamp formats t in UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Normalize truncates t to the precision that survives Timestamp, so a value
// re-read from storage hashes identically.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func encodePayments(payments []domain.Payment) string {
	if len(payments) == 0 {
		return NoPayments
	}
	parts := make([]string, len(payments))
	for i, p := range payments {
		parts[i] = escape(string(p.Method)) + partSep + Amount(p.Amount)
	}
	return strings.Join(parts, itemSep)
}

func previousOrSentinel(prev string) string {
	if prev == "" {
		return FirstTicket
	}
	return prev
}

func digest(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
