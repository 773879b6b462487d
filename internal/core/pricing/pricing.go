// Package pricing turns raw cart lines into fiscal line totals and ticket totals.
//
// Unit prices are tax-inclusive. For each line:
//
//	gross    = round(qty * unit_price, 2)
//	net      = gross - line discount - share of the global discount
//	TTC      = net
//	HT       = round(TTC / (1 + rate/100), 2)
//	TVA      = TTC - HT
//
// A global percentage discount applies to each line's net. A global fixed
// discount is split across lines with positive net, in proportion to that net,
// in cents, by the largest-remainder rule (see Allocate).
package pricing

import (
	"errors"
	"fmt"
	"sort"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"

	"github.com/shopspring/decimal"
)

var (
	ErrNoLines              = errors.New("no line items")
	ErrInvalidLine          = errors.New("invalid line item")
	ErrInvalidDiscount      = errors.New("invalid discount")
	ErrDiscountExceedsTotal = errors.New("discount exceeds discountable amount")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// LineInput is a cart line before pricing.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
	TaxCode   string
	Discount  *domain.Discount
}

// Result holds the priced lines and their sums.
type Result struct {
	Lines  []domain.LineItem
	Totals domain.Totals
}

// Compute prices lines and applies the optional global discount.
func Compute(inputs []LineInput, global *domain.Discount) (*Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoLines
	}

	lines := make([]domain.LineItem, len(inputs))
	nets := make([]decimal.Decimal, len(inputs))
	for i, in := range inputs {
		if err := validateLine(in); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		gross := in.Quantity.Mul(in.UnitPrice).Round(2)
		lineDiscount, err := lineDiscountAmount(gross, in.Discount)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		taxCode := in.TaxCode
		if taxCode == "" {
			taxCode = in.TaxRate.StringFixed(2)
		}

		lines[i] = domain.LineItem{
			Position:       i + 1,
			ProductID:      in.ProductID,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			TaxRate:        in.TaxRate,
			TaxCode:        taxCode,
			Discount:       in.Discount,
			DiscountAmount: lineDiscount,
		}
		nets[i] = gross.Sub(lineDiscount)
	}

	shares, err := globalShares(nets, global)
	if err != nil {
		return nil, err
	}

	var totals domain.Totals
	for i := range lines {
		ttc := nets[i].Sub(shares[i])
		ht := ttc.Div(one.Add(lines[i].TaxRate.Div(hundred))).Round(2)

		lines[i].DiscountAmount = lines[i].DiscountAmount.Add(shares[i])
		lines[i].TotalTTC = ttc
		lines[i].TotalHT = ht
		lines[i].TotalTVA = ttc.Sub(ht)

		totals = totals.Add(domain.Totals{HT: ht, TVA: lines[i].TotalTVA, TTC: ttc})
	}

	return &Result{Lines: lines, Totals: totals}, nil
}

func validateLine(in LineInput) error {
	switch {
	case in.ProductID == "":
		return fmt.Errorf("%w: product reference is required", ErrInvalidLine)
	case hashchain.ContainsReserved(in.ProductID):
		return fmt.Errorf("%w: product reference must not contain any of %q", ErrInvalidLine, hashchain.Reserved)
	case hashchain.ContainsReserved(in.TaxCode):
		return fmt.Errorf("%w: tax code must not contain any of %q", ErrInvalidLine, hashchain.Reserved)
	case in.Quantity.IsZero():
		return fmt.Errorf("%w: quantity must not be zero", ErrInvalidLine)
	case !hashchain.HasPrecision(in.Quantity, hashchain.QuantityPlaces):
		return fmt.Errorf("%w: quantity has more than %d decimals", ErrInvalidLine, hashchain.QuantityPlaces)
	case in.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidLine)
	case !hashchain.HasPrecision(in.UnitPrice, hashchain.AmountPlaces):
		return fmt.Errorf("%w: unit price has more than %d decimals", ErrInvalidLine, hashchain.AmountPlaces)
	case in.TaxRate.IsNegative() || in.TaxRate.GreaterThanOrEqual(hundred):
		return fmt.Errorf("%w: tax rate must be in [0, 100)", ErrInvalidLine)
	case !hashchain.HasPrecision(in.TaxRate, 2):
		return fmt.Errorf("%w: tax rate has more than 2 decimals", ErrInvalidLine)
	}
	return nil
}

func validateDiscount(d *domain.Discount) error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDiscount, d.Kind)
	}
	if d.Value.IsNegative() {
		return fmt.Errorf("%w: value must not be negative", ErrInvalidDiscount)
	}
	if !hashchain.HasPrecision(d.Value, hashchain.AmountPlaces) {
		return fmt.Errorf("%w: value has more than %d decimals", ErrInvalidDiscount, hashchain.AmountPlaces)
	}
	if d.Kind == domain.DiscountPercentage && d.Value.GreaterThan(hundred) {
		return fmt.Errorf("%w: percentage above 100", ErrInvalidDiscount)
	}
	return nil
}

func lineDiscountAmount(gross decimal.Decimal, d *domain.Discount) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, nil
	}
	if err := validateDiscount(d); err != nil {
		return decimal.Zero, err
	}
	if d.Value.IsZero() {
		return decimal.Zero, nil
	}
	if !gross.IsPositive() {
		return decimal.Zero, ErrDiscountExceedsTotal
	}

	if d.Kind == domain.DiscountPercentage {
		return gross.Mul(d.Value).Div(hundred).Round(2), nil
	}
	amount := d.Value.Round(2)
	if amount.GreaterThan(gross) {
		return decimal.Zero, ErrDiscountExceedsTotal
	}
	return amount, nil
}

func globalShares(nets []decimal.Decimal, d *domain.Discount) ([]decimal.Decimal, error) {
	shares := make([]decimal.Decimal, len(nets))
	for i := range shares {
		shares[i] = decimal.Zero
	}
	if d == nil {
		return shares, nil
	}
	if err := validateDiscount(d); err != nil {
		return nil, err
	}

	if d.Kind == domain.DiscountPercentage {
		for i, net := range nets {
			shares[i] = net.Mul(d.Value).Div(hundred).Round(2)
		}
		return shares, nil
	}

	weights := make([]int64, len(nets))
	for i, net := range nets {
		if net.IsPositive() {
			weights[i] = toCents(net)
		}
	}
	cents, err := Allocate(toCents(d.Value), weights)
	if err != nil {
		return nil, err
	}
	for i, c := range cents {
		shares[i] = decimal.New(c, -2)
	}
	return shares, nil
}

// Allocate splits total minor units across weights proportionally. Each share is
// floored, then the leftover units go one by one to the largest fractional
// remainders, ties broken by lower index. The shares always sum to total.
func Allocate(total int64, weights []int64) ([]int64, error) {
	shares := make([]int64, len(weights))
	if total == 0 {
		return shares, nil
	}
	if total < 0 {
		return nil, ErrInvalidDiscount
	}

	var sum int64
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight", ErrInvalidDiscount)
		}
		sum += w
	}
	if total > sum {
		return nil, ErrDiscountExceedsTotal
	}

	type remainder struct {
		index int
		value int64
	}
	remainders := make([]remainder, len(weights))
	allocated := int64(0)
	for i, w := range weights {
		num := total * w
		shares[i] = num / sum
		remainders[i] = remainder{index: i, value: num % sum}
		allocated += shares[i]
	}

	sort.SliceStable(remainders, func(a, b int) bool {
		if remainders[a].value != remainders[b].value {
			return remainders[a].value > remainders[b].value
		}
		return remainders[a].index < remainders[b].index
	})
	for k := int64(0); k < total-allocated; k++ {
		shares[remainders[k].index]++
	}
	return shares, nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}
