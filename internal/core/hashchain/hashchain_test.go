package hashchain

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		Number:               "20250120-E01-R02-000001",
		SoldAt:               time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
		Totals:               domain.Totals{HT: dec("20.83"), TVA: dec("4.17"), TTC: dec("25")},
		SellerID:             "seller-1",
		EstablishmentOrdinal: 1,
		RegisterOrdinal:      2,
		Lines: []domain.LineItem{{
			ProductID: "SKU-1",
			Quantity:  dec("2"),
			UnitPrice: dec("12.5"),
			TaxRate:   dec("20"),
			TaxCode:   "TVA20",
			TotalTTC:  dec("25"),
		}},
		Payments: []domain.Payment{{Method: domain.PaymentCash, Amount: dec("25")}},
	}
}

func TestTicketPayload_CanonicalForm(t *testing.T) {
	expected := "20250120-E01-R02-000001|2025-01-20T10:00:00.000Z|20.83|4.17|25.00|NO_DISCOUNT|seller-1|1|2|FIRST_TICKET|SKU-1:2.000:12.50:25.00:TVA20:NONE|cash:25.00"

	assert.Equal(t, expected, TicketPayload(sampleTicket()))
}

func TestTicketDigest_IsSHA256OfPayload(t *testing.T) {
	tk := sampleTicket()
	sum := sha256.Sum256([]byte(TicketPayload(tk)))

	assert.Equal(t, hex.EncodeToString(sum[:]), TicketDigest(tk))
	assert.Len(t, TicketDigest(tk), 64)
}

func TestTicketDigest_Deterministic(t *testing.T) {
	assert.Equal(t, TicketDigest(sampleTicket()), TicketDigest(sampleTicket()))
}

func TestTicketDigest_SentinelEqualsEmptyPrevious(t *testing.T) {
	a := sampleTicket()
	b := sampleTicket()
	b.PreviousHash = FirstTicket

	assert.Equal(t, TicketDigest(a), TicketDigest(b))
}

func TestTicketDigest_ScaleInsensitive(t *testing.T) {
	a := sampleTicket()
	b := sampleTicket()
	b.Totals.TTC = dec("25.0000")
	b.Lines[0].Quantity = dec("2.000")

	assert.Equal(t, TicketDigest(a), TicketDigest(b))
}

func TestTicketDigest_EveryFieldMatters(t *testing.T) {
	base := TicketDigest(sampleTicket())

	mutations := map[string]func(*domain.Ticket){
		"number":         func(tk *domain.Ticket) { tk.Number = "20250120-E01-R02-000002" },
		"timestamp":      func(tk *domain.Ticket) { tk.SoldAt = tk.SoldAt.Add(time.Millisecond) },
		"total ht":       func(tk *domain.Ticket) { tk.Totals.HT = dec("20.84") },
		"total tva":      func(tk *domain.Ticket) { tk.Totals.TVA = dec("4.16") },
		"total ttc":      func(tk *domain.Ticket) { tk.Totals.TTC = dec("25.01") },
		"global disc":    func(tk *domain.Ticket) { tk.Discount = &domain.Discount{Value: dec("10"), Kind: domain.DiscountPercentage} },
		"seller":         func(tk *domain.Ticket) { tk.SellerID = "seller-2" },
		"est ordinal":    func(tk *domain.Ticket) { tk.EstablishmentOrdinal = 3 },
		"reg ordinal":    func(tk *domain.Ticket) { tk.RegisterOrdinal = 3 },
		"previous hash":  func(tk *domain.Ticket) { tk.PreviousHash = "abc" },
		"product":        func(tk *domain.Ticket) { tk.Lines[0].ProductID = "SKU-2" },
		"quantity":       func(tk *domain.Ticket) { tk.Lines[0].Quantity = dec("3") },
		"sub-gram qty":   func(tk *domain.Ticket) { tk.Lines[0].Quantity = dec("2.0004") },
		"sub-cent price": func(tk *domain.Ticket) { tk.Lines[0].UnitPrice = dec("12.501") },
		"unit price":     func(tk *domain.Ticket) { tk.Lines[0].UnitPrice = dec("12.51") },
		"line ttc":       func(tk *domain.Ticket) { tk.Lines[0].TotalTTC = dec("24.99") },
		"tax code":       func(tk *domain.Ticket) { tk.Lines[0].TaxCode = "TVA10" },
		"line discount":  func(tk *domain.Ticket) { tk.Lines[0].Discount = &domain.Discount{Value: dec("1"), Kind: domain.DiscountFixed} },
		"payment method": func(tk *domain.Ticket) { tk.Payments[0].Method = domain.PaymentCard },
		"payment amount": func(tk *domain.Ticket) { tk.Payments[0].Amount = dec("20") },
		"extra payment": func(tk *domain.Ticket) {
			tk.Payments = append(tk.Payments, domain.Payment{Method: domain.PaymentCard, Amount: dec("0")})
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			tk := sampleTicket()
			mutate(tk)
			assert.NotEqual(t, base, TicketDigest(tk))
		})
	}
}

func TestTicketDigest_QuantityPrecisionIsKept(t *testing.T) {
	a := sampleTicket()
	a.Lines[0].Quantity = dec("2.0001")
	b := sampleTicket()
	b.Lines[0].Quantity = dec("2.0004")

	assert.NotEqual(t, TicketDigest(a), TicketDigest(b))
	assert.Contains(t, TicketPayload(a), "SKU-1:2.0001:")
}

func TestTicketDigest_SeparatorsInTextCannotForgeLines(t *testing.T) {
	twoLines := sampleTicket()
	twoLines.Lines = append(twoLines.Lines, domain.LineItem{
		ProductID: "SKU-2",
		Quantity:  dec("1"),
		UnitPrice: dec("1"),
		TaxRate:   dec("20"),
		TaxCode:   "TVA20",
		TotalTTC:  dec("1"),
	})

	oneLine := sampleTicket()
	oneLine.Lines[0].TaxCode = "TVA20:NONE;SKU-2:1.000:1.00:1.00:TVA20"

	assert.NotEqual(t, TicketDigest(twoLines), TicketDigest(oneLine))
	assert.Contains(t, TicketPayload(oneLine), `TVA20\:NONE\;SKU-2`)
}

func TestTicketDigest_SeparatorInSellerCannotShiftFields(t *testing.T) {
	a := sampleTicket()
	a.SellerID = "seller-1|1"
	a.EstablishmentOrdinal = 2
	b := sampleTicket()
	b.SellerID = "seller-1"
	b.EstablishmentOrdinal = 1
	b.RegisterOrdinal = 2

	assert.NotEqual(t, TicketPayload(a), TicketPayload(b))
}

func TestAmountAndQuantity(t *testing.T) {
	assert.Equal(t, "12.50", Amount(dec("12.5")))
	assert.Equal(t, "12.50", Amount(dec("12.5000")))
	assert.Equal(t, "12.501", Amount(dec("12.501")))
	assert.Equal(t, "2.000", Quantity(dec("2")))
	assert.Equal(t, "2.0004", Quantity(dec("2.0004")))

	assert.True(t, HasPrecision(dec("1.250"), 2))
	assert.False(t, HasPrecision(dec("1.255"), 2))
}

func TestContainsReserved(t *testing.T) {
	for _, s := range []string{"a|b", "a;b", "a:b", `a\b`} {
		assert.True(t, ContainsReserved(s), s)
	}
	assert.False(t, ContainsReserved("TVA 20% réduit"))
}

func TestTicketDigest_StatusAndClosureStampIgnored(t *testing.T) {
	base := TicketDigest(sampleTicket())

	tk := sampleTicket()
	closureID := uuid.New()
	now := time.Now()
	tk.Status = domain.TicketStatusCancelled
	tk.ClosureID = &closureID
	tk.ClosedAt = &now

	assert.Equal(t, base, TicketDigest(tk))
}

func TestEncodeDiscount(t *testing.T) {
	assert.Equal(t, "NO_DISCOUNT", EncodeDiscount(nil, NoDiscount))
	assert.Equal(t, "10.00%", EncodeDiscount(&domain.Discount{Value: dec("10"), Kind: domain.DiscountPercentage}, NoDiscount))
	assert.Equal(t, "5.50FIX", EncodeDiscount(&domain.Discount{Value: dec("5.5"), Kind: domain.DiscountFixed}, NoDiscount))
}

func TestTimestampAndNormalize(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	ts := time.Date(2025, 1, 20, 11, 0, 0, 123456789, paris)
	assert.Equal(t, "2025-01-20T10:00:00.123Z", Timestamp(ts))

	n := Normalize(ts)
	assert.Equal(t, time.UTC, n.Location())
	assert.Equal(t, 123000000, n.Nanosecond())
	assert.Equal(t, Timestamp(ts), Timestamp(n))
}

func sampleClosure() *domain.Closure {
	return &domain.Closure{
		RegisterID:     uuid.MustParse("7f1c0b7e-3c1a-4f7e-9d1b-2a4f6c8e0b11"),
		BusinessDate:   time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		TicketCount:    1,
		CancelledCount: 1,
		Totals:         domain.Totals{HT: dec("20.83"), TVA: dec("4.17"), TTC: dec("25")},
		PaymentTotals: []domain.PaymentTotal{
			{Method: domain.PaymentCard, Amount: dec("5")},
			{Method: domain.PaymentCash, Amount: dec("20")},
		},
		FirstTicketNumber: "20250120-E01-R02-000001",
		LastTicketNumber:  "20250120-E01-R02-000001",
		LastTicketHash:    "abc123",
		ClosedBy:          "manager-1",
		ClosedAt:          time.Date(2025, 1, 20, 22, 0, 0, 0, time.UTC),
	}
}

func TestClosurePayload_CanonicalForm(t *testing.T) {
	expected := "7f1c0b7e-3c1a-4f7e-9d1b-2a4f6c8e0b11|2025-01-20|1|1|20.83|4.17|25.00|card:5.00;cash:20.00|20250120-E01-R02-000001|20250120-E01-R02-000001|abc123|2025-01-20T22:00:00.000Z|manager-1"

	assert.Equal(t, expected, ClosurePayload(sampleClosure()))
}

func TestClosureDigest_OrderIndependentPayments(t *testing.T) {
	a := sampleClosure()
	b := sampleClosure()
	b.PaymentTotals[0], b.PaymentTotals[1] = b.PaymentTotals[1], b.PaymentTotals[0]

	assert.Equal(t, ClosureDigest(a), ClosureDigest(b))
}

func TestClosureDigest_SensitiveToLastHash(t *testing.T) {
	a := sampleClosure()
	b := sampleClosure()
	b.LastTicketHash = "abc124"

	assert.NotEqual(t, ClosureDigest(a), ClosureDigest(b))
}

func TestClosurePayload_NoTickets(t *testing.T) {
	c := sampleClosure()
	c.PaymentTotals = nil

	assert.Contains(t, ClosurePayload(c), "|NO_PAYMENTS|")
}

func TestSign_PlaceholderWithoutKey(t *testing.T) {
	d := TicketDigest(sampleTicket())
	sig := Sign(d, nil, "")

	assert.Equal(t, domain.SignaturePlaceholder, sig.Kind)
	assert.Equal(t, d[:16], sig.Value)
	assert.False(t, sig.IsFiscallyValid())
}

func TestSign_CertifiedWithKey(t *testing.T) {
	d := TicketDigest(sampleTicket())
	key := []byte("0123456789abcdef0123456789abcdef")

	sig := Sign(d, key, "k1")
	again := Sign(d, key, "k1")
	other := Sign(d, []byte("another-key-material-0123456789"), "k2")

	assert.Equal(t, domain.SignatureCertified, sig.Kind)
	assert.Equal(t, "k1", sig.KeyID)
	assert.Len(t, sig.Value, 64)
	assert.Equal(t, sig, again)
	assert.NotEqual(t, sig.Value, other.Value)
	assert.True(t, sig.IsFiscallyValid())
}
