package dto

import (
	"reflect"
	"regexp"
	"strings"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	maxTaxRate   = decimal.NewFromInt(100)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs the ledger validators on v. Decimal fields are validated
// through their string form.
func Register(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("safe_id", validateSafeID)
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("quantity", validateQuantity)
	_ = v.RegisterValidation("fiscal_text", validateFiscalText)
	_ = v.RegisterValidation("tax_rate", validateTaxRate)
	_ = v.RegisterValidation("discount_kind", validateDiscountKind)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateMoney accepts non-negative amounts with at most two decimals.
func validateMoney(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsNegative() && d.Exponent() >= -2
}

// validateQuantity accepts non-zero quantities down to the gram.
func validateQuantity(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && d.IsPositive() && d.Exponent() >= -hashchain.QuantityPlaces
}

func validateFiscalText(fl validator.FieldLevel) bool {
	return !hashchain.ContainsReserved(fl.Field().String())
}

// validateTaxRate accepts a percentage in [0, 100] with at most two decimals.
func validateTaxRate(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsNegative() && d.LessThanOrEqual(maxTaxRate) && d.Exponent() >= -2
}

func validateDiscountKind(fl validator.FieldLevel) bool {
	return domain.DiscountKind(fl.Field().String()).IsValid()
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// TrimStruct trims surrounding whitespace from every exported string field
// (including *string) of a struct pointer. Content is otherwise kept verbatim
// since it may feed a ticket digest.
func TrimStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	trimFields(rv.Elem())
}

func trimFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(strings.TrimSpace(elem.String()))
			}
		}
	}
}
