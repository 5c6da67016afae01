package notify

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount 形如 "KES 1,234.50"；整数部分走千分位，小数部分保持精确
func FormatAmount(currency string, d decimal.Decimal) string {
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	whole, err := strconv.ParseInt(intPart, 10, 64)

	var b strings.Builder
	if currency != "" {
		b.WriteString(currency)
		b.WriteByte(' ')
	}
	if d.IsNegative() {
		b.WriteByte('-')
	}
	if err != nil {
		b.WriteString(intPart)
	} else {
		b.WriteString(printer.Sprintf("%d", whole))
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
