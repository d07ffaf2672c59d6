package helpers

import "fmt"

// FormatMoney formats an amount with thousand separators and two
// decimals, e.g. 1234567.5 -> "1,234,567.50"
func FormatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	totalCents := int64(amount*100 + 0.5)
	whole := totalCents / 100
	cents := totalCents % 100

	str := fmt.Sprintf("%d", whole)
	length := len(str)

	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	if negative {
		return fmt.Sprintf("-%s.%02d", result, cents)
	}
	return fmt.Sprintf("%s.%02d", result, cents)
}
