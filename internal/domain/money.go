package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// 金额精度：两位小数
const MoneyScale = 2

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrAmountTooLarge    = errors.New("amount exceeds the maximum allowed value")
)

// MaxDonation decimal(10,2) 能存的上限
var MaxDonation = decimal.RequireFromString("99999999.99")

// MaxGoal decimal(12,2) 能存的上限
var MaxGoal = decimal.RequireFromString("9999999999.99")

// CheckAmount 校验金额为正、最多两位小数且不超过 max
func CheckAmount(d, max decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrAmountNotPositive
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return ErrAmountPrecision
	}
	if d.GreaterThan(max) {
		return ErrAmountTooLarge
	}
	return nil
}
