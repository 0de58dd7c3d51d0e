// Balance arithmetic for the tenant ledger. Everything here is pure: the
// callers decide what "today" is and where results are persisted.
package core

import "github.com/shopspring/decimal"

// UnpaidMonths returns the number of whole calendar months elapsed from
// leaseStart to today, floored at zero. Day-of-month is ignored on both
// sides: a lease starting on the 31st counts like one starting on the 1st.
func UnpaidMonths(leaseStart, today Date) int {
	months := (today.Year()-leaseStart.Year())*12 + (today.Month() - leaseStart.Month())
	if months < 0 {
		return 0
	}
	return months
}

// InitialBalance seeds a new tenant's balance: rent owed for every whole
// month since lease start. Never negative for positive rent.
func InitialBalance(rent Money, unpaidMonths int) Money {
	return rent.MulInt(int64(unpaidMonths))
}

// ApplyPayment posts a payment against one month. The month's cumulative
// total grows by the payment and the balance shrinks by it. There is no
// clamping: the balance may go negative (a credit) and the month total may
// exceed the rent. The payment sign is taken as given; a negative payment
// raises the balance.
func ApplyPayment(balance, monthPaid, payment Money) (newMonthPaid, newBalance Money) {
	return monthPaid.Add(payment), balance.Sub(payment)
}

// ApplyRentIncrease returns rent scaled by (1 + percent/100), rounded
// half-up to the cent. Percent may be negative for a decrease. The balance
// is untouched by rent changes.
func ApplyRentIncrease(rent Money, percent float64) Money {
	factor := decimal.NewFromFloat(percent).
		Div(decimal.NewFromInt(100)).
		Add(decimal.NewFromInt(1))
	cents := decimal.NewFromInt(rent.Cents).Mul(factor).Round(0)
	return Money{Cents: cents.IntPart()}
}
