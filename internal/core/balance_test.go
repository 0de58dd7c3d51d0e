package core

import "testing"

func TestUnpaidMonths(t *testing.T) {
	cases := []struct {
		start Date
		today Date
		want  int
	}{
		{NewDate(2023, 1, 1), NewDate(2024, 7, 1), 18},
		{NewDate(2024, 7, 3), NewDate(2024, 7, 28), 0}, // same month
		{NewDate(2024, 6, 30), NewDate(2024, 7, 1), 1}, // day ignored
		{NewDate(2024, 1, 31), NewDate(2024, 2, 1), 1},
		{NewDate(2025, 1, 1), NewDate(2024, 7, 1), 0}, // future lease floors at zero
		{NewDate(2024, 7, 1), NewDate(2024, 7, 1), 0},
	}
	for i, tc := range cases {
		if got := UnpaidMonths(tc.start, tc.today); got != tc.want {
			t.Fatalf("case %d: UnpaidMonths(%s, %s) = %d, want %d", i, tc.start, tc.today, got, tc.want)
		}
	}
}

func TestUnpaidMonthsMonotone(t *testing.T) {
	start := NewDate(2023, 3, 15)
	prev := -1
	for month := 0; month < 30; month++ {
		today := NewDate(2023+(2+month)/12, (2+month)%12+1, 1)
		got := UnpaidMonths(start, today)
		if got < prev {
			t.Fatalf("UnpaidMonths decreased from %d to %d at %s", prev, got, today)
		}
		prev = got
	}
}

func TestInitialBalance(t *testing.T) {
	cases := []struct {
		rent   int64
		months int
		want   int64
	}{
		{100000, 18, 1800000},
		{100000, 0, 0},
		{123456, 3, 370368},
	}
	for i, tc := range cases {
		got := InitialBalance(Money{Cents: tc.rent}, tc.months)
		if got.Cents != tc.want {
			t.Fatalf("case %d: got %d cents, want %d", i, got.Cents, tc.want)
		}
		if got.IsNegative() {
			t.Fatalf("case %d: initial balance went negative", i)
		}
	}
}

func TestApplyPayment(t *testing.T) {
	paid, balance := ApplyPayment(Money{Cents: 50000}, Money{}, Money{Cents: 20000})
	if paid.Cents != 20000 || balance.Cents != 30000 {
		t.Fatalf("got paid=%d balance=%d, want 20000/30000", paid.Cents, balance.Cents)
	}

	// Overpayment leaves a credit.
	paid, balance = ApplyPayment(Money{Cents: 10000}, Money{Cents: 5000}, Money{Cents: 20000})
	if paid.Cents != 25000 || balance.Cents != -10000 {
		t.Fatalf("got paid=%d balance=%d, want 25000/-10000", paid.Cents, balance.Cents)
	}

	// A negative payment raises the balance.
	paid, balance = ApplyPayment(Money{Cents: 10000}, Money{Cents: 5000}, Money{Cents: -2500})
	if paid.Cents != 2500 || balance.Cents != 12500 {
		t.Fatalf("got paid=%d balance=%d, want 2500/12500", paid.Cents, balance.Cents)
	}
}

func TestApplyRentIncrease(t *testing.T) {
	cases := []struct {
		rent    int64
		percent float64
		want    int64
	}{
		{100000, 10, 110000},
		{100000, -10, 90000},
		{100000, 0, 100000},
		{99999, 10, 109999}, // 1099.989 rounds half-up
		{33333, 3.5, 34500}, // 344.99655 -> 345.00
	}
	for i, tc := range cases {
		got := ApplyRentIncrease(Money{Cents: tc.rent}, tc.percent)
		if got.Cents != tc.want {
			t.Fatalf("case %d: ApplyRentIncrease(%d, %v) = %d, want %d", i, tc.rent, tc.percent, got.Cents, tc.want)
		}
	}
}

func TestCreateThenPayScenario(t *testing.T) {
	// Lease signed 2023-01-01 with rent 1000, queried on 2024-07-01.
	rent := Money{Cents: 100000}
	months := UnpaidMonths(NewDate(2023, 1, 1), NewDate(2024, 7, 1))
	balance := InitialBalance(rent, months)
	if balance.Cents != 1800000 {
		t.Fatalf("initial balance = %s, want 18000.00", balance)
	}

	paid, balance := ApplyPayment(balance, Money{}, Money{Cents: 150000})
	if paid.Cents != 150000 {
		t.Fatalf("jan paid = %s, want 1500.00", paid)
	}
	if balance.Cents != 1650000 {
		t.Fatalf("balance after payment = %s, want 16500.00", balance)
	}
}
