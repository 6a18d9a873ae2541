package services

import "testing"

func TestComputeFee(t *testing.T) {
	cases := []struct {
		name   string
		amount int
		pct    int
		want   int
	}{
		{"standard commission", 10000, 12, 1200},
		{"rounds down", 999, 12, 119},
		{"zero pct", 10000, 0, 0},
		{"full pct", 10000, 100, 10000},
		{"small amount floors to zero", 5, 12, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeFee(tc.amount, tc.pct); got != tc.want {
				t.Errorf("ComputeFee(%d, %d) = %d, want %d", tc.amount, tc.pct, got, tc.want)
			}
		})
	}
}

// Fee plus payout must always reconstruct the amount exactly.
func TestComputeFee_Conservation(t *testing.T) {
	for amount := 1; amount <= 1000; amount++ {
		for _, pct := range []int{0, 7, 12, 50, 100} {
			fee := ComputeFee(amount, pct)
			payout := amount - fee
			if fee < 0 || payout < 0 {
				t.Fatalf("amount=%d pct=%d: negative side fee=%d payout=%d", amount, pct, fee, payout)
			}
			if fee+payout != amount {
				t.Fatalf("amount=%d pct=%d: fee %d + payout %d != amount", amount, pct, fee, payout)
			}
		}
	}
}
