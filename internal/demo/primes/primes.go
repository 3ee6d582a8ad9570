// Package primes computes the values behind the demo's prime features.
package primes

import (
	"context"
	"fmt"
)

// MaxN bounds Nth so lookups stay interactive.
const MaxN = 100_000

// IsPrime reports whether n is prime.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// Nth returns the n-th prime, counting 2 as the first. It reports false for
// n outside [1, MaxN] or when ctx is done before the prime is found.
func Nth(ctx context.Context, n int) (int, bool) {
	if n < 1 || n > MaxN {
		return 0, false
	}
	found := 0
	for candidate := 2; ; candidate++ {
		if candidate%1024 == 0 && ctx.Err() != nil {
			return 0, false
		}
		if IsPrime(candidate) {
			found++
			if found == n {
				return candidate, true
			}
		}
	}
}

// Ordinal renders n as "1st", "2nd", "3rd", "4th" and so on.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
