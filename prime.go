package chainmap

import "math"

// MaxBucketCount is the largest bucket count a Table can be created with.
// Node references are 32-bit, and 2^31-1 happens to be prime, so NextPrime
// never has to look past it.
const MaxBucketCount = math.MaxInt32

// smallPrimes seeds trial division and answers the common small hints
// without any division at all.
var smallPrimes = [...]int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

// NextPrime returns the smallest prime p with p >= max(n, 1).
// Results are clamped to MaxBucketCount, so the function is total for every
// int input and always returns a usable bucket count.
func NextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n >= MaxBucketCount {
		return MaxBucketCount
	}
	if n <= smallPrimes[len(smallPrimes)-1] {
		for _, p := range smallPrimes {
			if p >= n {
				return p
			}
		}
	}
	if n%2 == 0 {
		n++
	}
	for ; n < MaxBucketCount; n += 2 {
		if isPrime(n) {
			return n
		}
	}
	return MaxBucketCount
}

// isPrime reports whether n is prime using 6k±1 trial division.
// n fits in 31 bits, so the loop runs at most ~7700 iterations.
func isPrime(n int) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0 || n%3 == 0:
		return false
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}
