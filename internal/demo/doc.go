// Package demo holds the example application driven by the loom CLI and HTTP
// server: a counter with an nth-prime lookup, a prime check modal and a list
// of favorite primes, stitched together in package app.
package demo
