package utils

import (
	"math"
	"strconv"
)

// StrToInt converts a string to an int, typically for URL parameters.
func StrToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// RoundTo rounds a monetary value to the given number of decimal places.
func RoundTo(value float64, places int) float64 {
	multiplier := math.Pow(10, float64(places))
	return math.Round(value*multiplier) / multiplier
}
