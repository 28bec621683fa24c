// Package sanitizer provides input normalization for request data.
//
// All normalization functions are idempotent - applying them multiple
// times produces the same result. Functions handle invalid input
// gracefully, typically by returning empty strings or empty slices
// rather than errors.
package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeSlice applies the strategy to every element, dropping empties
// and duplicates while preserving first-seen order.
func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
