// Package chem parses empirical chemical formulas into element counts.
// An empty formula is valid and means zero atoms, which is how massless
// bookkeeping species (electrons, photons) are modeled.
package chem

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidFormula is returned when a formula string cannot be parsed.
var ErrInvalidFormula = errors.New("invalid formula")

// Parse converts an empirical formula such as "C21H29N7O17P3" into a
// map from element symbol to atom count. Element symbols start with an
// uppercase letter followed by optional lowercase letters; a missing
// count means 1; repeated elements accumulate. An empty string returns
// an empty map.
func Parse(formula string) (map[string]int, error) {
	counts := make(map[string]int)
	i := 0
	for i < len(formula) {
		c := formula[i]
		if c < 'A' || c > 'Z' {
			return nil, fmt.Errorf("formula %q: unexpected %q at position %d: %w", formula, string(c), i, ErrInvalidFormula)
		}
		j := i + 1
		for j < len(formula) && formula[j] >= 'a' && formula[j] <= 'z' {
			j++
		}
		symbol := formula[i:j]

		count := 0
		digits := 0
		for j < len(formula) && formula[j] >= '0' && formula[j] <= '9' {
			count = count*10 + int(formula[j]-'0')
			digits++
			j++
		}
		if digits == 0 {
			count = 1
		} else if count == 0 {
			return nil, fmt.Errorf("formula %q: zero count for %s: %w", formula, symbol, ErrInvalidFormula)
		}

		counts[symbol] += count
		i = j
	}
	return counts, nil
}

// MustParse is Parse for literal formulas in fixtures and examples.
func MustParse(formula string) map[string]int {
	counts, err := Parse(formula)
	if err != nil {
		panic(err)
	}
	return counts
}

// Format renders element counts back into a formula string in Hill
// order: carbon first, then hydrogen, then the remaining elements
// alphabetically. Without carbon all elements sort alphabetically.
// Counts of 1 are omitted.
func Format(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}

	symbols := make([]string, 0, len(counts))
	for sym, n := range counts {
		if n != 0 {
			symbols = append(symbols, sym)
		}
	}
	_, hasCarbon := counts["C"]
	sort.Slice(symbols, func(i, j int) bool {
		if hasCarbon {
			ri, rj := hillRank(symbols[i]), hillRank(symbols[j])
			if ri != rj {
				return ri < rj
			}
		}
		return symbols[i] < symbols[j]
	})

	var sb strings.Builder
	for _, sym := range symbols {
		sb.WriteString(sym)
		if n := counts[sym]; n != 1 {
			fmt.Fprintf(&sb, "%d", n)
		}
	}
	return sb.String()
}

func hillRank(symbol string) int {
	switch symbol {
	case "C":
		return 0
	case "H":
		return 1
	default:
		return 2
	}
}
