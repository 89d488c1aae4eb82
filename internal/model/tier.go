package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is a source-declared data quality tier. Tiers are totally ordered:
// cat_1 is the most trusted, cat_4 the least.
type Tier string

const (
	TierCat1 Tier = "cat_1"
	TierCat2 Tier = "cat_2"
	TierCat3 Tier = "cat_3"
	TierCat4 Tier = "cat_4"
)

// rank returns the numeric suffix of the tier; unknown tiers rank below
// cat_4 so they never win an overwrite.
func (t Tier) rank() int {
	s, ok := strings.CutPrefix(string(t), "cat_")
	if !ok {
		return 99
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 99
	}
	return n
}

// Valid reports whether t is one of the four declared tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCat1, TierCat2, TierCat3, TierCat4:
		return true
	}
	return false
}

// MoreTrusted reports whether t is strictly more trusted than other.
func (t Tier) MoreTrusted(other Tier) bool {
	return t.rank() < other.rank()
}

// MostTrusted returns the more trusted of the two tiers.
func MostTrusted(a, b Tier) Tier {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b.MoreTrusted(a) {
		return b
	}
	return a
}

// ParseTier validates a tier string from a source document.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown quality tier %q", s)
	}
	return t, nil
}
