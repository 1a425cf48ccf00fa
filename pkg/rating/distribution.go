// Package rating aggregates review ratings into the per-star breakdown shown
// next to a product's review list.
package rating

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinLevel = 1
	MaxLevel = 5

	starGlyph = "★"
)

var hundred = decimal.NewFromInt(100)

// Entry is one row of a distribution: the level, its glyph string and the
// share of reviews at that level.
type Entry struct {
	Level      int             `json:"rating"`
	Stars      string          `json:"stars"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PercentageString formats the share with exactly two decimals ("33.33").
func (e Entry) PercentageString() string {
	return e.Percentage.StringFixed(2)
}

// MarshalJSON keeps the two-decimal form on the wire; decoding goes through
// the default path since decimal.Decimal accepts quoted numbers.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Level      int    `json:"rating"`
		Stars      string `json:"stars"`
		Count      int    `json:"count"`
		Percentage string `json:"percentage"`
	}{e.Level, e.Stars, e.Count, e.PercentageString()})
}

// Distribution computes the breakdown of levels 1..5 over reviews, reading
// only the rating through ratingOf.
//
// Ratings outside [1,5] are skipped but still count toward the total, so the
// percentages of a collection with malformed entries sum to less than 100.
// Percentages are count*100/total rounded half-up to two decimals. An empty
// collection yields an empty (nil) slice.
func Distribution[R any](reviews []R, ratingOf func(R) int) []Entry {
	if len(reviews) == 0 {
		return nil
	}

	var counts [MaxLevel + 1]int
	for _, r := range reviews {
		if v := ratingOf(r); v >= MinLevel && v <= MaxLevel {
			counts[v]++
		}
	}

	total := decimal.NewFromInt(int64(len(reviews)))
	entries := make([]Entry, 0, MaxLevel)
	for level := MinLevel; level <= MaxLevel; level++ {
		entries = append(entries, Entry{
			Level:      level,
			Stars:      strings.Repeat(starGlyph, level),
			Count:      counts[level],
			Percentage: decimal.NewFromInt(int64(counts[level])).Mul(hundred).DivRound(total, 2),
		})
	}

	return entries
}

// Ratings is the common case of Distribution over plain rating values.
func Ratings(values []int) []Entry {
	return Distribution(values, func(v int) int { return v })
}
