package letters

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardDeck(t *testing.T) {
	single, err := Standard(1)
	require.NoError(t, err)
	double, err := Standard(2)
	require.NoError(t, err)

	assert.Equal(t, 2*single.Len(), double.Len())
	assert.Equal(t, 1, single.Decks())

	total := 0
	for _, l := range single.Letters() {
		total += l.Quantity
	}
	assert.Equal(t, total, single.Len())

	first, ok := single.Card(0)
	require.True(t, ok)
	assert.Equal(t, Card{Letter: "A", Value: 2, Tier: Common}, first)

	_, ok = single.Card(single.Len())
	assert.False(t, ok)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		value int
		want  Tier
	}{
		{1, Common},
		{3, Common},
		{4, Medium},
		{7, Medium},
		{8, Rare},
		{15, Rare},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.value), "value %d", tt.value)
	}
}

func TestByTierPartitionsDeck(t *testing.T) {
	d := MustStandard(2)

	seen := make(map[int]bool)
	for _, tier := range Tiers {
		for _, i := range d.ByTier(tier) {
			card, ok := d.Card(i)
			require.True(t, ok)
			assert.Equal(t, tier, card.Tier)
			assert.False(t, seen[i])
			seen[i] = true
		}
	}
	assert.Len(t, seen, d.Len())
}

func TestStandardTableCounts(t *testing.T) {
	d, err := Standard(1)
	require.NoError(t, err)

	assert.Equal(t, 118, d.Len())
	assert.Len(t, d.Letters(), 31)
	assert.Len(t, d.ByTier(Common), 52)
	assert.Len(t, d.ByTier(Medium), 42)
	assert.Len(t, d.ByTier(Rare), 24)
}

// letterRows renders letter rows in the embedded table's layout.
func letterRows(rows ...string) string {
	var b strings.Builder
	for _, r := range rows {
		var letter string
		var value, quantity int
		fmt.Sscanf(r, "%s %d %d", &letter, &value, &quantity)
		fmt.Fprintf(&b, "letter %q {\n  value    = %d\n  quantity = %d\n}\n", letter, value, quantity)
	}
	return b.String()
}

func TestSpellAndPoints(t *testing.T) {
	src := []byte(letterRows("C 8 1", "A 2 1", "T 3 1", "TH 9 1"))
	d, err := Parse(src, "test.hcl", 1)
	require.NoError(t, err)

	assert.Equal(t, "CAT", d.Spell([]int{0, 1, 2}))
	assert.Equal(t, 13, d.Points([]int{0, 1, 2}))
	assert.Equal(t, "THAT", d.Spell([]int{3, 1, 2}))
	assert.Equal(t, map[string]int{"A": 1, "T": 1}, d.Frequencies([]int{1, 2}))
	assert.True(t, d.Valid([]int{0, 3}))
	assert.False(t, d.Valid([]int{4}))
	assert.InDelta(t, 0.25, d.Proportions()["A"], 1e-9)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		decks   int
		wantErr string
	}{
		{"zero decks", letterRows("A 1 1"), 0, "deck count must be at least 1"},
		{"duplicate", letterRows("A 1 1", "A 1 1"), 1, `letter "A" listed twice`},
		{"lower case", letterRows("a 1 1"), 1, "upper case"},
		{"zero quantity", letterRows("A 1 0"), 1, "value and quantity must be positive"},
		{"zero value", letterRows("A 0 1"), 1, "value and quantity must be positive"},
		{"empty", ``, 1, "letter table is empty"},
		{"syntax", `letter "A" {`, 1, "failed to parse letter table"},
		{"one-line block", `letter "A" { value = 1 quantity = 1 }`, 1, "failed to parse letter table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl", tt.decks)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
