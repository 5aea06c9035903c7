package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCost(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45000", 45000},
		{"45,000", 45000},
		{"₹1,25,000.50", 125000.50},
		{"$ 300", 300},
		{" 42 ", 42},
		{"", 0},
		{"---", 0},
		{"N/A", 0},
		{"n/a", 0},
		{"-", 0},
		{"NULL", 0},
		{"free", 0},
		{"12abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-500", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeCost(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2021-03-05", NormalizeDate("2021-03-05"))
	assert.Equal(t, "2021-03-05", NormalizeDate("2021-03-05 00:00:00"))
	assert.Equal(t, "2019-06-05", NormalizeDate("05/06/2019"))
	assert.Equal(t, "2020-12-01", NormalizeDate("01.12.2020"))
	assert.Equal(t, PlaceholderDate, NormalizeDate(""))
	assert.Equal(t, PlaceholderDate, NormalizeDate("not a date"))
	assert.Equal(t, PlaceholderDate, NormalizeDate("nan"))
}

func TestIsSerialLike(t *testing.T) {
	assert.True(t, IsSerialLike("1"))
	assert.True(t, IsSerialLike("42"))
	assert.True(t, IsSerialLike("7a"))
	assert.True(t, IsSerialLike("12."))
	assert.False(t, IsSerialLike(""))
	assert.False(t, IsSerialLike("a1"))
	assert.False(t, IsSerialLike("Dell"))
	assert.False(t, IsSerialLike("1.2"))
}
