package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw   string
		width int
		want  string
	}{
		{raw: "1", width: ProvinceCodeWidth, want: "01"},
		{raw: " 2 ", width: ProvinceCodeWidth, want: "02"},
		{raw: "24", width: ProvinceCodeWidth, want: "24"},
		{raw: "201", width: CantonCodeWidth, want: "0201"},
		{raw: "90", width: ParishCodeWidth, want: "000090"},
		{raw: "123456789", width: ParishCodeWidth, want: "123456789"},
		{raw: "A1", width: ProvinceCodeWidth, want: "A1"},
		{raw: "", width: ProvinceCodeWidth, want: ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeCode(tc.raw, tc.width), "raw=%q", tc.raw)
	}
}

func TestCompareCodes(t *testing.T) {
	t.Parallel()

	require.Negative(t, compareCodes("0999", "10000"))
	require.Negative(t, compareCodes("02", "10"))
	require.Zero(t, compareCodes("0201", "0201"))
	require.Negative(t, compareCodes("99", "AA"))
	require.Positive(t, compareCodes("B", "A"))
	require.Negative(t, compareCodes("0A", "10"))
	require.Positive(t, compareCodes("9", "10"))
}
