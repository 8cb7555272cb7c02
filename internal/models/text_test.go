package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
	}{
		{"1.50", 150},
		{"1,50", 150},
		{"0.05", 5},
		{"0", 0},
		{"12345678901234.99", 1234567890123499},
		{"7", 700},
		{"3.1", 310},
		{".25", 25},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseCentsRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "-1.50", "+2", "1.5.0"} {
		_, err := ParseCents(in)
		assert.Error(t, err, in)
	}
}

func TestParseCentsRejectsOverflow(t *testing.T) {
	// Whole parts past int64/100 would wrap in the hundredths multiply.
	for _, in := range []string{
		"92233720368547759",
		"92233720368547758.08",
		"9223372036854775807",
	} {
		_, err := ParseCents(in)
		assert.Error(t, err, in)
	}

	// The largest representable amount still parses.
	got, err := ParseCents("92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, Cents(9223372036854775807), got)
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "1.50", Cents(150).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "-2.30", Cents(-230).String())
}

func TestCentsJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Cents(199))
	require.NoError(t, err)
	assert.Equal(t, `"1.99"`, string(out))

	var c Cents
	require.NoError(t, json.Unmarshal([]byte(`"10.00"`), &c))
	assert.Equal(t, Cents(1000), c)

	assert.Error(t, json.Unmarshal([]byte(`10.0`), &c))
}

func TestCentsScan(t *testing.T) {
	var c Cents
	require.NoError(t, c.Scan([]byte("123.45")))
	assert.Equal(t, Cents(12345), c)

	require.NoError(t, c.Scan("0.10"))
	assert.Equal(t, Cents(10), c)

	require.NoError(t, c.Scan("-3.50"))
	assert.Equal(t, Cents(-350), c)

	assert.Error(t, c.Scan(3.5))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("10001")
	require.NoError(t, err)
	assert.Equal(t, int64(10001), id)

	// values above 2^53 must survive exactly
	id, err = ParseID("9007199254740993")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), id)

	for _, in := range []string{"", "0", "-5", "+5", "12a", "9223372036854775808"} {
		_, err := ParseID(in)
		assert.Error(t, err, in)
	}
}

func TestStripDigits(t *testing.T) {
	assert.Equal(t, "12345678901", StripDigits("123.456.789-01"))
	assert.Equal(t, "11987654321", StripDigits("(11) 98765-4321"))
	assert.Equal(t, "", StripDigits("n/a"))
}
