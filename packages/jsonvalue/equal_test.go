package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_RoundTripOfSentObject(t *testing.T) {
	sent := map[string]any{
		"name":             "Алексей",
		"role":             "Тестировщик",
		"skills":           []string{"Python", "API Testing", "Pytest"},
		"experience_years": 1,
	}
	echoed, err := Parse([]byte(`{"experience_years": 1, "name": "Алексей", "role": "Тестировщик", "skills": ["Python", "API Testing", "Pytest"]}`))
	require.NoError(t, err)

	assert.True(t, Equal(sent, echoed))
	assert.Empty(t, Diff(sent, echoed))
}

func TestEqual_NumbersCompareNumerically(t *testing.T) {
	assert.True(t, Equal(Number("1"), Number("1.0")))
	assert.True(t, Equal(1, Number("1e0")))
	assert.False(t, Equal(1, Number("2")))
}

func TestEqual_LargeIntegersCompareExactly(t *testing.T) {
	assert.False(t, Equal(Number("18446744073709551617"), Number("18446744073709551616")))
	assert.True(t, Equal(Number("18446744073709551617"), Number("1.8446744073709551617e19")))

	expected, err := Parse([]byte(`{"id":12345678901234567890123}`))
	require.NoError(t, err)
	actual, err := Parse([]byte(`{"id":12345678901234567890124}`))
	require.NoError(t, err)
	assert.Equal(t, "$.id: expected 12345678901234567890123, got 12345678901234567890124", Diff(expected, actual))
}

func TestEqual_StringifiedNumbersAreNotNumbers(t *testing.T) {
	params := map[string]any{"page": 1, "limit": 10}
	echoed := MustFrom(map[string]string{"page": "1", "limit": "10"})

	assert.False(t, Equal(params, echoed))
	assert.True(t, Equal(map[string]string{"page": "1", "limit": "10"}, echoed))
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   string
		want     string
	}{
		{
			name:     "equal objects",
			expected: map[string]any{"a": 1},
			actual:   `{"a": 1}`,
			want:     "",
		},
		{
			name:     "missing key",
			expected: map[string]any{"a": 1, "b": 2},
			actual:   `{"a": 1}`,
			want:     `$: missing key "b"`,
		},
		{
			name:     "unexpected key",
			expected: map[string]any{"a": 1},
			actual:   `{"a": 1, "z": 0, "c": 0}`,
			want:     `$: unexpected keys ["c" "z"]`,
		},
		{
			name:     "nested value mismatch",
			expected: map[string]any{"skills": []string{"Go", "Python"}},
			actual:   `{"skills": ["Go", "Rust"]}`,
			want:     `$.skills[1]: expected "Python", got "Rust"`,
		},
		{
			name:     "array length mismatch",
			expected: []int{1, 2},
			actual:   `[1]`,
			want:     "$: expected 2 items, got 1",
		},
		{
			name:     "type mismatch",
			expected: map[string]any{"page": 1},
			actual:   `{"page": "1"}`,
			want:     `$.page: expected number 1, got string "1"`,
		},
		{
			name:     "null versus value",
			expected: map[string]any{"x": nil},
			actual:   `{"x": false}`,
			want:     `$.x: expected null null, got boolean false`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Parse([]byte(tt.actual))
			require.NoError(t, err)
			assert.Equal(t, tt.want, Diff(tt.expected, actual))
		})
	}
}

func TestDiff_UnencodableExpected(t *testing.T) {
	d := Diff(make(chan int), "x")
	assert.Contains(t, d, "not JSON-encodable")
}
