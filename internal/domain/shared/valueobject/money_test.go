package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(1250, "USD")
	assert.NoError(t, err)
	assert.Equal(t, int64(1250), m.Amount())
	assert.Equal(t, "USD", m.Currency())
}

func TestNewMoney_DefaultCurrency(t *testing.T) {
	m, err := NewMoney(100, "")
	assert.NoError(t, err)
	assert.Equal(t, "USD", m.Currency())
}

func TestNewMoney_InvalidCurrency(t *testing.T) {
	_, err := NewMoney(100, "NOPE")
	assert.Error(t, err)
}

func TestNewMoneyFromMajorString(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10.00", 1000},
		{"10.005", 1001}, // half-cents round away from zero
		{"10.004", 1000},
		{"0.01", 1},
		{"0", 0},
		{"123.4", 12340},
	}
	for _, tt := range tests {
		m, err := NewMoneyFromMajorString(tt.input, "USD")
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, m.Amount(), tt.input)
	}
}

func TestNewMoneyFromMajorString_Invalid(t *testing.T) {
	_, err := NewMoneyFromMajorString("not-a-number", "USD")
	assert.Error(t, err)
}

func TestMoney_MajorString(t *testing.T) {
	m, _ := NewMoney(1005, "USD")
	assert.Equal(t, "10.05", m.MajorString())
}

func TestMoney_AddSub(t *testing.T) {
	a, _ := NewMoney(500, "USD")
	b, _ := NewMoney(300, "USD")

	sum, err := a.Add(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(800), sum.Amount())

	diff, err := a.Sub(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(200), diff.Amount())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a, _ := NewMoney(500, "USD")
	b, _ := NewMoney(300, "CAD")
	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestMoney_AbsDiff(t *testing.T) {
	a, _ := NewMoney(1000, "USD")
	b, _ := NewMoney(1600, "USD")

	diff, err := a.AbsDiff(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(600), diff)

	diff, err = b.AbsDiff(a)
	assert.NoError(t, err)
	assert.Equal(t, int64(600), diff)
}
