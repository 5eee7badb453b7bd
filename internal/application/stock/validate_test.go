package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/taller-stock/internal/domain"
)

func TestRequireScale(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"1", true},
		{"-2.5", true},
		{"0.0001", true},
		{"1.50000", true},
		{"99999999999999.9999", true},
		{"0.00001", false},
		{"1.00004", false},
		{"-3.12345", false},
		{"100000000000000", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := requireScale("qty", decimal.RequireFromString(tc.in))
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
