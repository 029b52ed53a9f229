package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUSD(t *testing.T) {
	fx := 280.0
	badFx := 0.0

	tests := []struct {
		name    string
		amount  float64
		code    string
		fxRate  *float64
		want    float64
		wantErr bool
	}{
		{"usd passes through", 250, USD, nil, 250, false},
		{"usd rounds to cents", 250.556, USD, nil, 250.56, false},
		{"local converts through the rate", 280000, "PKR", &fx, 1000, false},
		{"converted amount rounds to cents", 100, "PKR", &fx, 0.36, false},
		{"missing rate", 280000, "PKR", nil, 0, true},
		{"zero rate", 280000, "PKR", &badFx, 0, true},
		{"negative amount", -5, USD, nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUSD(tt.amount, tt.code, tt.fxRate)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.36, Round(0.357142857))
	assert.Equal(t, 100.0, Round(100.004))
	assert.Equal(t, 1.01, Round(1.006))
	assert.Equal(t, -2.5, Round(-2.499))
}
