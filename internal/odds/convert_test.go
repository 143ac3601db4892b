package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/better-bets/internal/models"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american float64
		want     float64
	}{
		{"plus 150", 150, 2.5},
		{"even", 100, 2.0},
		{"minus 200", -200, 1.5},
		{"minus 110", -110, 1 + 100.0/110},
		{"long shot", 1000, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToDecimal(tt.american)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAmericanToDecimalRejectsZero(t *testing.T) {
	_, err := AmericanToDecimal(0)
	assert.ErrorIs(t, err, models.ErrZeroPrice)

	_, err = AmericanToDecimal(math.NaN())
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.4, ImpliedProbability(150), 1e-12)
	assert.InDelta(t, 0.5, ImpliedProbability(100), 1e-12)
	assert.InDelta(t, 110.0/210.0, ImpliedProbability(-110), 1e-12)
	assert.InDelta(t, 2.0/3.0, ImpliedProbability(-200), 1e-12)
}

func TestImpliedProbabilityInUnitInterval(t *testing.T) {
	for o := -100000; o <= 100000; o += 7 {
		if o == 0 {
			continue
		}
		p := ImpliedProbability(float64(o))
		assert.Greater(t, p, 0.0, "odds %d", o)
		assert.Less(t, p, 1.0, "odds %d", o)
	}
}

func TestDecimalToAmerican(t *testing.T) {
	assert.Equal(t, 150, DecimalToAmerican(2.5))
	assert.Equal(t, 100, DecimalToAmerican(2.0))
	assert.Equal(t, -200, DecimalToAmerican(1.5))
	assert.Equal(t, 0, DecimalToAmerican(1.0))
	assert.Equal(t, 0, DecimalToAmerican(0.5))
	assert.Equal(t, 0, DecimalToAmerican(math.Inf(1)))
	assert.Equal(t, 0, DecimalToAmerican(math.NaN()))
}

// -100 and +100 describe the same price; both decode to +100.
func TestRoundTripAmerican(t *testing.T) {
	for o := 100; o <= 20000; o++ {
		for _, american := range []int{o, -o} {
			if american == -100 {
				continue
			}
			dec, err := AmericanToDecimal(float64(american))
			require.NoError(t, err)
			assert.Equal(t, american, DecimalToAmerican(dec))
		}
	}

	dec, err := AmericanToDecimal(-100)
	require.NoError(t, err)
	assert.Equal(t, 100, DecimalToAmerican(dec))
}

func TestProbabilityToDecimal(t *testing.T) {
	dec, err := ProbabilityToDecimal(0.4)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, dec, 1e-12)

	_, err = ProbabilityToDecimal(0)
	assert.Error(t, err)
	_, err = ProbabilityToDecimal(1.5)
	assert.Error(t, err)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.05, Clamp(0.01, 0.05, 0.95))
	assert.Equal(t, 0.95, Clamp(0.99, 0.05, 0.95))
	assert.Equal(t, 0.5, Clamp(0.5, 0.05, 0.95))
}
