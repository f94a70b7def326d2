package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004999", "1.00"},
		{"2.345", "2.35"},
		{"2.355", "2.36"},
		{"-1.005", "-1.01"},
		{"0", "0.00"},
	}
	for _, c := range cases {
		got := Round(MustParse(c.in))
		assert.Equal(t, c.want, got.StringFixed(MoneyScale), "Round(%s)", c.in)
	}
}

func TestRound_Idempotent(t *testing.T) {
	for _, s := range []string{"78.955", "0.005", "1234.5649", "99.999"} {
		once := Round(MustParse(s))
		assert.True(t, once.Equal(Round(once)), "Round must be idempotent for %s", s)
	}
}

func TestPercentOf_KeepsCalcScale(t *testing.T) {
	got := PercentOf(MustParse("1234.56"), MustParse("13.78"))

	// 1234.56 * 13.78 / 100 = 170.122368
	assert.Equal(t, "170.122368", got.StringFixed(CalcScale))
	assert.True(t, RoundCalc(MustParse("0.1234565")).Equal(MustParse("0.123457")))
	assert.True(t, RoundRate(MustParse("13.78495")).Equal(MustParse("13.785")))
}

func TestPercentOfRounded_EqualsRoundOfPercentOf(t *testing.T) {
	amounts := []string{"1200.00", "900.00", "3750.00", "933.00", "1.01", "5432.19", "0.00"}
	percents := []string{"6.58", "8.22", "1.40", "0.60", "2.20", "3.20", "10.00", "0.4", "2.8"}

	for _, a := range amounts {
		for _, p := range percents {
			amount, percent := MustParse(a), MustParse(p)
			assert.True(t,
				PercentOfRounded(amount, percent).Equal(Round(PercentOf(amount, percent))),
				"amount=%s percent=%s", a, p)
		}
	}
}

func TestPercentOfRounded_PensionScenario(t *testing.T) {
	got := PercentOfRounded(MustParse("1200.00"), MustParse("6.58"))
	assert.Equal(t, "78.96", got.StringFixed(MoneyScale))
}

func TestDailyRate_ZeroDivisor(t *testing.T) {
	assert.True(t, DailyRate(MustParse("1500.00"), 0).IsZero())
	assert.True(t, HourlyRate(MustParse("1500.00"), Zero).IsZero())
	assert.True(t, Ratio(5, 0).IsZero())
}

func TestDailyRate_CalcScale(t *testing.T) {
	got := DailyRate(MustParse("1500.00"), 21)
	assert.Equal(t, "71.428571", got.StringFixed(CalcScale))
}

func TestClamp(t *testing.T) {
	lo, hi := MustParse("900.00"), MustParse("3750.00")

	assert.Equal(t, "900.00", Clamp(MustParse("500.00"), lo, hi).StringFixed(2))
	assert.Equal(t, "1200.00", Clamp(MustParse("1200.00"), lo, hi).StringFixed(2))
	assert.Equal(t, "3750.00", Clamp(MustParse("9000.00"), lo, hi).StringFixed(2))
	// inverted bounds: the ceiling wins
	assert.Equal(t, "3750.00", Clamp(MustParse("500.00"), MustParse("4000.00"), hi).StringFixed(2))
}

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := Parse("12,50")
	assert.Error(t, err)

	d, err := Parse("12.50")
	assert.NoError(t, err)
	assert.Equal(t, "12.50", Format(d))
}
