package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 187.45, RoundPrice(187.4499999))
	assert.Equal(t, 10.01, RoundPrice(10.005))
	assert.Equal(t, 0.0, RoundPrice(0))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 10.0, PercentChange(110, 100))
	assert.Equal(t, -2.5, PercentChange(97.5, 100))
	assert.Equal(t, 0.0, PercentChange(5, 0))
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 81.67, Average([]float64{80, 85, 80}))
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2024, 3, 2, 15, 4, 5, 0, time.UTC)
	days := LastNDays(now, 3)

	assert.Equal(t, []string{"2024-02-29", "2024-03-01", "2024-03-02"},
		[]string{FormatDate(days[0]), FormatDate(days[1]), FormatDate(days[2])})
}

func TestGoSafeRecovers(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	GoSafe(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()
}

func TestToPointer(t *testing.T) {
	p := ToPointer(42)
	assert.Equal(t, 42, *p)
}
