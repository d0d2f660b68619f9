package entity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestModelsParse(t *testing.T) {
	models := map[string]interface{}{
		"account":           &Account{},
		"prediction_record": &PredictionRecord{},
		"watchlist_entry":   &WatchlistEntry{},
		"stock":             &Stock{},
	}

	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			_, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
			require.NoError(t, err)
		})
	}
}

func TestPredictionFactorsField(t *testing.T) {
	s, err := schema.Parse(&PredictionRecord{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := s.LookUpField("Factors")
	require.NotNil(t, field)
	assert.Equal(t, schema.DataType("text"), field.DataType)
}

func TestStringListRoundTrip(t *testing.T) {
	in := StringList{"Strong momentum", "RSI, oversold"}

	v, err := in.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	var empty StringList
	require.NoError(t, empty.Scan("{}"))
	assert.Empty(t, empty)
}
