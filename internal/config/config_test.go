package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, Load())

		assert.Equal(t, ":8080", APIAddr())
		assert.Equal(t, StoreMemory, ReadingStore())
		assert.Equal(t, "energy/readings", MQTTTopic())
		assert.False(t, UseCloudServices())

		catalog, err := PricePlans()
		require.NoError(t, err)
		require.Equal(t, 3, catalog.Len())
		p, ok := catalog.Lookup("price-plan-1")
		require.True(t, ok)
		assert.Equal(t, "The Green Eco", p.EnergySupplier)
		assert.Equal(t, "2", p.UnitRate.String())
	})

	t.Run("environment overrides", func(t *testing.T) {
		viper.Reset()
		t.Setenv("READING_STORE", "Postgres")
		t.Setenv("API_ADDR", ":9090")
		require.NoError(t, Load())

		assert.Equal(t, StorePostgres, ReadingStore())
		assert.Equal(t, ":9090", APIAddr())
	})

	t.Run("unknown reading store", func(t *testing.T) {
		viper.Reset()
		t.Setenv("READING_STORE", "redis")

		err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown READING_STORE")
	})

	t.Run("price plans from config file", func(t *testing.T) {
		viper.Reset()
		file := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(file, []byte(`
price_plans:
  - name: flat
    supplier: Flat Co
    unit_rate: 0.21
  - name: green
    unit_rate: "0.19"
`), 0o600))
		t.Setenv("CONFIG_FILE", file)
		require.NoError(t, Load())

		catalog, err := PricePlans()

		require.NoError(t, err)
		require.Equal(t, 2, catalog.Len())
		assert.Equal(t, "flat", catalog.Plans()[0].PlanName)
		assert.Equal(t, "0.21", catalog.Plans()[0].UnitRate.String())
		assert.Equal(t, "0.19", catalog.Plans()[1].UnitRate.String())
	})

	t.Run("duplicate plan names are rejected", func(t *testing.T) {
		viper.Reset()
		file := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(file, []byte(`
price_plans:
  - name: flat
    unit_rate: "1"
  - name: flat
    unit_rate: "2"
`), 0o600))
		t.Setenv("CONFIG_FILE", file)
		require.NoError(t, Load())

		_, err := PricePlans()

		require.ErrorIs(t, err, domain.ErrDuplicatePlan)
	})
}
