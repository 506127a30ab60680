package geoann

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidatesForEveryBuilder(t *testing.T) {
	builders := []Builder{
		BuilderRandom, BuilderNSW, BuilderNSWV2, BuilderHNSW,
		BuilderGeoGraphIncremental, BuilderGeoGraphSkylineDescent,
	}
	for _, b := range builders {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate(b, RouterGreedy), "builder %d", b)
	}
}

func TestValidateRejectsBadAlpha(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alpha = 1.5
	require.Error(t, cfg.Validate(BuilderRandom, RouterGreedy))
}

func TestValidateRejectsKGreaterThanL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KSearch = cfg.LSearch + 1
	require.Error(t, cfg.Validate(BuilderRandom, RouterGreedy))
}

func TestValidateRejectsUnknownRouter(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(BuilderRandom, Router(99)))
}

func TestConfigRngLazyInit(t *testing.T) {
	cfg := DefaultConfig()
	require.Nil(t, cfg.Rng)
	r := cfg.rng()
	require.NotNil(t, r)
	require.Same(t, r, cfg.rng())
}
