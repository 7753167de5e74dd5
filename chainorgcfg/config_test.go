package chainorgcfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsResolvesKnownNetwork(t *testing.T) {
	cfg := &Config{Network: "simnet"}
	params, err := cfg.Params()
	require.NoError(t, err)
	require.Equal(t, "simnet", params.Name)
}

func TestParamsRejectsUnknownNetwork(t *testing.T) {
	cfg := &Config{Network: "nosuchnet"}
	_, err := cfg.Params()
	require.Error(t, err)
}

func TestParamsCarriesScryptSelector(t *testing.T) {
	cfg := &Config{Network: "mainnet", Scrypt: true}
	params, err := cfg.Params()
	require.NoError(t, err)
	require.True(t, params.Scrypt)
}
