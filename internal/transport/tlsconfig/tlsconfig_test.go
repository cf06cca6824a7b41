package tlsconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild_PlaintextReturnsNil(t *testing.T) {
	require.Nil(t, Build(false, false))
}

func TestBuild_TLSEnabledSetsSkipVerify(t *testing.T) {
	cfg := Build(true, true)
	require.NotNil(t, cfg)
	require.True(t, cfg.InsecureSkipVerify)
}

func TestBuild_TLSEnabledVerifiesByDefault(t *testing.T) {
	cfg := Build(true, false)
	require.NotNil(t, cfg)
	require.False(t, cfg.InsecureSkipVerify)
}
