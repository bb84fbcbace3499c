package common

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork(" Testnet ")
	require.NoError(t, err)
	assert.Equal(t, NetworkTestnet, n)
	assert.Equal(t, &chaincfg.TestNet3Params, n.ChainParams())

	_, err = ParseNetwork("regtest")
	assert.ErrorIs(t, err, errs.Unsupported)
}
