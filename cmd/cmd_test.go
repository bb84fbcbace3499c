package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad"
	"github.com/gaze-network/launchpad/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	testCases := []struct {
		module   string
		expected string
	}{
		{module: "", expected: Version},
		{module: "launchpad", expected: launchpad.Version},
	}
	for _, tc := range testCases {
		var out bytes.Buffer
		cmd := NewVersionCommand()
		cmd.SetOut(&out)
		require.NoError(t, versionHandler(&versionCmdOptions{Modules: tc.module}, cmd, nil))
		assert.Equal(t, tc.expected+"\n", out.String())
	}

	err := versionHandler(&versionCmdOptions{Modules: "staking"}, NewVersionCommand(), nil)
	assert.ErrorIs(t, err, errs.Unsupported)
}

func TestGenerateKeypair(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cmd := NewGenerateKeypairCommand()
	cmd.SetOut(&out)
	require.NoError(t, generateKeypairHandler(&generateKeypairCmdOptions{Path: dir, Network: "testnet"}, cmd, nil))

	privateKey, err := os.ReadFile(filepath.Join(dir, "priv.key"))
	require.NoError(t, err)
	publicKey, err := os.ReadFile(filepath.Join(dir, "pub.key"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "priv_wif_testnet.key"))

	client, err := crypto.New(string(privateKey))
	require.NoError(t, err)
	assert.Equal(t, client.PublicKey(), string(publicKey))
	assert.Contains(t, out.String(), string(publicKey))

	t.Run("keeps existing key unless confirmed", func(t *testing.T) {
		cmd := NewGenerateKeypairCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader("no\n"))
		require.NoError(t, generateKeypairHandler(&generateKeypairCmdOptions{Path: dir, Network: "testnet"}, cmd, nil))
		again, err := os.ReadFile(filepath.Join(dir, "priv.key"))
		require.NoError(t, err)
		assert.Equal(t, privateKey, again)
	})

	t.Run("unsupported network", func(t *testing.T) {
		err := generateKeypairHandler(&generateKeypairCmdOptions{Path: dir, Network: "regtest"}, NewGenerateKeypairCommand(), nil)
		assert.ErrorIs(t, err, errs.Unsupported)
	})
}

func TestExportRequiresSale(t *testing.T) {
	err := exportHandler(&exportCmdOptions{SaleID: "  "}, NewExportCommand(), nil)
	assert.ErrorIs(t, err, errs.InvalidArgument)
}
