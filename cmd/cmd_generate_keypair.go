package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common"
	"github.com/gaze-network/launchpad/pkg/crypto"
	"github.com/spf13/cobra"
)

type generateKeypairCmdOptions struct {
	Path    string
	Network string
}

func NewGenerateKeypairCommand() *cobra.Command {
	opts := &generateKeypairCmdOptions{}

	cmd := &cobra.Command{
		Use:   "generate-keypair",
		Short: "Generate new public/private keypair for export signatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateKeypairHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Path, "path", "/data/keys", `Path to save to key pair file`)
	flags.StringVar(&opts.Network, "network", common.NetworkMainnet.String(), "Network of the WIF encoded private key, E.g. `mainnet` or `testnet`")

	return cmd
}

func generateKeypairHandler(opts *generateKeypairCmdOptions, cmd *cobra.Command, _ []string) error {
	network, err := common.ParseNetwork(opts.Network)
	if err != nil {
		return errors.WithStack(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating key pair\n")
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return errors.Wrap(err, "generate private key")
	}
	privateKeyHex := hex.EncodeToString(privateKey.Serialize())
	client, err := crypto.New(privateKeyHex)
	if err != nil {
		return errors.Wrap(err, "new crypto client")
	}
	fmt.Fprintf(out, "Public key: %s\n", client.PublicKey())

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return errors.Wrap(err, "create directory")
	}

	privateKeyPath := path.Join(opts.Path, "priv.key")
	if _, err := os.Stat(privateKeyPath); err == nil {
		fmt.Fprintf(out, "Existing private key found at %s\n[WARNING] THE EXISTING PRIVATE KEY WILL BE LOST\nType [replace] to replace existing private key: ", privateKeyPath)
		var ans string
		fmt.Fscanln(cmd.InOrStdin(), &ans)
		if ans != "replace" {
			fmt.Fprintf(out, "Keypair generation aborted\n")
			return nil
		}
	}

	if err := os.WriteFile(privateKeyPath, []byte(privateKeyHex), 0o600); err != nil {
		return errors.Wrap(err, "write private key file")
	}
	fmt.Fprintf(out, "Private key saved at %s\n", privateKeyPath)

	wifKey, err := client.WIF(network.ChainParams())
	if err != nil {
		return errors.Wrap(err, "get WIF key")
	}
	wifKeyPath := path.Join(opts.Path, fmt.Sprintf("priv_wif_%s.key", network))
	if err := os.WriteFile(wifKeyPath, []byte(wifKey), 0o600); err != nil {
		return errors.Wrap(err, "write WIF private key file")
	}
	fmt.Fprintf(out, "WIF private key saved at %s\n", wifKeyPath)

	publicKeyPath := path.Join(opts.Path, "pub.key")
	if err := os.WriteFile(publicKeyPath, []byte(client.PublicKey()), 0o644); err != nil {
		return errors.Wrap(err, "write public key file")
	}
	fmt.Fprintf(out, "Public key saved at %s\n", publicKeyPath)
	return nil
}
