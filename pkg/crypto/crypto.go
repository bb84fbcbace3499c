package crypto

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
)

// Client signs and verifies messages with a secp256k1 key pair.
// A Client created without a private key can only verify.
type Client struct {
	privateKey *btcec.PrivateKey
}

func New(privateKeyStr string) (*Client, error) {
	if privateKeyStr == "" {
		return &Client{}, nil
	}
	privateKeyBytes, err := hex.DecodeString(privateKeyStr)
	if err != nil {
		return nil, errors.Wrap(err, "decode private key")
	}
	if len(privateKeyBytes) != btcec.PrivKeyBytesLen {
		return nil, errors.Wrapf(errs.InvalidArgument, "private key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(privateKeyBytes))
	}
	privateKey, _ := btcec.PrivKeyFromBytes(privateKeyBytes)
	return &Client{
		privateKey: privateKey,
	}, nil
}

// CanSign reports whether the client holds a private key.
func (c *Client) CanSign() bool {
	return c.privateKey != nil
}

// PublicKey returns the hex encoded compressed public key.
func (c *Client) PublicKey() string {
	if c.privateKey == nil {
		return ""
	}
	return hex.EncodeToString(c.privateKey.PubKey().SerializeCompressed())
}

func (c *Client) Sign(message string) string {
	messageHash := chainhash.DoubleHashB([]byte(message))
	signature := ecdsa.Sign(c.privateKey, messageHash)
	return hex.EncodeToString(signature.Serialize())
}

func (c *Client) Verify(message, sigStr, pubKeyStr string) (bool, error) {
	sigBytes, err := hex.DecodeString(sigStr)
	if err != nil {
		return false, errors.Wrap(err, "signature decode")
	}

	pubBytes, err := hex.DecodeString(pubKeyStr)
	if err != nil {
		return false, errors.Wrap(err, "pubkey decode")
	}
	pubKey, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return false, errors.Wrap(err, "pubkey parse")
	}

	messageHash := chainhash.DoubleHashB([]byte(message))

	signature, err := ecdsa.ParseSignature(sigBytes)
	if err != nil {
		return false, errors.Wrap(err, "signature parse")
	}
	return signature.Verify(messageHash, pubKey), nil
}

// WIF returns the private key in wallet import format.
func (c *Client) WIF(params *chaincfg.Params) (string, error) {
	if c.privateKey == nil {
		return "", errors.Wrap(errs.InvalidArgument, "private key is not set")
	}
	wif, err := btcutil.NewWIF(c.privateKey, params, true)
	if err != nil {
		return "", errors.Wrap(err, "wif")
	}
	return wif.String(), nil
}
