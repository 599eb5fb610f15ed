// Package keys implements key pair issuance for custodial wallets.
package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 12-word mnemonics.
const MnemonicEntropyBits = 128

// BIP-44 derivation path constants for the default account.
// Full path: m/44'/60'/0'/0/0
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinTypeEVM  = bip32.FirstHardenedChild + 60
)

// KeyPair holds a freshly generated wallet identity
type KeyPair struct {
	Address    string
	PrivateKey string
	Mnemonic   string
}

// Generate creates a new BIP-39 mnemonic and derives the key pair at
// m/44'/60'/0'/0/0 from it.
func Generate() (*KeyPair, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("generate mnemonic: %w", err)
	}

	return FromMnemonic(mnemonic)
}

// FromMnemonic derives the key pair at m/44'/60'/0'/0/0 from a mnemonic
func FromMnemonic(mnemonic string) (*KeyPair, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}

	for _, index := range []uint32{PurposeBIP44, CoinTypeEVM, bip32.FirstHardenedChild, 0, 0} {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", index, err)
		}
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, fmt.Errorf("derived key is not a valid secp256k1 key: %w", err)
	}

	return &KeyPair{
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(privateKey)),
		Mnemonic:   mnemonic,
	}, nil
}

// ParsePrivateKey parses a hex private key string (with or without 0x prefix)
func ParsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	trimmed := strings.TrimPrefix(privateKeyHex, "0x")
	privateKey, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// AddressFromPrivateKey returns the wallet address controlled by the given key
func AddressFromPrivateKey(privateKeyHex string) (string, error) {
	privateKey, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex(), nil
}
