package shared

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SigningKeyPair represents a cryptographic ECDSA signing key pair for Ethereum-style signatures
type SigningKeyPair struct {
	PrivateKey *ecdsa.PrivateKey `json:"private_key"`
	PublicKey  *ecdsa.PublicKey  `json:"public_key"`
}

// GenerateSigningKeyPair generates a new ECDSA signing key pair using secp256k1 curve (ETH compatible)
func GenerateSigningKeyPair() (*SigningKeyPair, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDSA key pair: %v", err)
	}

	return &SigningKeyPair{
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}, nil
}

// SigningKeyPairFromHex loads a key pair from a hex private key (with or without 0x)
func SigningKeyPairFromHex(hexKey string) (*SigningKeyPair, error) {
	if len(hexKey) >= 2 && hexKey[0] == '0' && (hexKey[1] == 'x' || hexKey[1] == 'X') {
		hexKey = hexKey[2:]
	}
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	return &SigningKeyPair{
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}, nil
}

// SignData signs the given data using Ethereum-style signatures
func (kp *SigningKeyPair) SignData(data []byte) ([]byte, error) {
	// Standard Ethereum message signing (includes prefix)
	hash := accounts.TextHash(data)

	// 65-byte signature with recovery ID
	signature, err := crypto.Sign(hash, kp.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign data with ETH style: %v", err)
	}

	return signature, nil
}

// GetEthAddress returns the Ethereum address for this key pair
func (kp *SigningKeyPair) GetEthAddress() common.Address {
	return crypto.PubkeyToAddress(*kp.PublicKey)
}

// RecoverEthAddress returns the address that produced an Ethereum-style signature over data
func RecoverEthAddress(data []byte, signature []byte) (common.Address, error) {
	if len(signature) != 65 {
		return common.Address{}, fmt.Errorf("invalid ETH signature length: expected 65 bytes, got %d", len(signature))
	}

	hash := accounts.TextHash(data)

	// Wallets emit v as 27/28; crypto.SigToPub expects 0/1
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	recoveredPubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key from signature: %v", err)
	}
	return crypto.PubkeyToAddress(*recoveredPubKey), nil
}

// VerifyEthSignature verifies an Ethereum-style signature against the given data and address
func VerifyEthSignature(data []byte, signature []byte, expectedAddress common.Address) error {
	recoveredAddress, err := RecoverEthAddress(data, signature)
	if err != nil {
		return err
	}

	if recoveredAddress != expectedAddress {
		return fmt.Errorf("signature verification failed: expected address %s, got %s",
			expectedAddress.Hex(), recoveredAddress.Hex())
	}

	return nil
}
