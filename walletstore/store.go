// Package walletstore holds the wallet side records the transaction core consumes: the
// view secret, the per address spend keys, and persistence of the unspent pool.
package walletstore

import (
	"github.com/xqymain/Varcoin/varcoin"

	"github.com/pkg/errors"
)

var (
	ErrUnknownAddress = errors.New("No keys in wallet for address")
)

// WalletRecord is one spendable address's key material.
type WalletRecord struct {
	SpendPublicKey varcoin.PublicKey `json:"spend_public_key"`
	SpendSecretKey varcoin.SecretKey `json:"spend_secret_key"`
}

// Store is a wallet's key material: the process wide view secret plus a record per
// address. Secrets are passed by reference into the core and zeroized by the owner.
type Store struct {
	ViewSecretKey varcoin.SecretKey                  `json:"view_secret_key"`
	Records       map[varcoin.PublicKey]WalletRecord `json:"records"`
}

// Find returns the record for a spend public key.
func (s *Store) Find(spendPublicKey varcoin.PublicKey) (WalletRecord, error) {
	record, ok := s.Records[spendPublicKey]
	if !ok {
		return WalletRecord{}, errors.Wrap(ErrUnknownAddress, spendPublicKey.String())
	}
	return record, nil
}

// DeriveTxDerivationSeed derives the per wallet secret that makes transaction keys
// deterministic. It is bound to the wallet's key material so no extra state needs to be
// stored or backed up.
func DeriveTxDerivationSeed(viewSecretKey varcoin.SecretKey,
	firstSpendSecretKey varcoin.SecretKey) varcoin.Hash32 {

	seed := varcoin.FastHash(viewSecretKey[:], firstSpendSecretKey[:])
	return varcoin.FastHash([]byte("tx_derivation"), seed[:])
}
