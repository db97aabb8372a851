package walletstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xqymain/Varcoin/api"

	"github.com/pkg/errors"
)

// UnspentSnapshot is the persisted form of a wallet's unspent pool.
type UnspentSnapshot struct {
	WalletID string       `json:"wallet_id"`
	Height   uint32       `json:"height"`
	Unspents []api.Output `json:"unspents"`
}

func unspentKey(walletID string) string {
	return fmt.Sprintf("wallets/%s/unspents", walletID)
}

// SaveUnspents writes a wallet's unspent pool snapshot.
func SaveUnspents(ctx context.Context, store Storage, snapshot *UnspentSnapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal unspents")
	}
	return store.Write(ctx, unspentKey(snapshot.WalletID), body)
}

// LoadUnspents reads a wallet's unspent pool snapshot.
func LoadUnspents(ctx context.Context, store Storage,
	walletID string) (*UnspentSnapshot, error) {

	body, err := store.Read(ctx, unspentKey(walletID))
	if err != nil {
		return nil, err
	}

	snapshot := &UnspentSnapshot{}
	if err := json.Unmarshal(body, snapshot); err != nil {
		return nil, errors.Wrap(err, "unmarshal unspents")
	}
	return snapshot, nil
}
