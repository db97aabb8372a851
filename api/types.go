// Package api holds the data types exchanged between the wallet core and the varcoind
// node over JSON-RPC.
package api

import (
	"github.com/xqymain/Varcoin/varcoin"
)

// Output is one on chain output as the wallet sees it.
type Output struct {
	Amount uint64 `json:"amount"`

	// GlobalIndex is the chain wide ordinal among outputs of the same amount.
	GlobalIndex uint32 `json:"global_index"`

	TransactionPublicKey varcoin.PublicKey `json:"transaction_public_key"`
	IndexInTransaction   uint32            `json:"index_in_transaction"`

	// PublicKey is the output's one time key.
	PublicKey varcoin.PublicKey `json:"public_key"`

	// KeyImage is precomputed by the wallet for its own outputs.
	KeyImage varcoin.KeyImage `json:"key_image"`

	Height     uint32 `json:"height"`
	UnlockTime uint64 `json:"unlock_time"`

	// Coinbase marks a block reward output, which must mature before it is spendable.
	Coinbase bool `json:"coinbase"`

	// Address is the coded account address owning the output.
	Address string `json:"address"`

	Dust bool `json:"dust"`
}

// GetStatusRequest asks the node for its tip state. Sending the previous response makes
// the node long poll until something changes.
type GetStatusRequest struct {
	TopBlockHash           *varcoin.Hash32 `json:"top_block_hash,omitempty"`
	TransactionPoolVersion uint32          `json:"transaction_pool_version,omitempty"`
	OutgoingPeerCount      uint32          `json:"outgoing_peer_count,omitempty"`
	IncomingPeerCount      uint32          `json:"incoming_peer_count,omitempty"`
}

type GetStatusResponse struct {
	TopBlockHeight               uint32         `json:"top_block_height"`
	TopKnownBlockHeight          uint32         `json:"top_known_block_height"`
	TopBlockHash                 varcoin.Hash32 `json:"top_block_hash"`
	TopBlockTimestamp            uint64         `json:"top_block_timestamp"`
	TopBlockDifficulty           uint64         `json:"top_block_difficulty"`
	RecommendedFeePerByte        uint64         `json:"recommended_fee_per_byte"`
	NextBlockEffectiveMedianSize uint64         `json:"next_block_effective_median_size"`
	TransactionPoolVersion       uint32         `json:"transaction_pool_version"`
	OutgoingPeerCount            uint32         `json:"outgoing_peer_count"`
	IncomingPeerCount            uint32         `json:"incoming_peer_count"`
}

// GetRandomOutputsRequest asks for ring decoy candidates per amount.
type GetRandomOutputsRequest struct {
	Amounts   []uint64 `json:"amounts"`
	OutsCount int      `json:"outs_count"`

	// ConfirmedHeightOrDepth selects how deep candidates must be buried. Negative values
	// are relative to the tip.
	ConfirmedHeightOrDepth int64 `json:"confirmed_height_or_depth"`
}

type GetRandomOutputsResponse struct {
	Outputs map[uint64][]Output `json:"outputs"`
}

type SendTransactionRequest struct {
	BinaryTransaction []byte `json:"binary_transaction"`
}

type SendTransactionResponse struct {
	SendResult string `json:"send_result"`
}
