package txbuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/currency"
	"github.com/xqymain/Varcoin/varcoin"
	"github.com/xqymain/Varcoin/walletstore"

	"github.com/tokenized/logger"
)

// Status is the outcome of a selection run. These are expected results, not errors, and
// the tokens are stable.
type Status string

const (
	StatusOK                Status = ""
	StatusNotEnoughFunds    Status = "NOT_ENOUGH_FUNDS"
	StatusDoesNotFitInBlock Status = "TRANSACTION_DOES_NOT_FIT_IN_BLOCK"
)

// Optimization levels bound how many picks the coin stack optimizer may take per
// transaction.
const (
	// OptimizationsMinimal allows some dust optimization but never "stack of coins"
	// optimization. Minimal does not mean none.
	OptimizationsMinimal = 9

	OptimizationsPerTx           = 50
	OptimizationsPerTxAggressive = 200

	// MedianPercent caps optimized transactions at this share of the effective median.
	MedianPercent           = 5
	MedianPercentAggressive = 10

	// StackOptimizationThreshold is the stack height beyond which 10 coins are spent to
	// compact the stack.
	StackOptimizationThreshold = 20

	// TwoThreshold is the stack height that qualifies a pair of stacks to cover a single
	// digit together (e.g. 7 + 9 for 6).
	TwoThreshold = 10

	// ChangeOutputsReserve is the expected maximum number of change outputs the
	// denomination split produces.
	ChangeOutputsReserve = 8

	// maxFeeRetries bounds the fee adjustment loop. The loop terminates in practice
	// because size grows sub linearly in coin count and the pool is finite.
	maxFeeRetries = 32
)

const (
	OptimizationLevelMinimal    = "minimal"
	OptimizationLevelNormal     = "normal"
	OptimizationLevelAggressive = "aggressive"
)

// UnspentSelector picks which of the wallet's outputs a transaction consumes. It owns the
// candidate pool so pool manipulation and selection state cannot desynchronize.
type UnspentSelector struct {
	currency *currency.Currency
	unspents []api.Output

	usedUnspents         []api.Output
	optimizationUnspents []api.Output

	usedTotal   uint64
	inputsCount int

	raAmounts []uint64
}

// NewUnspentSelector takes ownership of the candidate pool.
func NewUnspentSelector(cur *currency.Currency, unspents []api.Output) *UnspentSelector {
	return &UnspentSelector{currency: cur, unspents: unspents}
}

// Reset replaces the pool and clears all accumulated selection state.
func (s *UnspentSelector) Reset(unspents []api.Output) {
	s.unspents = unspents
	s.usedUnspents = nil
	s.optimizationUnspents = nil
	s.usedTotal = 0
	s.inputsCount = 0
	s.raAmounts = nil
}

// UsedUnspents returns the committed selection.
func (s *UnspentSelector) UsedUnspents() []api.Output {
	return s.usedUnspents
}

// RaAmounts returns the amounts to request random ring candidates for, one per selected
// input.
func (s *UnspentSelector) RaAmounts() []uint64 {
	return s.raAmounts
}

// SelectOptimalOutputs chooses inputs covering totalAmount plus a size proportional fee.
// It iterates on the fee: a candidate selection implies a size, the size implies a fee,
// and a larger fee may need more coins.
func (s *UnspentSelector) SelectOptimalOutputs(ctx context.Context, blockHeight uint32,
	blockTime uint64, confirmedHeight uint32, effectiveMedianSize int, anonymity int,
	totalAmount uint64, totalOutputs int, feePerByte uint64,
	optimizationLevel string) (Status, uint64) {

	ctx = logger.ContextWithLogSubSystem(ctx, SubSystem)

	have, dust, maxDigit := s.createHaveCoins(blockHeight, blockTime, confirmedHeight)

	fee := s.currency.MinimumFee
	optimizations := OptimizationsPerTx
	medianPercent := MedianPercent
	switch optimizationLevel {
	case OptimizationLevelAggressive:
		optimizations = OptimizationsPerTxAggressive
		medianPercent = MedianPercentAggressive
	case OptimizationLevelMinimal:
		optimizations = OptimizationsMinimal
	}
	optimizationMedian := effectiveMedianSize * medianPercent / 100

	for attempt := 0; attempt < maxFeeRetries; attempt++ {
		if !s.selectCoins(ctx, have, dust, maxDigit, totalAmount+fee, anonymity,
			optimizations) {
			return StatusNotEnoughFunds, 0
		}

		changeDustFee := (s.usedTotal - totalAmount - fee) % s.currency.DefaultDustThreshold
		txSize := MaximumTxSize(s.inputsCount, totalOutputs+ChangeOutputsReserve, anonymity)

		if txSize > optimizationMedian && optimizations > 0 {
			s.unoptimizeAmounts(have, dust)
			optimizations /= 2
			if optimizations < 10 {
				optimizations = 0 // no point retrying for so few optimizations
			}
			continue
		}
		if txSize > effectiveMedianSize {
			return StatusDoesNotFitInBlock, 0
		}

		sizeFee := feePerByte * uint64(txSize)
		if fee+changeDustFee >= sizeFee {
			change := s.usedTotal - totalAmount - fee - changeDustFee
			s.combineOptimizedUnspents()

			var finalCoins strings.Builder
			for _, uu := range s.usedUnspents {
				fmt.Fprintf(&finalCoins, " %d", uu.Amount)
			}
			logger.Verbose(ctx, "Selected used_total=%d for total_amount=%d, final coins%s",
				s.usedTotal, totalAmount, finalCoins.String())
			return StatusOK, change
		}

		dustThreshold := s.currency.DefaultDustThreshold
		fee = (sizeFee - changeDustFee + dustThreshold - 1) / dustThreshold * dustThreshold
		s.unoptimizeAmounts(have, dust)
	}

	logger.Warn(ctx, "Fee adjustment did not settle after %d attempts", maxFeeRetries)
	return StatusNotEnoughFunds, 0
}

// AddMixedInputs pops ring candidates for every selected unspent from the node provided
// pool and forwards the prepared inputs to the builder.
func (s *UnspentSelector) AddMixedInputs(ctx context.Context,
	viewSecretKey varcoin.SecretKey,
	walletRecords map[varcoin.PublicKey]walletstore.WalletRecord, builder *TxBuilder,
	anonymity int, raResponse *api.GetRandomOutputsResponse) error {

	for _, uu := range s.usedUnspents {
		pool := raResponse.Outputs[uu.Amount]
		if len(pool) < anonymity {
			return newError(ErrorCodeNotEnoughAnonymity, fmt.Sprintf("Ring for amount %d needs %d candidates, %d provided", uu.Amount, anonymity, len(pool)))
		}

		// Skip candidates colliding with the real output or with an already picked
		// member, the published offsets must be strictly increasing.
		seen := map[uint32]bool{uu.GlobalIndex: true}
		var mixOutputs []api.Output
		for len(mixOutputs) < anonymity {
			if len(pool) == 0 {
				return newError(ErrorCodeNotEnoughAnonymity, fmt.Sprintf("Ring for amount %d needs %d candidates, %d usable", uu.Amount, anonymity, len(mixOutputs)))
			}
			out := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			if !seen[out.GlobalIndex] {
				seen[out.GlobalIndex] = true
				mixOutputs = append(mixOutputs, out)
			}
		}
		raResponse.Outputs[uu.Amount] = pool

		senderKeys := varcoin.AccountKeys{ViewSecretKey: viewSecretKey}
		addr, err := s.currency.ParseAccountAddressString(uu.Address)
		if err != nil {
			return newError(ErrorCodeInvalidAddress, "Could not parse address "+uu.Address)
		}
		senderKeys.Address = addr

		record, ok := walletRecords[addr.SpendPublicKey]
		if !ok || record.SpendPublicKey != addr.SpendPublicKey {
			return newError(ErrorCodeUnknownSpendKey,
				"No keys in wallet for address "+uu.Address)
		}
		senderKeys.SpendSecretKey = record.SpendSecretKey

		if _, err := builder.AddInput(senderKeys, uu, mixOutputs); err != nil {
			return err
		}
	}
	return nil
}
