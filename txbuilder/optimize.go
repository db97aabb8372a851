package txbuilder

import (
	"context"
	"sort"

	"github.com/xqymain/Varcoin/api"

	"github.com/tokenized/logger"
)

// fakeLarge keeps the digit arithmetic positive when the selection already exceeds the
// target.
const fakeLarge = 1000000000000000000

// haveCoins groups spendable non dust outputs by decimal position and leading digit: an
// amount d·10^k with d in 1..9 lives at digit k, leading d. Stacks pop from the back.
type haveCoins map[int]map[int][]api.Output

// dustCoins groups dust outputs by exact amount.
type dustCoins map[uint64][]api.Output

func digitOf(amount uint64) (int, int) {
	digit := 0
	for amount > 9 {
		digit++
		amount /= 10
	}
	return digit, int(amount)
}

func havePush(have haveCoins, un api.Output) {
	digit, leading := digitOf(un.Amount)
	stacks := have[digit]
	if stacks == nil {
		stacks = make(map[int][]api.Output)
		have[digit] = stacks
	}
	stacks[leading] = append(stacks[leading], un)
}

func havePop(have haveCoins, digit, leading int) api.Output {
	stacks := have[digit]
	stack := stacks[leading]
	un := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(stacks, leading)
		if len(stacks) == 0 {
			delete(have, digit)
		}
	} else {
		stacks[leading] = stack
	}
	return un
}

// haveLargest returns the position and amount of the largest coin, the back of the
// largest leading stack at the largest digit.
func haveLargest(have haveCoins) (int, int, uint64) {
	bestDigit := -1
	for digit := range have {
		if digit > bestDigit {
			bestDigit = digit
		}
	}
	if bestDigit < 0 {
		return -1, 0, 0
	}
	bestLeading := 0
	for leading := range have[bestDigit] {
		if leading > bestLeading {
			bestLeading = leading
		}
	}
	stack := have[bestDigit][bestLeading]
	return bestDigit, bestLeading, stack[len(stack)-1].Amount
}

func sortedDigits(have haveCoins) []int {
	result := make([]int, 0, len(have))
	for digit := range have {
		result = append(result, digit)
	}
	sort.Ints(result)
	return result
}

func dustPush(dust dustCoins, un api.Output) {
	dust[un.Amount] = append(dust[un.Amount], un)
}

func dustPop(dust dustCoins, amount uint64) api.Output {
	stack := dust[amount]
	un := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(dust, amount)
	} else {
		dust[amount] = stack
	}
	return un
}

// dustLowerBound returns the smallest dust amount >= want.
func dustLowerBound(dust dustCoins, want uint64) (uint64, bool) {
	found := false
	best := uint64(0)
	for amount := range dust {
		if amount >= want && (!found || amount < best) {
			best = amount
			found = true
		}
	}
	return best, found
}

func dustLargest(dust dustCoins) (uint64, bool) {
	found := false
	best := uint64(0)
	for amount := range dust {
		if amount > best {
			best = amount
			found = true
		}
	}
	return best, found
}

// take moves a coin into the provisional optimization set.
func (s *UnspentSelector) take(un api.Output) {
	s.optimizationUnspents = append(s.optimizationUnspents, un)
	s.usedTotal += un.Amount
	s.inputsCount++
}

// createHaveCoins partitions the pool into spendable classified coins and dust, skipping
// unconfirmed outputs, immature mined money and still locked outputs. Iterating the pool
// in reverse leaves the oldest coins at the stack tops, so they are spent first.
func (s *UnspentSelector) createHaveCoins(blockHeight uint32, blockTime uint64,
	confirmedHeight uint32) (haveCoins, dustCoins, int) {

	have := make(haveCoins)
	dust := make(dustCoins)
	maxDigit := 0
	for i := len(s.unspents) - 1; i >= 0; i-- {
		un := s.unspents[i]
		if un.Height >= confirmedHeight { // unconfirmed
			continue
		}
		if un.Coinbase && !s.currency.IsMinedMoneyUnlocked(un.Height, blockHeight) {
			continue // immature mined money
		}
		if !s.currency.IsTransactionSpendTimeUnlocked(un.UnlockTime, blockHeight, blockTime) {
			continue
		}
		if !s.currency.IsDust(un.Amount) {
			digit, _ := digitOf(un.Amount)
			if digit > maxDigit {
				maxDigit = digit
			}
			havePush(have, un)
		} else {
			dustPush(dust, un)
		}
	}
	return have, dust, maxDigit
}

// combineOptimizedUnspents commits the provisional picks into the final selection.
func (s *UnspentSelector) combineOptimizedUnspents() {
	for _, un := range s.optimizationUnspents {
		s.raAmounts = append(s.raAmounts, un.Amount)
	}
	s.usedUnspents = append(s.usedUnspents, s.optimizationUnspents...)
	s.optimizationUnspents = nil
}

// unoptimizeAmounts returns every provisional pick to its pool, exactly restoring the
// pre selection state.
func (s *UnspentSelector) unoptimizeAmounts(have haveCoins, dust dustCoins) {
	for _, un := range s.optimizationUnspents {
		s.usedTotal -= un.Amount
		s.inputsCount--
		if !s.currency.IsDust(un.Amount) {
			havePush(have, un)
		} else {
			dustPush(dust, un)
		}
	}
	s.optimizationUnspents = nil
}

// optimizeAmounts runs digit rounding: for each decimal position it picks coins whose
// leading digits push that digit of the selected total up to the next round value, so the
// change stays concentrated in few high order denominations.
func (s *UnspentSelector) optimizeAmounts(ctx context.Context, have haveCoins,
	maxDigit int, totalAmount uint64) {

	logger.Verbose(ctx, "Sub optimizing amount=%d total_amount=%d used_total=%d",
		fakeLarge+totalAmount-s.usedTotal, totalAmount, s.usedTotal)

	digitAmount := uint64(1)
	for digit := 0; digit <= maxDigit; digit, digitAmount = digit+1, digitAmount*10 {
		if s.usedTotal >= totalAmount && digitAmount > s.usedTotal {
			break // no optimization far beyond the requested sum
		}

		am := 10 - ((fakeLarge+totalAmount+digitAmount-1-s.usedTotal)/digitAmount)%10
		stacks := have[digit]
		if len(stacks) == 0 { // no coins for digit
			continue
		}

		// Prefer a pair of stacks whose leading digits sum to the needed value, at least
		// one of them tall, with maximal combined height.
		var bestTwo [2]int
		bestWeight := 0
		for a := 1; a <= 9; a++ {
			for b := 1; b <= 9; b++ {
				if len(stacks[a]) == 0 || len(stacks[b]) == 0 {
					continue
				}
				if (uint64(a)+uint64(b)+am)%10 == 0 &&
					(len(stacks[a]) >= TwoThreshold || len(stacks[b]) >= TwoThreshold) &&
					len(stacks[a])+len(stacks[b]) > bestWeight {
					bestWeight = len(stacks[a]) + len(stacks[b])
					bestTwo[0] = a
					bestTwo[1] = b
				}
			}
		}
		if bestWeight != 0 {
			logger.Verbose(ctx, "Found pair for digit=%d am=%d coins=(%d, %d) sum weight=%d",
				digit, 10-am, bestTwo[0], bestTwo[1], bestWeight)
			for i := 0; i != 2; i++ {
				s.take(havePop(have, digit, bestTwo[i]))
			}
			continue
		}

		if am == 10 {
			continue
		}

		// Otherwise a single stack: exact digit match, or the tallest one large enough.
		bestSingle := 0
		bestWeight = 0
		for a := 1; a <= 9; a++ {
			if len(stacks[a]) == 0 {
				continue
			}
			if (uint64(a)+am)%10 == 0 {
				bestSingle = a
				break
			} else if uint64(a) > 10-am && len(stacks[a]) > bestWeight {
				bestWeight = len(stacks[a])
				bestSingle = a
			}
		}
		if bestSingle != 0 {
			logger.Verbose(ctx, "Found single for digit=%d am=%d coin=%d weight=%d",
				digit, 10-am, bestSingle, bestWeight)
			s.take(havePop(have, digit, bestSingle))
			continue
		}

		logger.Verbose(ctx, "Found nothing for digit=%d", digit)
	}

	logger.Verbose(ctx, "Sub optimized used_total=%d for total=%d", s.usedTotal, totalAmount)
}

// selectCoins gathers provisional picks totaling at least totalAmount. It spends dust
// when anonymity permits, compacts oversized coin stacks, digit rounds, then falls back
// to covering the shortfall with the smallest sufficient coin or the largest remaining
// ones.
func (s *UnspentSelector) selectCoins(ctx context.Context, have haveCoins, dust dustCoins,
	maxDigit int, totalAmount uint64, anonymity int, optimizationCount int) bool {

	logger.Verbose(ctx, "Optimizing amount=%d total_amount=%d used_total=%d",
		fakeLarge+totalAmount-s.usedTotal, totalAmount, s.usedTotal)

	if anonymity == 0 {
		if s.usedTotal < totalAmount {
			// A single dust coin >= the shortfall covers it outright, it can be very large.
			if amount, ok := dustLowerBound(dust, totalAmount-s.usedTotal); ok {
				un := dustPop(dust, amount)
				logger.Verbose(ctx, "Found single large dust coin=%d", un.Amount)
				s.take(un)
			}
		}
		// Fill with dust coins, largest first, but no more than the optimization budget.
		for s.usedTotal < totalAmount && len(dust) != 0 && optimizationCount >= 1 {
			amount, _ := dustLargest(dust)
			un := dustPop(dust, amount)
			logger.Verbose(ctx, "Found optimization dust coin=%d", un.Amount)
			s.take(un)
			optimizationCount--
		}
	}

	// Gradually compact stacks of identical denominations, 10 coins at a time.
	for optimizationCount >= 10 {
		bestWeight := StackOptimizationThreshold
		bestDigit, bestLeading := -1, 0
		for _, digit := range sortedDigits(have) {
			for leading := 1; leading <= 9; leading++ {
				if len(have[digit][leading]) > bestWeight {
					bestWeight = len(have[digit][leading])
					bestDigit, bestLeading = digit, leading
				}
			}
		}
		if bestDigit < 0 {
			break
		}
		for i := 0; i != 10; i++ { // never empties the stack because of the threshold
			un := havePop(have, bestDigit, bestLeading)
			logger.Verbose(ctx, "Found optimization stack for coin=%d", un.Amount)
			s.take(un)
			optimizationCount--
		}
	}

	s.optimizeAmounts(ctx, have, maxDigit, totalAmount)
	if s.usedTotal >= totalAmount {
		return true
	}

	// Smallest single coin >= the shortfall.
	found := false
	digitAmount := uint64(1)
	for digit := 0; !found && digit <= maxDigit; digit, digitAmount = digit+1, digitAmount*10 {
		stacks := have[digit]
		for leading := 1; leading <= 9; leading++ {
			if len(stacks[leading]) != 0 &&
				uint64(leading)*digitAmount >= totalAmount-s.usedTotal {
				logger.Verbose(ctx, "Found single large coin for digit=%d coin=%d",
					digit, leading)
				s.take(havePop(have, digit, leading))
				found = true
				break
			}
		}
	}
	if s.usedTotal >= totalAmount {
		return true
	}

	// Start over with the largest coins, dust included when anonymity allows, until the
	// amount is satisfied.
	s.unoptimizeAmounts(have, dust)
	for s.usedTotal < totalAmount {
		if len(have) == 0 && (anonymity != 0 || len(dust) == 0) {
			return false
		}
		var haAmount, duAmount uint64
		if len(have) != 0 {
			_, _, haAmount = haveLargest(have)
		}
		if anonymity == 0 && len(dust) != 0 {
			duAmount, _ = dustLargest(dust)
		}
		if haAmount > duAmount {
			digit, leading, _ := haveLargest(have)
			un := havePop(have, digit, leading)
			logger.Verbose(ctx, "Found filler coin=%d", un.Amount)
			s.take(un)
		} else {
			un := dustPop(dust, duAmount)
			logger.Verbose(ctx, "Found filler dust coin=%d", un.Amount)
			s.take(un)
		}
	}

	s.optimizeAmounts(ctx, have, maxDigit, totalAmount)
	return true
}
