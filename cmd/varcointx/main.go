package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/currency"
	"github.com/xqymain/Varcoin/txbuilder"
	"github.com/xqymain/Varcoin/varcoin"
	"github.com/xqymain/Varcoin/walletnode"
	"github.com/xqymain/Varcoin/walletstore"

	"github.com/tokenized/config"
	"github.com/tokenized/logger"
)

type Config struct {
	Network           string `default:"mainnet" envconfig:"NETWORK" json:"network"`
	Anonymity         int    `default:"6" envconfig:"ANONYMITY" json:"anonymity"`
	FeePerByte        uint64 `default:"0" envconfig:"FEE_PER_BYTE" json:"fee_per_byte"` // 0 uses the node recommendation
	OptimizationLevel string `default:"normal" envconfig:"OPTIMIZATION_LEVEL" json:"optimization_level"`
	ConfirmedDepth    uint32 `default:"6" envconfig:"CONFIRMED_DEPTH" json:"confirmed_depth"`
	Broadcast         bool   `default:"false" envconfig:"BROADCAST" json:"broadcast"`

	Node walletnode.Config `json:"node"`
}

// WalletFile is the unencrypted wallet export this tool reads.
type WalletFile struct {
	ViewSecretKey varcoin.SecretKey          `json:"view_secret_key"`
	Records       []walletstore.WalletRecord `json:"records"`
	Unspents      []api.Output               `json:"unspents"`
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), true, true, "")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	maskedConfig, err := config.MarshalJSONMaskedRaw(cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to marshal config : %s", err)
	}

	logger.InfoWithFields(ctx, []logger.Field{
		logger.JSON("config", maskedConfig),
	}, "Config")

	if len(os.Args) < 2 {
		logger.Fatal(ctx, "Not enough arguments. Need command (create_send)")
	}

	switch os.Args[1] {
	case "create_send":
		CreateSend(ctx, cfg, os.Args[2:])
	default:
		logger.Fatal(ctx, "Unknown command : %s", os.Args[1])
	}
}

// CreateSend builds a signed transaction paying an amount to an address out of the
// wallet's unspents.
// Parameters: <Wallet File> <To Address> <Send Amount> [Payment ID]
func CreateSend(ctx context.Context, cfg *Config, args []string) {
	if len(args) < 3 {
		logger.Fatal(ctx, "Wrong argument count: create_send [Wallet File] [To Address] [Amount] [Payment ID]")
	}

	cur, err := currency.NewCurrency(cfg.Network)
	if err != nil {
		fmt.Printf("Invalid network : %s : %s\n", cfg.Network, err)
		return
	}

	wallet, err := readWalletFile(args[0])
	if err != nil {
		fmt.Printf("Failed to read wallet file : %s : %s\n", args[0], err)
		return
	}
	if len(wallet.Records) == 0 {
		fmt.Printf("Wallet file has no spend keys : %s\n", args[0])
		return
	}

	toAddress, err := cur.ParseAccountAddressString(args[1])
	if err != nil {
		fmt.Printf("Invalid address : %s : %s\n", args[1], err)
		return
	}

	amount, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		fmt.Printf("Invalid amount : %s : %s\n", args[2], err)
		return
	}

	node := walletnode.NewNode(&cfg.Node)
	status, err := node.GetStatus(ctx, nil)
	if err != nil {
		fmt.Printf("Failed to get node status : %s\n", err)
		return
	}

	feePerByte := cfg.FeePerByte
	if feePerByte == 0 {
		feePerByte = status.RecommendedFeePerByte
	}
	confirmedHeight := uint32(0)
	if status.TopBlockHeight+1 > cfg.ConfirmedDepth {
		confirmedHeight = status.TopBlockHeight + 1 - cfg.ConfirmedDepth
	}

	selector := txbuilder.NewUnspentSelector(cur, wallet.Unspents)
	selectStatus, change := selector.SelectOptimalOutputs(ctx, status.TopBlockHeight,
		status.TopBlockTimestamp, confirmedHeight,
		int(status.NextBlockEffectiveMedianSize), cfg.Anonymity, amount, 1, feePerByte,
		cfg.OptimizationLevel)
	if selectStatus != txbuilder.StatusOK {
		fmt.Printf("Selection failed : %s\n", selectStatus)
		return
	}

	records := make(map[varcoin.PublicKey]walletstore.WalletRecord)
	for _, record := range wallet.Records {
		records[record.SpendPublicKey] = record
	}

	viewPublicKey, err := varcoin.SecretKeyToPublicKey(wallet.ViewSecretKey)
	if err != nil {
		fmt.Printf("Invalid view secret key : %s\n", err)
		return
	}
	changeAddress := varcoin.Address{
		SpendPublicKey: wallet.Records[0].SpendPublicKey,
		ViewPublicKey:  viewPublicKey,
	}

	builder := txbuilder.NewTxBuilder(cur, 0)
	if len(args) >= 4 {
		paymentID, err := varcoin.NewHash32FromStr(args[3])
		if err != nil {
			fmt.Printf("Invalid payment id : %s : %s\n", args[3], err)
			return
		}
		builder.SetPaymentID(*paymentID)
	}

	builder.AddOutput(amount, toAddress)
	for _, piece := range txbuilder.DecomposeAmount(change) {
		builder.AddOutput(piece, changeAddress)
	}

	raResponse, err := node.GetRandomOutputs(ctx, selector.RaAmounts(), 2*cfg.Anonymity,
		int64(confirmedHeight))
	if err != nil {
		fmt.Printf("Failed to get random outputs : %s\n", err)
		return
	}

	if err := selector.AddMixedInputs(ctx, wallet.ViewSecretKey, records, builder,
		cfg.Anonymity, raResponse); err != nil {
		fmt.Printf("Failed to add mixed inputs : %s\n", err)
		return
	}

	seed := walletstore.DeriveTxDerivationSeed(wallet.ViewSecretKey,
		wallet.Records[0].SpendSecretKey)
	tx, err := builder.Sign(seed)
	if err != nil {
		fmt.Printf("Failed to sign transaction : %s\n", err)
		return
	}

	buf := &bytes.Buffer{}
	if err := tx.Serialize(buf); err != nil {
		fmt.Printf("Failed to serialize tx : %s\n", err)
		return
	}

	hash, err := tx.TxHash()
	if err != nil {
		fmt.Printf("Failed to hash tx : %s\n", err)
		return
	}

	fmt.Printf("Tx : %s (fee %d, change %d)\n", hash, builder.Fee(), change)
	fmt.Printf("Tx Hex : %s\n", hex.EncodeToString(buf.Bytes()))

	if cfg.Broadcast {
		result, err := node.SendTransaction(ctx, buf.Bytes())
		if err != nil {
			fmt.Printf("Failed to broadcast tx : %s\n", err)
			return
		}
		fmt.Printf("Send result : %s\n", result.SendResult)
	}
}

func readWalletFile(path string) (*WalletFile, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	wallet := &WalletFile{}
	if err := json.Unmarshal(b, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
