// Package walletnode is the JSON-RPC client the wallet core uses to talk to a varcoind
// node: block tip state, random ring candidates and transaction broadcast.
package walletnode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/xqymain/Varcoin/api"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tokenized/logger"
)

const (
	// SubSystem is used by the logger package
	SubSystem = "WalletNode"

	MethodGetStatus        = "get_status"
	MethodGetRandomOutputs = "get_random_outputs"
	MethodSendTransaction  = "send_transaction"
)

// Node is a client for one varcoind instance.
type Node struct {
	Config *Config
	client *http.Client
}

// NewNode returns a new instance of a node client.
func NewNode(config *Config) *Node {
	if config.RetryDelay == 0 { // default to 1/2 second delay
		config.RetryDelay = 500
	}
	return &Node{
		Config: config,
		client: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Millisecond,
		},
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is a structured error returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC Error %d : %s", e.Code, e.Message)
}

// call performs one JSON-RPC method call with retries.
func (n *Node) call(ctx context.Context, method string, params,
	result interface{}) error {

	ctx = logger.ContextWithLogSubSystem(ctx, SubSystem)
	defer logger.Elapsed(ctx, time.Now(), method)

	request := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	var lastErr error
	for i := 0; i <= n.Config.MaxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(n.Config.RetryDelay) * time.Millisecond)
		}

		response, err := n.post(ctx, body)
		if err != nil {
			logger.Error(ctx, "RPCCallFailed %s : %v", method, err)
			lastErr = err
			continue
		}

		if response.Error != nil {
			// Structured node errors are not transient, report them to the caller.
			return errors.Wrap(response.Error, method)
		}
		if err := json.Unmarshal(response.Result, result); err != nil {
			return errors.Wrap(err, "unmarshal result")
		}
		return nil
	}

	return errors.Wrapf(lastErr, "%s after %d retries", method, n.Config.MaxRetries)
}

func (n *Node) post(ctx context.Context, body []byte) (*rpcResponse, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Config.BaseURL,
		bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := n.client.Do(httpRequest)
	if err != nil {
		return nil, errors.Wrap(err, "http post")
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP Error : %d", httpResponse.StatusCode)
	}

	b, err := ioutil.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	response := &rpcResponse{}
	if err := json.Unmarshal(b, response); err != nil {
		return nil, errors.Wrap(err, "unmarshal response")
	}
	return response, nil
}

// GetStatus requests the node's tip state, including the recommended fee per byte and
// the effective median size the selector needs.
func (n *Node) GetStatus(ctx context.Context,
	request *api.GetStatusRequest) (*api.GetStatusResponse, error) {

	if request == nil {
		request = &api.GetStatusRequest{}
	}
	result := &api.GetStatusResponse{}
	if err := n.call(ctx, MethodGetStatus, request, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetRandomOutputs requests ring decoy candidates for each amount.
func (n *Node) GetRandomOutputs(ctx context.Context, amounts []uint64, outsCount int,
	confirmedHeightOrDepth int64) (*api.GetRandomOutputsResponse, error) {

	request := &api.GetRandomOutputsRequest{
		Amounts:                amounts,
		OutsCount:              outsCount,
		ConfirmedHeightOrDepth: confirmedHeightOrDepth,
	}
	result := &api.GetRandomOutputsResponse{}
	if err := n.call(ctx, MethodGetRandomOutputs, request, result); err != nil {
		return nil, err
	}
	if result.Outputs == nil {
		result.Outputs = make(map[uint64][]api.Output)
	}
	return result, nil
}

// SendTransaction broadcasts a serialized transaction.
func (n *Node) SendTransaction(ctx context.Context,
	binaryTransaction []byte) (*api.SendTransactionResponse, error) {

	request := &api.SendTransactionRequest{BinaryTransaction: binaryTransaction}
	result := &api.SendTransactionResponse{}
	if err := n.call(ctx, MethodSendTransaction, request, result); err != nil {
		return nil, err
	}
	return result, nil
}
