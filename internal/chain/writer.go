package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// Writer submits signed transactions against the protocol contracts. It
// shares the read client's contract resolution and waits for each receipt
// before returning.
type Writer struct {
	client *Client
	opts   *bind.TransactOpts
	from   common.Address
}

// NewWriter derives the signing account from a hex-encoded private key.
func NewWriter(client *Client, privateKeyHex string) (*Writer, error) {
	key, err := crypto.HexToECDSA(stripHexPrefix(privateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, client.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}

	return &Writer{
		client: client,
		opts:   opts,
		from:   crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// From returns the signing address.
func (w *Writer) From() common.Address {
	return w.from
}

// Delegate sets the delegation to provider at the given bips, after checking
// the 10000-bips total against the account's current on-chain entries. The
// entry being replaced is excluded from the sum.
func (w *Writer) Delegate(ctx context.Context, provider string, bips uint32) (*types.Receipt, error) {
	existing, err := w.client.DelegatesOf(ctx, w.from.Hex())
	if err != nil {
		return nil, err
	}
	if err := flarekit.ValidateDelegation(existing, provider, bips); err != nil {
		return nil, err
	}

	return w.transact(ctx, nameWNat, "delegate",
		common.HexToAddress(provider), new(big.Int).SetUint64(uint64(bips)))
}

// UndelegateAll removes every delegation of the signing account.
func (w *Writer) UndelegateAll(ctx context.Context) (*types.Receipt, error) {
	return w.transact(ctx, nameWNat, "undelegateAll")
}

// ClaimRewards claims the given reward epochs to recipient. An empty
// recipient claims to the signing account itself.
func (w *Writer) ClaimRewards(ctx context.Context, recipient string, epochs []uint64) (*types.Receipt, error) {
	if len(epochs) == 0 {
		return nil, fmt.Errorf("no reward epochs to claim")
	}

	to := w.from
	if recipient != "" {
		to = common.HexToAddress(recipient)
	}

	args := make([]*big.Int, len(epochs))
	for i, e := range epochs {
		args[i] = new(big.Int).SetUint64(e)
	}

	return w.transact(ctx, nameFtsoRewardManager, "claimReward", to, args)
}

func (w *Writer) transact(ctx context.Context, contractName, method string, args ...any) (*types.Receipt, error) {
	bound, err := w.client.contract(ctx, contractName)
	if err != nil {
		return nil, err
	}

	opts := *w.opts
	opts.Context = ctx

	tx, err := bound.Transact(&opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("send %s.%s: %w", contractName, method, err)
	}

	w.client.logger.Info("transaction sent",
		"method", method,
		"tx_hash", tx.Hash().Hex(),
	)

	receipt, err := bind.WaitMined(ctx, w.client.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
