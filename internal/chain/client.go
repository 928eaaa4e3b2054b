package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/flarewatch/flarewatch/internal/flarekit"
)

// Client reads Flare protocol state over JSON-RPC. Protocol contracts are
// resolved once through the on-chain FlareContractRegistry and cached.
type Client struct {
	eth     *ethclient.Client
	network Network
	chainID *big.Int
	signer  types.Signer
	logger  *slog.Logger

	abis     map[string]abi.ABI
	registry *bind.BoundContract

	mu        sync.Mutex
	contracts map[string]*bind.BoundContract
}

// Dial connects to the network's RPC endpoint (the public one when rpcURL is
// empty) and verifies the chain id before returning.
func Dial(ctx context.Context, network Network, rpcURL string, logger *slog.Logger) (*Client, error) {
	if rpcURL == "" {
		rpcURL = network.DefaultRPC()
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("get chain ID: %w", err)
	}
	if chainID.Uint64() != network.ChainID() {
		eth.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d for %s, got %d",
			network.ChainID(), network, chainID.Uint64())
	}

	abis, err := parseABIs()
	if err != nil {
		eth.Close()
		return nil, err
	}

	c := &Client{
		eth:       eth,
		network:   network,
		chainID:   chainID,
		signer:    types.LatestSignerForChainID(chainID),
		logger:    logger.With("component", "chain", "network", string(network)),
		abis:      abis,
		contracts: make(map[string]*bind.BoundContract),
	}
	c.registry = bind.NewBoundContract(
		common.HexToAddress(registryAddress), abis["registry"], eth, eth, eth)

	c.logger.Info("connected to RPC", "rpc_url", rpcURL, "chain_id", chainID)
	return c, nil
}

func parseABIs() (map[string]abi.ABI, error) {
	raw := map[string]string{
		"registry":            registryABI,
		nameFtsoRegistry:      ftsoRegistryABI,
		nameFtsoManager:       ftsoManagerABI,
		nameFtsoRewardManager: ftsoRewardManagerABI,
		nameWNat:              wnatABI,
	}

	parsed := make(map[string]abi.ABI, len(raw))
	for name, json := range raw {
		a, err := abi.JSON(strings.NewReader(json))
		if err != nil {
			return nil, fmt.Errorf("parse %s ABI: %w", name, err)
		}
		parsed[name] = a
	}
	return parsed, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Network returns the network this client is connected to.
func (c *Client) Network() Network {
	return c.network
}

// contract resolves a protocol contract by registry name, binding and caching
// it on first use.
func (c *Client) contract(ctx context.Context, name string) (*bind.BoundContract, error) {
	c.mu.Lock()
	if bound, ok := c.contracts[name]; ok {
		c.mu.Unlock()
		return bound, nil
	}
	c.mu.Unlock()

	var out []any
	err := c.registry.Call(&bind.CallOpts{Context: ctx}, &out, "getContractAddressByName", name)
	if err != nil {
		return nil, fmt.Errorf("resolve contract %s: %w", name, err)
	}
	addr := out[0].(common.Address)
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("contract %s not registered on %s", name, c.network)
	}

	bound := bind.NewBoundContract(addr, c.abis[name], c.eth, c.eth, c.eth)

	c.mu.Lock()
	c.contracts[name] = bound
	c.mu.Unlock()

	c.logger.Debug("resolved contract", "name", name, "address", addr.Hex())
	return bound, nil
}

func (c *Client) call(ctx context.Context, contractName, method string, args ...any) ([]any, error) {
	bound, err := c.contract(ctx, contractName)
	if err != nil {
		return nil, err
	}
	var out []any
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", contractName, method, err)
	}
	return out, nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("get block number: %w", err)
	}
	return n, nil
}

// BlockWithTransactions fetches one block including its transactions, with
// sender addresses recovered from the signatures.
func (c *Client) BlockWithTransactions(ctx context.Context, number uint64) (*Block, error) {
	blk, err := c.eth.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", number, err)
	}

	out := &Block{
		Number:    blk.NumberU64(),
		Hash:      blk.Hash().Hex(),
		Timestamp: blk.Time(),
	}
	for _, tx := range blk.Transactions() {
		from, err := types.Sender(c.signer, tx)
		if err != nil {
			return nil, fmt.Errorf("recover sender of %s: %w", tx.Hash().Hex(), err)
		}
		t := Transaction{
			Hash:        tx.Hash().Hex(),
			From:        from.Hex(),
			Value:       tx.Value(),
			BlockNumber: blk.NumberU64(),
		}
		if to := tx.To(); to != nil {
			t.To = to.Hex()
		}
		out.Transactions = append(out.Transactions, t)
	}
	return out, nil
}

// Balance returns the native-token balance of an address in wei.
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("get balance of %s: %w", address, err)
	}
	return bal, nil
}

// CurrentPrice returns the latest FTSO price for one symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (Price, error) {
	out, err := c.call(ctx, nameFtsoRegistry, "getCurrentPriceWithDecimals", symbol)
	if err != nil {
		return Price{}, err
	}
	return Price{
		Symbol:    symbol,
		Value:     out[0].(*big.Int),
		Decimals:  int32(out[2].(*big.Int).Int64()),
		Timestamp: time.Unix(out[1].(*big.Int).Int64(), 0).UTC(),
	}, nil
}

// CurrentPrices returns the latest FTSO prices for the given symbols, or for
// every supported symbol when symbols is empty. Reads are sequential; a
// single failing symbol fails the whole read.
func (c *Client) CurrentPrices(ctx context.Context, symbols []string) ([]Price, error) {
	if len(symbols) == 0 {
		var err error
		symbols, err = c.SupportedSymbols(ctx)
		if err != nil {
			return nil, err
		}
	}

	prices := make([]Price, 0, len(symbols))
	for _, sym := range symbols {
		p, err := c.CurrentPrice(ctx, sym)
		if err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// SupportedSymbols lists the symbols the FTSO registry currently serves.
func (c *Client) SupportedSymbols(ctx context.Context) ([]string, error) {
	out, err := c.call(ctx, nameFtsoRegistry, "getSupportedSymbols")
	if err != nil {
		return nil, err
	}
	return out[0].([]string), nil
}

// CurrentPriceEpoch returns the current FTSO price epoch id.
func (c *Client) CurrentPriceEpoch(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, nameFtsoManager, "getCurrentPriceEpochId")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Uint64(), nil
}

// CurrentRewardEpoch returns the current reward epoch id.
func (c *Client) CurrentRewardEpoch(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, nameFtsoManager, "getCurrentRewardEpoch")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Uint64(), nil
}

// PriceEpochConfig reads the FTSO price epoch timing configuration.
func (c *Client) PriceEpochConfig(ctx context.Context) (flarekit.PriceEpochConfig, error) {
	out, err := c.call(ctx, nameFtsoManager, "getPriceEpochConfiguration")
	if err != nil {
		return flarekit.PriceEpochConfig{}, err
	}
	return flarekit.PriceEpochConfig{
		FirstEpochStart: time.Unix(out[0].(*big.Int).Int64(), 0).UTC(),
		EpochDuration:   time.Duration(out[1].(*big.Int).Int64()) * time.Second,
		RevealDuration:  time.Duration(out[2].(*big.Int).Int64()) * time.Second,
	}, nil
}

// RewardEpochStart estimates when the given reward epoch started, by
// extrapolating from the epoch-zero start at the configured duration. The
// estimate drifts on networks whose epoch duration changed historically.
func (c *Client) RewardEpochStart(ctx context.Context, epoch uint64) (time.Time, error) {
	startOut, err := c.call(ctx, nameFtsoManager, "rewardEpochsStartTs")
	if err != nil {
		return time.Time{}, err
	}
	durOut, err := c.call(ctx, nameFtsoManager, "rewardEpochDurationSeconds")
	if err != nil {
		return time.Time{}, err
	}

	epochZeroStart := time.Unix(startOut[0].(*big.Int).Int64(), 0).UTC()
	duration := time.Duration(durOut[0].(*big.Int).Int64()) * time.Second
	return flarekit.RewardEpochStartTime(epochZeroStart, 0, epoch, duration), nil
}

// ClaimableRewardEpochs lists the reward epochs with unclaimed rewards for an
// address.
func (c *Client) ClaimableRewardEpochs(ctx context.Context, address string) ([]uint64, error) {
	out, err := c.call(ctx, nameFtsoRewardManager, "getEpochsWithUnclaimedRewards",
		common.HexToAddress(address))
	if err != nil {
		return nil, err
	}

	raw := out[0].([]*big.Int)
	epochs := make([]uint64, len(raw))
	for i, e := range raw {
		epochs[i] = e.Uint64()
	}
	return epochs, nil
}

// ClaimableAmount sums the unclaimed reward amounts of an address for one
// reward epoch.
func (c *Client) ClaimableAmount(ctx context.Context, address string, epoch uint64) (*big.Int, error) {
	out, err := c.call(ctx, nameFtsoRewardManager, "getStateOfRewards",
		common.HexToAddress(address), new(big.Int).SetUint64(epoch))
	if err != nil {
		return nil, err
	}

	amounts := out[1].([]*big.Int)
	claimed := out[2].([]bool)

	total := new(big.Int)
	for i, amount := range amounts {
		if i < len(claimed) && claimed[i] {
			continue
		}
		total.Add(total, amount)
	}
	return total, nil
}

// DelegatesOf returns an address's current delegations in the order the chain
// reports them. Order is preserved because the watcher diffs the serialized
// list.
func (c *Client) DelegatesOf(ctx context.Context, address string) ([]flarekit.Delegation, error) {
	out, err := c.call(ctx, nameWNat, "delegatesOf", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}

	providers := out[0].([]common.Address)
	bips := out[1].([]*big.Int)

	dels := make([]flarekit.Delegation, 0, len(providers))
	for i, p := range providers {
		dels = append(dels, flarekit.Delegation{
			Provider: p.Hex(),
			Bips:     uint32(bips[i].Uint64()),
		})
	}
	return dels, nil
}

// VotePowerOf returns the current vote power of an address.
func (c *Client) VotePowerOf(ctx context.Context, address string) (*big.Int, error) {
	out, err := c.call(ctx, nameWNat, "votePowerOf", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}
