// Package chain reads and writes Flare-family networks through go-ethereum.
// All watcher facts (blocks, balances, FTSO prices, epochs, delegations,
// vote power, claimable rewards) are fetched through the Client here.
package chain

import "fmt"

// Network identifies one of the Flare-family chains.
type Network string

const (
	Flare    Network = "flare"
	Songbird Network = "songbird"
	Coston   Network = "coston"
	Coston2  Network = "coston2"
)

// FlareContractRegistry lives at the same address on every Flare-family
// network. All other protocol contracts are resolved through it by name.
const registryAddress = "0xaD67FE66660Fb8dFE9d6b1b4240d8650e30F6019"

type networkInfo struct {
	chainID      uint64
	defaultRPC   string
	nativeSymbol string
}

var networks = map[Network]networkInfo{
	Flare:    {14, "https://flare-api.flare.network/ext/C/rpc", "FLR"},
	Songbird: {19, "https://songbird-api.flare.network/ext/C/rpc", "SGB"},
	Coston:   {16, "https://coston-api.flare.network/ext/C/rpc", "CFLR"},
	Coston2:  {114, "https://coston2-api.flare.network/ext/C/rpc", "C2FLR"},
}

// ParseNetwork validates a network name from configuration.
func ParseNetwork(name string) (Network, error) {
	n := Network(name)
	if _, ok := networks[n]; !ok {
		return "", fmt.Errorf("unknown network %q (want flare, songbird, coston or coston2)", name)
	}
	return n, nil
}

// ChainID returns the EVM chain id of the network.
func (n Network) ChainID() uint64 {
	return networks[n].chainID
}

// DefaultRPC returns the public RPC endpoint of the network.
func (n Network) DefaultRPC() string {
	return networks[n].defaultRPC
}

// NativeSymbol returns the native token ticker of the network.
func (n Network) NativeSymbol() string {
	return networks[n].nativeSymbol
}
