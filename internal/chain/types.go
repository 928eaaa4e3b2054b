package chain

import (
	"math/big"
	"time"
)

// Block is a chain block with its transactions, reduced to the fields the
// watcher diffs against.
type Block struct {
	Number       uint64
	Hash         string
	Timestamp    uint64
	Transactions []Transaction
}

// Transaction is one native-token transfer or contract call within a block.
// To is empty for contract creations.
type Transaction struct {
	Hash        string
	From        string
	To          string
	Value       *big.Int
	BlockNumber uint64
}

// Touches reports whether the transaction involves the given address as
// sender or recipient. The address must already be checksum-normalized.
func (t Transaction) Touches(address string) bool {
	return t.From == address || t.To == address
}

// Price is one FTSO price observation.
type Price struct {
	Symbol    string
	Value     *big.Int
	Decimals  int32
	Timestamp time.Time
}
