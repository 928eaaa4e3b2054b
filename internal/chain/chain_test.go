package chain

import (
	"math/big"
	"testing"
)

func TestParseNetwork(t *testing.T) {
	cases := []struct {
		name    string
		chainID uint64
		wantErr bool
	}{
		{"flare", 14, false},
		{"songbird", 19, false},
		{"coston", 16, false},
		{"coston2", 114, false},
		{"mainnet", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		n, err := ParseNetwork(c.name)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseNetwork(%q): expected error", c.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNetwork(%q): %v", c.name, err)
			continue
		}
		if n.ChainID() != c.chainID {
			t.Errorf("%s chain id = %d, want %d", c.name, n.ChainID(), c.chainID)
		}
		if n.DefaultRPC() == "" || n.NativeSymbol() == "" {
			t.Errorf("%s missing rpc or symbol", c.name)
		}
	}
}

func TestParseABIs(t *testing.T) {
	abis, err := parseABIs()
	if err != nil {
		t.Fatalf("parseABIs: %v", err)
	}

	wantMethods := map[string][]string{
		"registry":            {"getContractAddressByName"},
		nameFtsoRegistry:      {"getCurrentPriceWithDecimals", "getSupportedSymbols"},
		nameFtsoManager:       {"getCurrentPriceEpochId", "getCurrentRewardEpoch", "getPriceEpochConfiguration", "rewardEpochDurationSeconds", "rewardEpochsStartTs"},
		nameFtsoRewardManager: {"getEpochsWithUnclaimedRewards", "getStateOfRewards", "claimReward"},
		nameWNat:              {"balanceOf", "votePowerOf", "delegatesOf", "delegate", "undelegateAll"},
	}

	for contract, methods := range wantMethods {
		a, ok := abis[contract]
		if !ok {
			t.Errorf("missing ABI %s", contract)
			continue
		}
		for _, m := range methods {
			if _, ok := a.Methods[m]; !ok {
				t.Errorf("ABI %s missing method %s", contract, m)
			}
		}
	}
}

func TestTransactionTouches(t *testing.T) {
	tx := Transaction{
		From:  "0x93B9aeeD559DF0A6c31e11a2e3D9F2ab806e5a48",
		To:    "0xBA35e39D01A3f5710d1e43FC61dbb738B68641c4",
		Value: big.NewInt(1),
	}
	if !tx.Touches(tx.From) {
		t.Error("sender not matched")
	}
	if !tx.Touches(tx.To) {
		t.Error("recipient not matched")
	}
	if tx.Touches("0x0000000000000000000000000000000000000001") {
		t.Error("unrelated address matched")
	}
}
