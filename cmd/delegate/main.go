// Command delegate manages FTSO vote-power delegation and reward claims for
// one account: show the current state, delegate to a provider, undelegate
// everything, or claim pending reward epochs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/flarewatch/flarewatch/internal/chain"
	"github.com/flarewatch/flarewatch/internal/flarekit"
)

func main() {
	network := flag.String("network", "flare", "network to connect to (flare, songbird, coston, coston2)")
	rpcURL := flag.String("rpc", "", "JSON-RPC endpoint URL (overrides the network default)")
	action := flag.String("action", "status", "status, delegate, undelegate or claim")
	address := flag.String("address", "", "account to inspect (status only; other actions use the key's account)")
	provider := flag.String("provider", "", "FTSO provider address to delegate to")
	bips := flag.Uint("bips", 0, "delegation share in basis points (10000 = 100%)")
	percent := flag.Float64("percent", 0, "delegation share in percent, alternative to -bips")
	recipient := flag.String("recipient", "", "reward recipient (claim only; defaults to the signing account)")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(*logLevel)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	net, err := chain.ParseNetwork(*network)
	if err != nil {
		fatal(err)
	}

	client, err := chain.Dial(ctx, net, *rpcURL, logger)
	if err != nil {
		fatal(err)
	}
	defer client.Close()

	switch *action {
	case "status":
		if *address == "" {
			fatal(fmt.Errorf("-address is required for status"))
		}
		err = printStatus(ctx, client, *address)
	case "delegate":
		err = runDelegate(ctx, client, *provider, *bips, *percent)
	case "undelegate":
		err = runUndelegate(ctx, client)
	case "claim":
		err = runClaim(ctx, client, *recipient)
	default:
		err = fmt.Errorf("unknown action %q", *action)
	}
	if err != nil {
		fatal(err)
	}
}

func printStatus(ctx context.Context, client *chain.Client, address string) error {
	balance, err := client.Balance(ctx, address)
	if err != nil {
		return err
	}
	votePower, err := client.VotePowerOf(ctx, address)
	if err != nil {
		return err
	}
	delegations, err := client.DelegatesOf(ctx, address)
	if err != nil {
		return err
	}
	epochs, err := client.ClaimableRewardEpochs(ctx, address)
	if err != nil {
		return err
	}

	fmt.Printf("account        %s\n", address)
	fmt.Printf("balance        %s\n", flarekit.FormatEther(balance))
	fmt.Printf("vote power     %s\n", flarekit.FormatEther(votePower))

	if len(delegations) == 0 {
		fmt.Println("delegations    none")
	} else {
		var total uint32
		for _, d := range delegations {
			total += d.Bips
			fmt.Printf("delegation     %s  %d bips (%.2f%%)\n",
				d.Provider, d.Bips, flarekit.BipsToPercentage(d.Bips))
		}
		fmt.Printf("delegated      %d bips (%.2f%%)\n", total, flarekit.BipsToPercentage(total))
	}

	if len(epochs) == 0 {
		fmt.Println("claimable      none")
		return nil
	}

	total := new(big.Int)
	for _, epoch := range epochs {
		amount, err := client.ClaimableAmount(ctx, address, epoch)
		if err != nil {
			return err
		}
		total.Add(total, amount)
		fmt.Printf("claimable      epoch %d  %s\n", epoch, flarekit.FormatEther(amount))
	}
	fmt.Printf("claimable sum  %s\n", flarekit.FormatEther(total))
	return nil
}

func runDelegate(ctx context.Context, client *chain.Client, provider string, bips uint, percent float64) error {
	if provider == "" {
		return fmt.Errorf("-provider is required for delegate")
	}
	share := uint32(bips)
	if share == 0 && percent > 0 {
		share = flarekit.PercentageToBips(percent)
	}
	if share == 0 {
		return fmt.Errorf("give the delegation share with -bips or -percent")
	}

	writer, err := newWriter(client)
	if err != nil {
		return err
	}

	receipt, err := writer.Delegate(ctx, provider, share)
	if err != nil {
		return err
	}
	fmt.Printf("delegated %d bips (%.2f%%) to %s in tx %s (block %d)\n",
		share, flarekit.BipsToPercentage(share), provider,
		receipt.TxHash.Hex(), receipt.BlockNumber)
	return nil
}

func runUndelegate(ctx context.Context, client *chain.Client) error {
	writer, err := newWriter(client)
	if err != nil {
		return err
	}
	receipt, err := writer.UndelegateAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("undelegated all in tx %s (block %d)\n", receipt.TxHash.Hex(), receipt.BlockNumber)
	return nil
}

func runClaim(ctx context.Context, client *chain.Client, recipient string) error {
	writer, err := newWriter(client)
	if err != nil {
		return err
	}

	epochs, err := client.ClaimableRewardEpochs(ctx, writer.From().Hex())
	if err != nil {
		return err
	}
	if len(epochs) == 0 {
		return fmt.Errorf("no claimable reward epochs")
	}

	receipt, err := writer.ClaimRewards(ctx, recipient, epochs)
	if err != nil {
		return err
	}
	fmt.Printf("claimed %d epochs in tx %s (block %d)\n",
		len(epochs), receipt.TxHash.Hex(), receipt.BlockNumber)
	return nil
}

// newWriter reads the signing key from the environment so it never shows up
// in shell history or process listings.
func newWriter(client *chain.Client) (*chain.Writer, error) {
	key := os.Getenv("FLARE_PRIVATE_KEY")
	if key == "" {
		return nil, fmt.Errorf("set FLARE_PRIVATE_KEY to sign transactions")
	}
	return chain.NewWriter(client, key)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
