package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/provar-zk/provar/receipt"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [receipt]",
	Short: "checks the integrity of an encoded receipt",
	Args:  cobra.ExactArgs(1),
	RunE:  cmdVerify,
}

var fAcceptFake bool

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVar(&fAcceptFake, "accept-fake", false, "accept non-cryptographic dev-mode receipts")
}

func cmdVerify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var r receipt.Receipt
	if err := r.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode receipt: %w", err)
	}

	ctx := receipt.DefaultVerifierContext()
	if fAcceptFake {
		ctx = ctx.WithFakeReceipts()
	}
	start := time.Now()
	if err := r.VerifyIntegrity(ctx); err != nil {
		return fmt.Errorf("receipt is invalid: %w", err)
	}
	claim, err := r.Claim()
	if err != nil {
		return err
	}
	fmt.Printf("%-24s %s\n", "receipt is valid", time.Since(start))
	fmt.Printf("%-24s %s\n", "claim digest", claim.Digest())
	fmt.Printf("%-24s %s\n", "exit", claim.ExitCode.Kind)
	fmt.Printf("%-24s %d bytes\n", "journal", len(r.Journal))
	return nil
}
