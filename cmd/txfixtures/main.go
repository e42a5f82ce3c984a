// Command txfixtures generates worked wire-format examples as on-disk
// fixture files, for conformance testing by other implementations: a
// header-only signed payment, a trailing-byte reject vector, a
// flag/appendage alignment case, and a fee-floor backfill case.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/tx"
	"qbrchain.dev/txengine/txtype"
)

// testSecretPhrase is the fixed secret every generated fixture signs with.
const testSecretPhrase = "qbr conformance fixture secret"

type fixture struct {
	Name string `json:"name"`
	Wire string `json:"wire"`
	JSON any    `json:"json"`
}

func main() {
	var outDir string
	root := &cobra.Command{
		Use:   "txfixtures",
		Short: "Generate deterministic transaction wire/JSON fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				return fmt.Errorf("--out is required")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			fixtures, err := generate()
			if err != nil {
				return err
			}
			for _, f := range fixtures {
				path := filepath.Join(outDir, f.Name+".json")
				b, err := json.MarshalIndent(f, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, b, 0o644); err != nil {
					return err
				}
				log.Info().Str("scenario", f.Name).Str("path", path).Msg("wrote fixture")
			}
			return nil
		},
	}
	root.Flags().StringVar(&outDir, "out", "", "output directory for generated fixtures (required)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("txfixtures failed")
		os.Exit(1)
	}
}

func generate() ([]fixture, error) {
	provider := crypto.Std{}
	pub := provider.PublicKey([]byte(testSecretPhrase))

	var out []fixture

	// A header-only signed v1 payment.
	sendMoney, err := tx.NewBuilder(txtype.TypePayment, txtype.SubtypePaymentOrdinary, 500_000_000, 100_000_000, pub, provider).
		Timestamp(100).
		Deadline(1440).
		Recipient(0x1122334455667788).
		ECBlock(10, 0xAAAAAAAAAAAAAAAA).
		Build([]byte(testSecretPhrase))
	if err != nil {
		return nil, fmt.Errorf("send money: %w", err)
	}
	out = append(out, toFixture("sendmoney_v1", sendMoney))

	// The same bytes with a trailing byte appended must fail to decode.
	// Recorded wire-only so a conformance suite can feed it straight into
	// Decode and assert the failure.
	rejectWire := append(append([]byte(nil), sendMoney.Bytes()...), 0x00)
	out = append(out, fixture{Name: "trailing_byte_rejected", Wire: hex.EncodeToString(rejectWire), JSON: nil})

	// The same payment plus a plain message appendage; flags == 0x01.
	withMsg, err := tx.NewBuilder(txtype.TypePayment, txtype.SubtypePaymentOrdinary, 500_000_000, 100_000_000, pub, provider).
		Timestamp(100).
		Deadline(1440).
		Recipient(0x1122334455667788).
		ECBlock(10, 0xAAAAAAAAAAAAAAAA).
		Appendages(&appendage.Bag{Message: appendage.NewPlainMessage([]byte("hi"), true)}).
		Build([]byte(testSecretPhrase))
	if err != nil {
		return nil, fmt.Errorf("with message: %w", err)
	}
	out = append(out, toFixture("flag_alignment", withMsg))

	// Fee-floor backfill: feeNQT=0 with correctInvalidFees on.
	backfilled, err := tx.NewBuilder(txtype.TypePayment, txtype.SubtypePaymentOrdinary, 500_000_000, 0, pub, provider).
		Timestamp(100).
		Deadline(1440).
		Recipient(0x1122334455667788).
		ECBlock(10, 0xAAAAAAAAAAAAAAAA).
		CorrectInvalidFees(true).
		Build([]byte(testSecretPhrase))
	if err != nil {
		return nil, fmt.Errorf("fee floor: %w", err)
	}
	out = append(out, toFixture("fee_floor_backfill", backfilled))

	return out, nil
}

func toFixture(name string, t *tx.Transaction) fixture {
	return fixture{Name: name, Wire: hex.EncodeToString(t.Bytes()), JSON: t.JSON()}
}
