// Command txgen builds and signs a transaction from CLI flags, printing
// its canonical wire bytes (hex) and canonical JSON mirror.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/tx"
	_ "qbrchain.dev/txengine/txtype" // registers the built-in handlers via init()
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var (
		typ, subtype  uint8
		amount, fee   int64
		recipient     uint64
		deadline      int16
		secretPhrase  string
		ecBlockHeight int32
		ecBlockID     uint64
		correctFees   bool
		currentHeight int32
	)

	root := &cobra.Command{
		Use:   "txgen",
		Short: "Build and sign a qbr transaction from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			reqID := uuid.New()
			logger := log.With().Str("request_id", reqID.String()).Logger()

			if secretPhrase == "" {
				return fmt.Errorf("--secret is required")
			}
			provider := crypto.Std{}
			pub := provider.PublicKey([]byte(secretPhrase))

			b := tx.NewBuilder(typ, subtype, amount, fee, pub, provider).
				Recipient(recipient).
				Deadline(deadline).
				ECBlock(ecBlockHeight, ecBlockID).
				CorrectInvalidFees(correctFees).
				CurrentHeight(currentHeight)

			t, err := b.Build([]byte(secretPhrase))
			if err != nil {
				logger.Debug().Err(err).Msg("build failed")
				return err
			}

			wireBytes := t.Bytes()
			jsonBytes, err := json.MarshalIndent(t.JSON(), "", "  ")
			if err != nil {
				return err
			}

			fmt.Println(hex.EncodeToString(wireBytes))
			fmt.Println(string(jsonBytes))
			return nil
		},
	}

	root.Flags().Uint8Var(&typ, "type", 0, "transaction type")
	root.Flags().Uint8Var(&subtype, "subtype", 0, "transaction subtype")
	root.Flags().Int64Var(&amount, "amount", 0, "amountNQT")
	root.Flags().Int64Var(&fee, "fee", 0, "feeNQT (0 to let the builder compute the floor)")
	root.Flags().Uint64Var(&recipient, "recipient", 0, "recipientId")
	root.Flags().Int16Var(&deadline, "deadline", 1440, "deadline in minutes")
	root.Flags().StringVar(&secretPhrase, "secret", "", "signing secret phrase (required)")
	root.Flags().Int32Var(&ecBlockHeight, "ec-height", 0, "economic-cluster block height")
	root.Flags().Uint64Var(&ecBlockID, "ec-id", 0, "economic-cluster block id")
	root.Flags().BoolVar(&correctFees, "correct-invalid-fees", false, "backfill an under-priced fee to the current floor")
	root.Flags().Int32Var(&currentHeight, "height", 0, "current chain height, for fee-schedule resolution")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("txgen failed")
		os.Exit(1)
	}
}
