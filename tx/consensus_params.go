package tx

// Consensus parameters. These are bit-exact network constants;
// changing any of them forks the network.
const (
	// MaxPayloadLength is the maximum encoded size, in bytes, of a
	// transaction (header + attachment + appendages).
	MaxPayloadLength = 4096

	// MaxBalanceQNT is the maximum representable balance, in QNT
	// (minor units): ten billion whole QBR coins.
	MaxBalanceQNT = 10_000_000_000 * OneQBR

	// OneQBR is the number of QNT (minor units) in one whole QBR coin.
	OneQBR = 100_000_000

	// UnconfirmedPoolDepositQNT is the anti-spam deposit debited from the
	// sender's unconfirmed balance when a transaction carries a
	// referencedTransactionFullHash.
	UnconfirmedPoolDepositQNT = OneQBR

	// CreatorID is the fixed account id substituted on the wire for the
	// recipient field of a transaction type that forbids a recipient.
	// It is the account id of the genesis creator key.
	CreatorID uint64 = 0x59c7_3f18_a2b4_e6d1

	// MaxAppendages bounds the number of appendages a single transaction
	// may carry, one bit per flag word position.
	MaxAppendages = 7
)

// DefaultCorrectInvalidFeesBlock is the default activation height for the
// correctInvalidFees fee backfill. Nothing in this module reads it:
// Builder.CorrectInvalidFees switches the backfill on or off directly, and
// neither the builder nor the validator applies an activation height.
const DefaultCorrectInvalidFeesBlock = 0
