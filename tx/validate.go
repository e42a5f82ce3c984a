package tx

import (
	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/facade"
)

// ValidationContext bundles the external facades and current chain state
// Validate consults. Every field is optional: a nil facade
// simply skips the checks that depend on it, so a transaction can be
// structurally validated in isolation (e.g. by a peer decoder) before the
// caller has chain state available.
type ValidationContext struct {
	// CurrentHeight is the chain height Validate checks the fee floor and
	// EC-block binding against.
	CurrentHeight int32

	Blockchain          facade.Blockchain
	AccountRestrictions facade.AccountRestrictions
	PhasingPoll         facade.PhasingPoll
}

// Validate runs the structural, economic, and consensus-binding checks in
// order, first failure wins. It selects atFinish mode automatically when t
// carries a Phasing appendage, is signed, and the PhasingPoll facade
// returns a poll for its id (the poll's Finished flag is not consulted);
// in that mode the fee, EC-block and account-restriction checks are
// skipped, since the fee was already charged at inclusion.
func (t *Transaction) Validate(ctx ValidationContext) error {
	err := t.validate(ctx)
	if err != nil {
		logger.Debug().Err(err).Uint8("type", t.typ).Uint8("subtype", t.subtype).Msg("validation rejected")
	}
	return err
}

func (t *Transaction) validate(ctx ValidationContext) error {
	atFinish := t.isAtFinish(ctx)

	if err := t.checkParameterSanity(); err != nil {
		return err
	}
	if t.attachment == nil {
		return notValid("NO_ATTACHMENT", "attachment is nil")
	}
	if t.handler == nil {
		return notValid("NO_HANDLER", "no handler bound to transaction")
	}
	if err := t.checkRecipientRules(); err != nil {
		return err
	}

	if t.appendages != nil {
		for _, a := range t.appendages.Ordered() {
			if atFinish {
				if err := a.ValidateAtFinish(t); err != nil {
					return wrapAppendageError(err)
				}
			} else {
				if err := a.Validate(t); err != nil {
					return wrapAppendageError(err)
				}
			}
		}
	}

	if t.FullSize() > MaxPayloadLength {
		return notValid("TOO_LARGE", "fullSize exceeds MaxPayloadLength")
	}

	if atFinish {
		return nil
	}

	if t.timestamp != 0 && t.feeNQT < t.MinimumFeeNQT(ctx.CurrentHeight) {
		return notCurrentlyValid("FEE_TOO_LOW", "feeNQT below current minimum")
	}

	if ctx.Blockchain != nil {
		if ctx.CurrentHeight < t.ecBlockHeight {
			return notCurrentlyValid("EC_BLOCK_AHEAD", "ecBlockHeight is ahead of the current chain")
		}
		if id, ok := ctx.Blockchain.BlockIDAtHeight(t.ecBlockHeight); !ok || id != t.ecBlockID {
			return notCurrentlyValid("EC_BLOCK_FORK", "generated on a fork")
		}
	}

	if ctx.AccountRestrictions != nil {
		if err := ctx.AccountRestrictions.CheckTransaction(t); err != nil {
			return notCurrentlyValid("ACCOUNT_RESTRICTED", err.Error())
		}
	}

	return nil
}

func (t *Transaction) isAtFinish(ctx ValidationContext) bool {
	if t.appendages == nil || t.appendages.Phasing == nil || !t.Signed() {
		return false
	}
	if ctx.PhasingPoll == nil {
		return false
	}
	id, err := t.ID()
	if err != nil {
		return false
	}
	_, ok := ctx.PhasingPoll.GetPoll(id)
	return ok
}

// checkParameterSanity enforces the amount/fee range and the
// genesis-sentinel fee/deadline rule. The referenced-hash length is
// guaranteed by its [32]byte type; id/fullHash access rules are enforced
// by ID/FullHash themselves.
func (t *Transaction) checkParameterSanity() error {
	if t.amountNQT < 0 || t.amountNQT > MaxBalanceQNT {
		return notValid("AMOUNT_RANGE", "amountNQT out of range")
	}
	if t.feeNQT < 0 || t.feeNQT > MaxBalanceQNT {
		return notValid("FEE_RANGE", "feeNQT out of range")
	}
	if t.timestamp == 0 {
		if t.deadline != 0 {
			return notValid("GENESIS_DEADLINE", "genesis transaction must have deadline 0")
		}
		if t.feeNQT != 0 {
			return notValid("GENESIS_FEE", "genesis transaction must have fee 0")
		}
	} else {
		if t.deadline < 1 {
			return notValid("DEADLINE_RANGE", "deadline must be >= 1")
		}
		if t.feeNQT <= 0 {
			return notValid("FEE_RANGE", "feeNQT must be > 0")
		}
	}
	return nil
}

// checkRecipientRules enforces the type's recipient capability: required
// means present, forbidden means zero recipient and zero amount.
func (t *Transaction) checkRecipientRules() error {
	if t.handler.MustHaveRecipient() && t.recipientID == 0 {
		return notValid("RECIPIENT_REQUIRED", "transaction type requires a recipient")
	}
	if !t.handler.CanHaveRecipient() && (t.recipientID != 0 || t.amountNQT != 0) {
		return notValid("RECIPIENT_FORBIDDEN", "transaction type forbids a recipient")
	}
	return nil
}

// MinimumFeeNQT computes the fee floor at height: the attachment/handler's
// own fee schedule plus every present appendage's applicable fee, plus
// ONE_QBR if a referenced transaction hash is present.
func (t *Transaction) MinimumFeeNQT(height int32) int64 {
	return computeMinimumFee(t.handler, t.appendages, t.referencedTransactionFullHash != nil, height)
}

// computeMinimumFee is the shared fee-floor computation used both by
// Builder (before a Transaction exists) and Transaction.MinimumFeeNQT.
func computeMinimumFee(handler interface {
	FeeScheduleHeight() int32
	BaselineFee() int64
	NextFee() int64
}, bag *appendage.Bag, refHashPresent bool, height int32) int64 {
	var fee int64
	if handler != nil {
		if height >= handler.FeeScheduleHeight() {
			fee += handler.NextFee()
		} else {
			fee += handler.BaselineFee()
		}
	}
	if bag != nil {
		for _, a := range bag.Ordered() {
			fee += appendage.FeeAt(a, height)
		}
	}
	if refHashPresent {
		fee += OneQBR
	}
	return fee
}

func wrapAppendageError(err error) error {
	if _, ok := err.(*ValidationError); ok {
		return err
	}
	return notValid("APPENDAGE_INVALID", err.Error())
}
