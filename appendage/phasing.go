package appendage

import (
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// Voting models for a Phasing poll.
const (
	VotingModelNone    = 0
	VotingModelAccount = 1
	VotingModelBalance = 2
)

const maxWhitelistSize = 32

// Phasing marks a transaction's attachment effects as conditionally
// executed: the fee is charged at inclusion but the attachment's effects
// are deferred until a separate poll resolves.
type Phasing struct {
	version      uint8
	FinishHeight int32
	VotingModel  uint8
	Quorum       int64
	MinBalance   int64
	Whitelist    []uint64
}

// NewPhasing builds a Phasing appendage.
func NewPhasing(finishHeight int32, votingModel uint8, quorum, minBalance int64, whitelist []uint64) *Phasing {
	return &Phasing{
		version:      1,
		FinishHeight: finishHeight,
		VotingModel:  votingModel,
		Quorum:       quorum,
		MinBalance:   minBalance,
		Whitelist:    whitelist,
	}
}

func (p *Phasing) Version() uint8 { return p.version }

func (p *Phasing) Size() int {
	return 1 + 4 + 1 + 8 + 8 + 1 + 8*len(p.Whitelist)
}

func (p *Phasing) FullSize() int { return p.Size() }

func (p *Phasing) Emit(dst []byte) []byte {
	dst = append(dst, p.version)
	dst = wire.AppendI32LE(dst, p.FinishHeight)
	dst = append(dst, p.VotingModel)
	dst = wire.AppendI64LE(dst, p.Quorum)
	dst = wire.AppendI64LE(dst, p.MinBalance)
	dst = append(dst, uint8(len(p.Whitelist)))
	for _, id := range p.Whitelist {
		dst = wire.AppendU64LE(dst, id)
	}
	return dst
}

// ParsePhasing reads a Phasing appendage from cur.
func ParsePhasing(cur *wire.Cursor) (*Phasing, error) {
	v, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	finish, err := cur.ReadI32LE()
	if err != nil {
		return nil, err
	}
	model, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	quorum, err := cur.ReadI64LE()
	if err != nil {
		return nil, err
	}
	minBalance, err := cur.ReadI64LE()
	if err != nil {
		return nil, err
	}
	n, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	if int(n) > maxWhitelistSize {
		return nil, errAppendage("phasing: whitelist too large")
	}
	whitelist := make([]uint64, 0, n)
	for i := 0; i < int(n); i++ {
		id, err := cur.ReadU64LE()
		if err != nil {
			return nil, err
		}
		whitelist = append(whitelist, id)
	}
	return &Phasing{
		version:      v,
		FinishHeight: finish,
		VotingModel:  model,
		Quorum:       quorum,
		MinBalance:   minBalance,
		Whitelist:    whitelist,
	}, nil
}

func (p *Phasing) JSON() map[string]any {
	return map[string]any{
		"phasing": map[string]any{
			"finishHeight": p.FinishHeight,
			"votingModel":  p.VotingModel,
			"quorum":       p.Quorum,
			"minBalance":   p.MinBalance,
			"whitelist":    p.Whitelist,
		},
	}
}

func (p *Phasing) Validate(v txctx.View) error {
	if len(p.Whitelist) > maxWhitelistSize {
		return errAppendage("phasing: whitelist too large")
	}
	if p.FinishHeight <= v.Height() && v.Height() >= 0 {
		return errAppendage("phasing: finish height already passed")
	}
	switch p.VotingModel {
	case VotingModelNone, VotingModelAccount, VotingModelBalance:
	default:
		return errAppendage("phasing: unknown voting model")
	}
	return nil
}

// ValidateAtFinish is only reached when the poll has resolved; the
// finish-height-in-future check no longer applies.
func (p *Phasing) ValidateAtFinish(txctx.View) error {
	switch p.VotingModel {
	case VotingModelNone, VotingModelAccount, VotingModelBalance:
		return nil
	default:
		return errAppendage("phasing: unknown voting model")
	}
}

// Apply is a no-op: a phased transaction's attachment effects are applied
// by the lifecycle hooks directly when the poll finishes, not by this
// appendage.
func (p *Phasing) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (p *Phasing) BaselineFee() int64       { return OneQBR / 5 }
func (p *Phasing) NextFee() int64           { return OneQBR / 5 }
func (p *Phasing) BaselineFeeHeight() int32 { return 0 }
func (p *Phasing) NextFeeHeight() int32     { return 0 }
