package wrapper

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	// ErrUnexpectedResponse means a receipt lacked the expected event, or a
	// call returned data of the wrong shape.
	ErrUnexpectedResponse = errors.New("unexpected response")
	// ErrInvalidInput is returned before any RPC call is made.
	ErrInvalidInput = errors.New("invalid input")
)

// Operation names, also used as metric and log labels.
const (
	OpDepositERC20   = "deposit_erc20"
	OpWithdrawERC20  = "withdraw_erc20"
	OpDepositERC721  = "deposit_erc721"
	OpWithdrawERC721 = "withdraw_erc721"
	OpViewURI        = "view_uri"
)

// Stage is a step of a flow.
type Stage int

const (
	StageIdle Stage = iota
	StageMinting
	StageReadingURI
	StageApproving
	StageDepositing
	StageWithdrawing
	StageReading
	StageConfirmed
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:        "idle",
	StageMinting:     "minting",
	StageReadingURI:  "reading-uri",
	StageApproving:   "approving",
	StageDepositing:  "depositing",
	StageWithdrawing: "withdrawing",
	StageReading:     "reading",
	StageConfirmed:   "confirmed",
	StageFailed:      "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Terminal reports whether no further transitions follow s.
func (s Stage) Terminal() bool {
	return s == StageConfirmed || s == StageFailed
}

// Progress is one transition of a flow.
type Progress struct {
	FlowID    string
	Operation string
	Stage     Stage
	// TxHash is set once the stage's transaction has been accepted.
	TxHash common.Hash
	// WrappedID is set on the Confirmed transition of a deposit.
	WrappedID *big.Int
	Warning   string
	Err       error
}

// Observer receives flow transitions. It is called on the flow's goroutine
// and must not block for long.
type Observer func(Progress)

// StepError records the stage at which a flow failed.
type StepError struct {
	Stage Stage
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or StageIdle if err did not
// come from a flow step.
func FailedStage(err error) Stage {
	var se *StepError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StageIdle
}
