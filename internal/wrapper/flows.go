package wrapper

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DepositResult is the outcome of a confirmed deposit.
type DepositResult struct {
	FlowID    string
	WrappedID *big.Int
	TxHash    common.Hash
	Receipt   *types.Receipt
	// TokenURI is the metadata URI read from the NFT (ERC721 only).
	TokenURI string
	// MintedID is the token id the demo safeMint produced (ERC721 with
	// faucet only).
	MintedID *big.Int
	Warnings []string
}

// WithdrawResult is the outcome of a confirmed withdrawal.
type WithdrawResult struct {
	FlowID  string
	TxHash  common.Hash
	Receipt *types.Receipt
}

// DepositERC20 approves the wrapper, optionally mints demo tokens, deposits
// and returns the wrapped ERC1155 id. A failed step aborts the rest.
func (c *Client) DepositERC20(ctx context.Context, req ERC20Deposit) (*DepositResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	r := c.start(OpDepositERC20, logrus.Fields{"token": req.Token.Hex(), "amount": req.Amount.String()})
	token := c.bind(req.Token, c.abis.ERC20)

	if _, err := r.step(ctx, StageApproving, token, "approve", c.wrapper.Address(), req.Amount); err != nil {
		return nil, err
	}
	if c.faucet {
		if _, err := r.step(ctx, StageMinting, token, "mint", c.owner, req.Amount); err != nil {
			return nil, err
		}
	}

	args := []any{req.Token, req.Amount, nonNil(req.Data)}
	if c.ownerArg {
		args = append([]any{c.owner}, args...)
	}
	receipt, err := r.step(ctx, StageDepositing, c.wrapper, "depositERC20", args...)
	if err != nil {
		return nil, err
	}
	return c.finishDeposit(r, receipt, &DepositResult{})
}

// WithdrawERC20 submits a single withdrawERC20 call and waits for it.
func (c *Client) WithdrawERC20(ctx context.Context, token common.Address, amount *big.Int) (*WithdrawResult, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return nil, err
	}
	r := c.start(OpWithdrawERC20, logrus.Fields{"token": token.Hex(), "amount": amount.String()})
	return c.withdraw(ctx, r, "withdrawERC20", token, amount)
}

// DepositERC721 optionally mints a demo NFT, reads its metadata URI,
// approves the wrapper, deposits and returns the wrapped ERC1155 id.
func (c *Client) DepositERC721(ctx context.Context, req ERC721Deposit) (*DepositResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	r := c.start(OpDepositERC721, logrus.Fields{"token": req.Token.Hex(), "token_id": req.TokenID.String()})
	nft := c.bind(req.Token, c.abis.ERC721)
	res := &DepositResult{}

	if c.faucet {
		uri := req.MetadataURI
		if uri == "" {
			uri = DefaultMetadataURI
		}
		receipt, err := r.step(ctx, StageMinting, nft, "safeMint", c.owner, uri)
		if err != nil {
			return nil, err
		}
		res.MintedID = c.checkMinted(r, receipt, nft.Address(), req.TokenID)
	}

	r.enter(StageReadingURI)
	out, err := nft.Call(ctx, "tokenURI", req.TokenID)
	if err != nil {
		return nil, r.fail(StageReadingURI, err)
	}
	tokenURI, err := singleString(out)
	if err != nil {
		return nil, r.fail(StageReadingURI, fmt.Errorf("tokenURI: %w", err))
	}
	res.TokenURI = tokenURI

	if _, err := r.step(ctx, StageApproving, nft, "approve", c.wrapper.Address(), req.TokenID); err != nil {
		return nil, err
	}
	receipt, err := r.step(ctx, StageDepositing, c.wrapper, "depositERC721", req.Token, req.TokenID, nonNil(req.Data), tokenURI)
	if err != nil {
		return nil, err
	}
	return c.finishDeposit(r, receipt, res)
}

// WithdrawERC721 submits a single withdrawERC721 call and waits for it.
func (c *Client) WithdrawERC721(ctx context.Context, token common.Address, tokenID *big.Int) (*WithdrawResult, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := requireNonNegative("token id", tokenID); err != nil {
		return nil, err
	}
	r := c.start(OpWithdrawERC721, logrus.Fields{"token": token.Hex(), "token_id": tokenID.String()})
	return c.withdraw(ctx, r, "withdrawERC721", token, tokenID)
}

// ViewURI reads the metadata URI of a wrapped token. It never transacts.
func (c *Client) ViewURI(ctx context.Context, id *big.Int) (string, error) {
	if err := requireNonNegative("token id", id); err != nil {
		return "", err
	}
	out, err := c.wrapper.Call(ctx, "uri", id)
	if err != nil {
		return "", &StepError{Stage: StageReading, Err: err}
	}
	uri, err := singleString(out)
	if err != nil {
		return "", &StepError{Stage: StageReading, Err: fmt.Errorf("uri(%s): %w", id, err)}
	}
	c.log.WithFields(logrus.Fields{"op": OpViewURI, "id": id.String()}).Debug("uri read")
	return uri, nil
}

func (c *Client) withdraw(ctx context.Context, r *run, method string, args ...any) (*WithdrawResult, error) {
	receipt, err := r.step(ctx, StageWithdrawing, c.wrapper, method, args...)
	if err != nil {
		return nil, err
	}
	r.done(receipt.TxHash, nil)
	return &WithdrawResult{FlowID: r.id, TxHash: receipt.TxHash, Receipt: receipt}, nil
}

func (c *Client) finishDeposit(r *run, receipt *types.Receipt, res *DepositResult) (*DepositResult, error) {
	id, err := c.deposit.bigField(receipt, c.wrapper.Address(), "id")
	if err != nil {
		return nil, r.fail(StageDepositing, err)
	}
	res.FlowID = r.id
	res.WrappedID = id
	res.TxHash = receipt.TxHash
	res.Receipt = receipt
	res.Warnings = r.warnings
	r.done(receipt.TxHash, id)
	return res, nil
}

// checkMinted compares the id the demo mint produced with the id the caller
// asked to deposit. A mismatch is reported but does not stop the flow.
func (c *Client) checkMinted(r *run, receipt *types.Receipt, nft common.Address, requested *big.Int) *big.Int {
	if c.mint == nil {
		r.warn("ERC721 ABI has no Transfer event; minted token id unknown")
		return nil
	}
	minted, err := c.mint.bigField(receipt, nft, "tokenId")
	if err != nil {
		r.warn(fmt.Sprintf("minted token id unknown: %v", err))
		return nil
	}
	if minted.Cmp(requested) != 0 {
		r.warn(fmt.Sprintf("minted token id %s differs from requested %s; depositing %s", minted, requested, requested))
	}
	return minted
}

// ---------------------------------------------------------------------------
// flow bookkeeping
// ---------------------------------------------------------------------------

type run struct {
	c        *Client
	id       string
	op       string
	log      logrus.FieldLogger
	started  time.Time
	stage    Stage
	warnings []string
}

func (c *Client) start(op string, fields logrus.Fields) *run {
	id := uuid.NewString()
	r := &run{
		c:       c,
		id:      id,
		op:      op,
		log:     c.log.WithField("flow_id", id).WithField("op", op).WithFields(fields),
		started: time.Now(),
	}
	r.emit(Progress{Stage: StageIdle})
	return r
}

// step submits method on contract and waits for its receipt.
func (r *run) step(ctx context.Context, stage Stage, contract Contract, method string, args ...any) (*types.Receipt, error) {
	r.enter(stage)
	tx, err := contract.Transact(ctx, method, args...)
	if err != nil {
		return nil, r.fail(stage, err)
	}
	r.log.WithFields(logrus.Fields{"stage": stage.String(), "tx": tx.Hash().Hex()}).Info("transaction sent")
	r.emit(Progress{Stage: stage, TxHash: tx.Hash()})

	receipt, err := r.c.confirmer.Confirm(ctx, tx)
	if err != nil {
		return nil, r.fail(stage, fmt.Errorf("%s: %w", method, err))
	}
	return receipt, nil
}

func (r *run) enter(stage Stage) {
	r.stage = stage
	r.log.WithField("stage", stage.String()).Debug("stage")
	r.emit(Progress{Stage: stage})
}

func (r *run) warn(msg string) {
	r.warnings = append(r.warnings, msg)
	r.log.Warn(msg)
	r.emit(Progress{Stage: r.stage, Warning: msg})
}

func (r *run) fail(stage Stage, err error) error {
	se := &StepError{Stage: stage, Err: err}
	r.log.WithError(err).WithFields(logrus.Fields{
		"stage":   stage.String(),
		"elapsed": time.Since(r.started).Round(time.Millisecond).String(),
	}).Error("flow failed")
	r.emit(Progress{Stage: StageFailed, Err: se})
	return se
}

func (r *run) done(tx common.Hash, wrapped *big.Int) {
	fields := logrus.Fields{
		"tx":      tx.Hex(),
		"elapsed": time.Since(r.started).Round(time.Millisecond).String(),
	}
	if wrapped != nil {
		fields["wrapped_id"] = wrapped.String()
	}
	r.log.WithFields(fields).Info("flow confirmed")
	r.emit(Progress{Stage: StageConfirmed, TxHash: tx, WrappedID: wrapped})
}

func (r *run) emit(p Progress) {
	if r.c.observer == nil {
		return
	}
	p.FlowID = r.id
	p.Operation = r.op
	r.c.observer(p)
}

func singleString(out []any) (string, error) {
	if len(out) != 1 {
		return "", fmt.Errorf("%w: %d return values", ErrUnexpectedResponse, len(out))
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: got %T, want string", ErrUnexpectedResponse, out[0])
	}
	return s, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
