package cmd

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Mohsinsiddi/w3wrap/internal/server"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

func TestServeUntilDoneShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	l, _ := test.NewNullLogger()
	prev := log
	log = l
	defer func() { log = prev }()

	srv := server.New("127.0.0.1:0", (*wrapper.Client)(nil), server.WithLogger(l))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeUntilDoneListenError(t *testing.T) {
	l, _ := test.NewNullLogger()
	srv := server.New("256.0.0.1:bad", (*wrapper.Client)(nil), server.WithLogger(l))

	err := serveUntilDone(context.Background(), srv)
	assert.Error(t, err)
}

func TestLogObserver(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	obs := logObserver(l)

	obs(wrapper.Progress{FlowID: "f1", Operation: wrapper.OpDepositERC20, Stage: wrapper.StageApproving})
	obs(wrapper.Progress{
		FlowID:    "f1",
		Operation: wrapper.OpDepositERC20,
		Stage:     wrapper.StageConfirmed,
		TxHash:    common.HexToHash("0xabc"),
		WrappedID: big.NewInt(1),
	})
	obs(wrapper.Progress{FlowID: "f2", Operation: wrapper.OpDepositERC721, Stage: wrapper.StageMinting, Warning: "minted id 3, depositing 1"})
	obs(wrapper.Progress{FlowID: "f3", Operation: wrapper.OpWithdrawERC20, Stage: wrapper.StageFailed, Err: errors.New("boom")})

	entries := hook.AllEntries()
	require.Len(t, entries, 4)

	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "approving", entries[0].Data["stage"])
	assert.Equal(t, "f1", entries[0].Data["flow_id"])
	assert.NotContains(t, entries[0].Data, "tx")

	assert.Equal(t, common.HexToHash("0xabc").Hex(), entries[1].Data["tx"])

	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, "minted id 3, depositing 1", entries[2].Message)

	assert.Equal(t, logrus.WarnLevel, entries[3].Level)
	assert.Equal(t, "flow failed", entries[3].Message)
	assert.EqualError(t, entries[3].Data[logrus.ErrorKey].(error), "boom")
}
