package txorganizer

import (
	"testing"
	"time"

	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/fastchain/memchain"
	"github.com/ordata-labs/chainorg/prioritymutex"
	"github.com/ordata-labs/chainorg/txpool"
	"github.com/ordata-labs/chainorg/txvalidator"
	"github.com/ordata-labs/chainorg/wire"
	"github.com/stretchr/testify/require"
)

const maxMoney = 21000000 * 1e8

func newHarness() (*Organizer, *txpool.Pool, *memchain.Chain) {
	genesis := &wire.Header{Version: 1, Timestamp: time.Unix(1700000000, 0)}
	chain := memchain.New(genesis, nil, 2016)
	pool := txpool.New()
	validator := txvalidator.New(0, 0, 546)

	org := New(pool, chain, validator, prioritymutex.New(), dispatcher.New("priority", 4))
	return org, pool, chain
}

func sampleTx(value int64) *wire.Tx {
	return &wire.Tx{
		TxIn: []*wire.TxIn{
			{PreviousOutPoint: wire.OutPoint{Index: 0}},
		},
		TxOut: []*wire.TxOut{
			{Value: value},
		},
		SerializedSizeBytes: 250,
		SigOpCount:          1,
		FeesSatoshis:        1000,
	}
}

func TestOrganizeCommitsAndPoolsTransaction(t *testing.T) {
	org, pool, chain := newHarness()
	tx := sampleTx(10000)

	var result Result
	org.Organize(tx, func(r Result) { result = r }, maxMoney)
	require.NoError(t, result.Err)
	require.Equal(t, uint64(1), result.CommitSeq)

	require.True(t, pool.Exists(tx.Hash()))
	stored, ok := chain.StoredTx(tx.Hash())
	require.True(t, ok)
	require.Equal(t, tx, stored)
}

func TestOrganizeRejectsDuplicate(t *testing.T) {
	org, _, _ := newHarness()
	tx := sampleTx(10000)

	var result Result
	org.Organize(tx, func(r Result) { result = r }, maxMoney)
	require.NoError(t, result.Err)

	org.Organize(tx, func(r Result) { result = r }, maxMoney)
	require.Error(t, result.Err)
	code, _ := chainorgerr.Code(result.Err)
	require.Equal(t, chainorgerr.ErrDuplicateTransaction, code)
}

func TestOrganizeRejectsDustyOutput(t *testing.T) {
	org, pool, _ := newHarness()
	tx := sampleTx(100)

	var result Result
	org.Organize(tx, func(r Result) { result = r }, maxMoney)
	require.Error(t, result.Err)
	code, _ := chainorgerr.Code(result.Err)
	require.Equal(t, chainorgerr.ErrDustyTransaction, code)
	require.False(t, pool.Exists(tx.Hash()))
}

func TestOrganizeReportsStoppedAfterStop(t *testing.T) {
	org, _, _ := newHarness()
	org.Stop()

	tx := sampleTx(10000)
	var result Result
	org.Organize(tx, func(r Result) { result = r }, maxMoney)
	require.Error(t, result.Err)
	code, _ := chainorgerr.Code(result.Err)
	require.Equal(t, chainorgerr.ErrServiceStopped, code)
}
