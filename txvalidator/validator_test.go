package txvalidator

import (
	"testing"

	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/wire"
	"github.com/stretchr/testify/require"
)

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

func TestCheckRejectsEmptyInputsAndOutputs(t *testing.T) {
	v := New(0, 0, 0)

	noInputs := sampleTx(1000)
	noInputs.TxIn = nil
	err := v.Check(noInputs, 21000000*1e8)
	require.Error(t, err)
	code, _ := chainorgerr.Code(err)
	require.Equal(t, chainorgerr.ErrNoTxInputs, code)

	noOutputs := sampleTx(1000)
	noOutputs.TxOut = nil
	err = v.Check(noOutputs, 21000000*1e8)
	require.Error(t, err)
	code, _ = chainorgerr.Code(err)
	require.Equal(t, chainorgerr.ErrNoTxOutputs, code)
}

func TestCheckRejectsNullInput(t *testing.T) {
	v := New(0, 0, 0)
	tx := sampleTx(1000)
	tx.TxIn[0].PreviousOutPoint.Index = 0xffffffff

	err := v.Check(tx, 21000000*1e8)
	require.Error(t, err)
	code, _ := chainorgerr.Code(err)
	require.Equal(t, chainorgerr.ErrNullInput, code)
}

func TestCheckRejectsAmountAboveMaxMoney(t *testing.T) {
	v := New(0, 0, 0)
	tx := sampleTx(1000)

	err := v.Check(tx, 500)
	require.Error(t, err)
	code, _ := chainorgerr.Code(err)
	require.Equal(t, chainorgerr.ErrBadAmount, code)
}

func TestSufficientFeeZeroFeesAlwaysAccepts(t *testing.T) {
	v := New(0, 0, 0)
	tx := sampleTx(1000)
	tx.FeesSatoshis = 0
	require.True(t, v.SufficientFee(tx))
}

func TestSufficientFeeFloorsAtOneSatoshi(t *testing.T) {
	v := New(0.0001, 0, 0)
	tx := sampleTx(1000)
	tx.SerializedSizeBytes = 1
	tx.FeesSatoshis = 1
	require.True(t, v.SufficientFee(tx))
}

func TestSufficientFeeRejectsBelowPrice(t *testing.T) {
	v := New(1, 10, 0)
	tx := sampleTx(1000)
	tx.SerializedSizeBytes = 250
	tx.SigOpCount = 1
	tx.FeesSatoshis = 100
	require.False(t, v.SufficientFee(tx))
}

func TestIsDustyRejectsOutputBelowMinimum(t *testing.T) {
	v := New(0, 0, 546)
	tx := sampleTx(100)
	require.True(t, v.IsDusty(tx))
}

func TestIsDustyAcceptsOutputAtOrAboveMinimum(t *testing.T) {
	v := New(0, 0, 546)
	tx := sampleTx(546)
	require.False(t, v.IsDusty(tx))
}
