package chainfacade

import (
	"sync"
	"testing"
	"time"

	"github.com/ordata-labs/chainorg/chaincfg"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/fastchain/memchain"
	"github.com/ordata-labs/chainorg/headerpool"
	"github.com/ordata-labs/chainorg/headervalidator"
	"github.com/ordata-labs/chainorg/pow"
	"github.com/ordata-labs/chainorg/prioritymutex"
	"github.com/ordata-labs/chainorg/txpool"
	"github.com/ordata-labs/chainorg/txvalidator"
	"github.com/ordata-labs/chainorg/wire"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T, genesisTime time.Time) (*ChainFacade, *memchain.Chain, *chaincfg.Params) {
	params := chaincfg.SimNetParams
	params.Deployments = map[string]int32{}

	genesis := &wire.Header{Version: 1, Timestamp: genesisTime, Bits: params.PowLimitBits}
	chain := memchain.New(genesis, params.Deployments, params.RetargetInterval)
	headerPool := headerpool.New(chain)
	txPool := txpool.New()

	headerVal := headervalidator.New(&params)
	headerVal.SetTimeSource(func() time.Time { return genesisTime.Add(24 * time.Hour) })
	txVal := txvalidator.New(0, 0, 546)

	mu := prioritymutex.New()
	fanout := dispatcher.New("priority", 4)
	general := dispatcher.New("general", 4)

	f := New(chain, headerPool, txPool, headerVal, txVal, mu, fanout, general, 21000000*1e8)
	return f, chain, &params
}

// header builds a child of prev and searches nonces until its hash
// meets the target encoded by bits, so it satisfies Check's
// proof-of-work rule.
func header(prev *wire.Header, ts time.Time, bits uint32) *wire.Header {
	target := pow.CompactToBig(bits)
	for nonce := uint32(0); ; nonce++ {
		h := &wire.Header{Version: 1, Timestamp: ts, Bits: bits, Nonce: nonce}
		h.PrevBlock = prev.Hash()
		if pow.HashToBig(h.Hash()).Cmp(target) <= 0 {
			return h
		}
	}
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

func TestOrganizeHeaderNotifiesSubscriberAndRefreshesSnapshot(t *testing.T) {
	genesisTime := time.Unix(1700000000, 0)
	f, chain, params := newHarness(t, genesisTime)

	genesis, _ := chain.HeaderAt(0)
	h1 := header(genesis, genesisTime.Add(time.Minute), params.PowLimitBits)

	var (
		mu            sync.Mutex
		gotIncoming   []*wire.Header
		gotOutgoing   []*wire.Header
		gotForkHeight int32
		notified      bool
	)
	unsubscribe := f.SubscribeHeaders(func(incoming, outgoing []*wire.Header, forkHeight int32) {
		mu.Lock()
		defer mu.Unlock()
		gotIncoming = incoming
		gotOutgoing = outgoing
		gotForkHeight = forkHeight
		notified = true
	})
	defer unsubscribe()

	done := make(chan error, 1)
	f.OrganizeHeader(h1, func(err error) { done <- err })
	require.NoError(t, <-done)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return notified
	}, time.Second, time.Millisecond)

	mu.Lock()
	require.Equal(t, []*wire.Header{h1}, gotIncoming)
	require.Empty(t, gotOutgoing)
	require.Equal(t, int32(0), gotForkHeight)
	mu.Unlock()

	top, ok := chain.GetTop(false)
	require.True(t, ok)
	require.Equal(t, int32(0), top.Height)
	require.Equal(t, top, f.ForkPoint())

	// h1 extended the candidate chain past the confirmed tip (still at
	// genesis, since nothing has confirmed it), so the candidate branch
	// now carries strictly more work above the fork point.
	require.True(t, f.IsReorganizable())
}

func TestIsReorganizableFollowsForkPointAfterConfirm(t *testing.T) {
	genesisTime := time.Unix(1700000000, 0)
	f, chain, params := newHarness(t, genesisTime)

	require.False(t, f.IsReorganizable())

	genesis, _ := chain.HeaderAt(0)
	h1 := header(genesis, genesisTime.Add(time.Minute), params.PowLimitBits)

	done := make(chan error, 1)
	f.OrganizeHeader(h1, func(err error) { done <- err })
	require.NoError(t, <-done)
	require.True(t, f.IsReorganizable())

	require.NoError(t, chain.Confirm(1))

	// Confirming the candidate tip catches the confirmed chain up, so
	// organizing a further header that merely extends it (without
	// confirming that one too) reports the new fork point at height 1
	// and is once again reorganizable relative to it.
	h2 := header(h1, genesisTime.Add(2*time.Minute), params.PowLimitBits)
	done2 := make(chan error, 1)
	f.OrganizeHeader(h2, func(err error) { done2 <- err })
	require.NoError(t, <-done2)

	top, ok := chain.GetTop(false)
	require.True(t, ok)
	require.Equal(t, int32(1), top.Height)
	require.True(t, f.IsReorganizable())
}

func TestOrganizeTransactionNotifiesSubscriber(t *testing.T) {
	genesisTime := time.Unix(1700000000, 0)
	f, _, _ := newHarness(t, genesisTime)

	tx := sampleTx(10000)

	var (
		mu       sync.Mutex
		got      *wire.Tx
		notified bool
	)
	unsubscribe := f.SubscribeTransactions(func(tx *wire.Tx) {
		mu.Lock()
		defer mu.Unlock()
		got = tx
		notified = true
	})
	defer unsubscribe()

	done := make(chan error, 1)
	f.OrganizeTransaction(tx, func(err error) { done <- err })
	require.NoError(t, <-done)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return notified
	}, time.Second, time.Millisecond)

	mu.Lock()
	require.Equal(t, tx, got)
	mu.Unlock()
}

func TestUnsubscribeStopsFurtherNotifications(t *testing.T) {
	genesisTime := time.Unix(1700000000, 0)
	f, chain, params := newHarness(t, genesisTime)

	var calls int
	var mu sync.Mutex
	unsubscribe := f.SubscribeHeaders(func(incoming, outgoing []*wire.Header, forkHeight int32) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	unsubscribe()

	genesis, _ := chain.HeaderAt(0)
	h1 := header(genesis, genesisTime.Add(time.Minute), params.PowLimitBits)

	done := make(chan error, 1)
	f.OrganizeHeader(h1, func(err error) { done <- err })
	require.NoError(t, <-done)

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, calls)
}

func TestNotifierDeliversOutOfOrderCallbacksInSequence(t *testing.T) {
	n := newNotifier()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		n.deliver(2, func() { mu.Lock(); order = append(order, 2); mu.Unlock() })
	}()
	time.Sleep(5 * time.Millisecond)
	go func() {
		defer wg.Done()
		n.deliver(3, func() { mu.Lock(); order = append(order, 3); mu.Unlock() })
	}()
	time.Sleep(5 * time.Millisecond)
	go func() {
		defer wg.Done()
		n.deliver(1, func() { mu.Lock(); order = append(order, 1); mu.Unlock() })
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3}, order)
}
