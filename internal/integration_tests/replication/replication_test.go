package replication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/internal/mint/models"
	"mintgate/internal/mint/service/admission"
	"mintgate/internal/mint/service/notifier"
	"mintgate/internal/mint/service/replicator"
	allowliststore "mintgate/internal/mint/store/allowlist"
	fundingstore "mintgate/internal/mint/store/funding"
	globalstatusstore "mintgate/internal/mint/store/globalstatus"
	ledgerstore "mintgate/internal/mint/store/ledger"
	mintrecordstore "mintgate/internal/mint/store/mintrecord"
	peerstore "mintgate/internal/mint/store/peers"
	poolstore "mintgate/internal/mint/store/pool"
	memoryrelay "mintgate/internal/relay/memory"
	id "mintgate/pkg/domain"
)

// replica bundles one fully wired engine instance for cross-replica tests.
type replica struct {
	id         id.ReplicaID
	pools      *poolstore.InMemoryPoolStore
	status     *globalstatusstore.InMemoryGlobalStatusStore
	peers      *peerstore.InMemoryPeerStore
	funding    *fundingstore.InMemoryFundingStore
	admissions *admission.Service
	replicator *replicator.Service
}

func newReplica(t *testing.T, bus *memoryrelay.Bus, replicaID id.ReplicaID, sender id.Identity) *replica {
	t.Helper()

	r := &replica{
		id:      replicaID,
		pools:   poolstore.New(),
		status:  globalstatusstore.New(),
		peers:   peerstore.New(),
		funding: fundingstore.New(1000),
	}

	rep, err := replicator.New(r.peers, r.status, ledgerstore.New())
	require.NoError(t, err)
	r.replicator = rep
	bus.Register(replicaID, rep)

	notify, err := notifier.New(replicaID, r.peers, r.funding, bus.Endpoint(replicaID, sender))
	require.NoError(t, err)

	adm, err := admission.New(replicaID, r.pools, allowliststore.New(), mintrecordstore.New(), r.status,
		admission.WithNotifier(notify),
	)
	require.NoError(t, err)
	r.admissions = adm

	return r
}

func seedPool(t *testing.T, r *replica, poolID id.PoolID, capacity uint64) {
	t.Helper()
	pool, err := models.NewPool(poolID, capacity, 0, 10, false)
	require.NoError(t, err)
	pool.Enabled = true
	require.NoError(t, r.pools.Put(context.Background(), pool))
}

func TestReplication_AdmissionConverges(t *testing.T) {
	ctx := context.Background()
	bus := memoryrelay.NewBus(1)

	a := newReplica(t, bus, "replica-a", "treasury-a")
	b := newReplica(t, bus, "replica-b", "treasury-b")
	seedPool(t, a, 1, 10)
	seedPool(t, b, 1, 10)

	require.NoError(t, a.peers.Set(ctx, "replica-b", "treasury-b"))
	require.NoError(t, b.peers.Set(ctx, "replica-a", "treasury-a"))

	_, err := a.admissions.Admit(ctx, 1, "wallet-1", 1, 0)
	require.NoError(t, err)

	// The sync arrived on B through the bus: same flag, same origin, and one
	// counted sync for the pool.
	status, err := b.status.Get(ctx, "wallet-1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.Admitted)
	assert.Equal(t, id.ReplicaID("replica-a"), status.Origin)
	assert.Equal(t, uint64(1), status.PoolSyncs[1])

	// B's own pool counters are untouched; only the replicated status moved.
	pool, err := b.pools.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pool.Minted)
}

func TestReplication_RedeliveryInflatesOnlyTheCounter(t *testing.T) {
	ctx := context.Background()
	bus := memoryrelay.NewBus(1)

	a := newReplica(t, bus, "replica-a", "treasury-a")
	b := newReplica(t, bus, "replica-b", "treasury-b")
	seedPool(t, a, 1, 10)

	require.NoError(t, a.peers.Set(ctx, "replica-b", "treasury-b"))
	bus.SetRedeliveries("replica-b", 2)

	_, err := a.admissions.Admit(ctx, 1, "wallet-1", 1, 0)
	require.NoError(t, err)

	status, err := b.status.Get(ctx, "wallet-1")
	require.NoError(t, err)
	require.NotNil(t, status)

	// The flag merge is idempotent; the sync counter is not and records every
	// delivery.
	assert.True(t, status.Admitted)
	assert.Equal(t, id.ReplicaID("replica-a"), status.Origin)
	assert.Equal(t, uint64(3), status.PoolSyncs[1])
}

func TestReplication_UntrustedSenderIsIgnored(t *testing.T) {
	ctx := context.Background()
	bus := memoryrelay.NewBus(1)

	a := newReplica(t, bus, "replica-a", "treasury-a")
	b := newReplica(t, bus, "replica-b", "treasury-b")
	seedPool(t, a, 1, 10)

	require.NoError(t, a.peers.Set(ctx, "replica-b", "treasury-b"))
	// B expects a different sender identity behind replica-a's messages.
	require.NoError(t, b.peers.Set(ctx, "replica-a", "someone-else"))

	_, err := a.admissions.Admit(ctx, 1, "wallet-1", 1, 0)
	require.NoError(t, err)

	// A committed locally.
	local, err := a.status.Get(ctx, "wallet-1")
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.True(t, local.Admitted)

	// B dropped the delivery with no state change.
	remote, err := b.status.Get(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Nil(t, remote)
}

func TestReplication_UnderfundedReplicaStaysSilent(t *testing.T) {
	ctx := context.Background()
	bus := memoryrelay.NewBus(5)

	a := newReplica(t, bus, "replica-a", "treasury-a")
	b := newReplica(t, bus, "replica-b", "treasury-b")
	seedPool(t, a, 1, 10)

	require.NoError(t, a.peers.Set(ctx, "replica-b", "treasury-b"))
	require.NoError(t, a.funding.Withdraw(ctx, 1000))

	receipt, err := a.admissions.Admit(ctx, 1, "wallet-1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Units)

	// The admission still committed locally even though no peer was notified.
	remote, err := b.status.Get(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Nil(t, remote)
}
