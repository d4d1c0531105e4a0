package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mintgate/internal/mint/models"
	fundingstore "mintgate/internal/mint/store/funding"
	peerstore "mintgate/internal/mint/store/peers"
	memoryrelay "mintgate/internal/relay/memory"
	id "mintgate/pkg/domain"
)

// =============================================================================
// Notifier Service Test Suite
// =============================================================================

const selfReplica = id.ReplicaID("replica-a")

// capture records deliveries arriving at one bus destination.
type capture struct {
	sources  []id.ReplicaID
	senders  []id.Identity
	payloads [][]byte
}

func (c *capture) HandleDelivery(_ context.Context, source id.ReplicaID, sender id.Identity, payload []byte) error {
	c.sources = append(c.sources, source)
	c.senders = append(c.senders, sender)
	c.payloads = append(c.payloads, payload)
	return nil
}

type NotifierServiceSuite struct {
	suite.Suite
	peers   *peerstore.InMemoryPeerStore
	funding *fundingstore.InMemoryFundingStore
	bus     *memoryrelay.Bus
	service *Service
}

func TestNotifierServiceSuite(t *testing.T) {
	suite.Run(t, new(NotifierServiceSuite))
}

func (s *NotifierServiceSuite) SetupTest() {
	s.peers = peerstore.New()
	s.funding = fundingstore.New(100)
	s.bus = memoryrelay.NewBus(2)

	var err error
	s.service, err = New(selfReplica, s.peers, s.funding, s.bus.Endpoint(selfReplica, "treasury-a"))
	s.Require().NoError(err)
}

func (s *NotifierServiceSuite) register(replica id.ReplicaID) *capture {
	c := &capture{}
	s.bus.Register(replica, c)
	return c
}

func (s *NotifierServiceSuite) balance() uint64 {
	balance, err := s.funding.Balance(context.Background())
	s.Require().NoError(err)
	return balance
}

// =============================================================================
// Fan-out Tests
// =============================================================================

func (s *NotifierServiceSuite) TestNotifyPeers() {
	ctx := context.Background()

	s.Run("every configured peer receives one sync", func() {
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		s.Require().NoError(s.peers.Set(ctx, "replica-c", "treasury-c"))
		b := s.register("replica-b")
		c := s.register("replica-c")

		s.service.NotifyPeers(ctx, "wallet-1", 2)

		s.Require().Len(b.payloads, 1)
		s.Require().Len(c.payloads, 1)

		msg, err := models.DecodeRelayMessage(b.payloads[0])
		s.Require().NoError(err)
		s.Equal(models.KindSyncGlobalStatus, msg.Kind)
		s.Equal(id.Identity("wallet-1"), msg.Identity)
		s.Equal(id.PoolID(2), msg.Pool)
		s.Equal(selfReplica, b.sources[0])
		s.Equal(id.Identity("treasury-a"), b.senders[0])

		// One flat fee of 2 per funded peer.
		s.Equal(uint64(96), s.balance())
	})

	s.Run("self entry in the peer table is skipped", func() {
		s.SetupTest()
		s.Require().NoError(s.peers.Set(ctx, selfReplica, "treasury-a"))
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		self := s.register(selfReplica)
		b := s.register("replica-b")

		s.service.NotifyPeers(ctx, "wallet-2", 1)

		s.Empty(self.payloads)
		s.Len(b.payloads, 1)
	})

	s.Run("no peers means no sends and no spend", func() {
		s.SetupTest()
		before := s.balance()
		s.service.NotifyPeers(ctx, "wallet-3", 1)
		s.Equal(before, s.balance())
	})
}

// =============================================================================
// Funding Tests
// =============================================================================

func (s *NotifierServiceSuite) TestNotifyPeers_Funding() {
	ctx := context.Background()

	s.Run("underfunded peer is skipped without blocking others", func() {
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		s.Require().NoError(s.peers.Set(ctx, "replica-c", "treasury-c"))
		b := s.register("replica-b")
		c := s.register("replica-c")

		// Only replica-c's fee is affordable.
		s.bus.SetFee("replica-b", 1000)
		s.bus.SetFee("replica-c", 3)

		s.service.NotifyPeers(ctx, "wallet-1", 1)

		s.Empty(b.payloads)
		s.Len(c.payloads, 1)
		s.Equal(uint64(97), s.balance())
	})

	s.Run("exhausted funding skips every peer", func() {
		s.SetupTest()
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		b := s.register("replica-b")
		s.bus.SetFee("replica-b", 101)

		s.service.NotifyPeers(ctx, "wallet-2", 1)

		s.Empty(b.payloads)
		s.Equal(uint64(100), s.balance())
	})
}

// =============================================================================
// Fire-and-Forget Tests
// =============================================================================

func (s *NotifierServiceSuite) TestBroadcast_FireAndForget() {
	ctx := context.Background()

	s.Run("dropped destination spends the fee and moves on", func() {
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		s.Require().NoError(s.peers.Set(ctx, "replica-c", "treasury-c"))
		b := s.register("replica-b")
		c := s.register("replica-c")
		s.bus.SetDropped("replica-b", true)

		s.service.Broadcast(ctx, models.NewSyncGlobalStatus("wallet-1", 1))

		s.Empty(b.payloads)
		s.Len(c.payloads, 1)
		// Both fees were withdrawn; loss toward replica-b is accepted.
		s.Equal(uint64(96), s.balance())
	})

	s.Run("invalid message is never dispatched", func() {
		s.SetupTest()
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		b := s.register("replica-b")

		s.service.Broadcast(ctx, models.RelayMessage{Kind: "bogus", Identity: "wallet-1"})

		s.Empty(b.payloads)
		s.Equal(uint64(100), s.balance())
	})

	s.Run("transfer mirrors flow through the same funded path", func() {
		s.SetupTest()
		s.Require().NoError(s.peers.Set(ctx, "replica-b", "treasury-b"))
		b := s.register("replica-b")

		s.service.Broadcast(ctx, models.NewCreditForDebit("wallet-2", 9))

		s.Require().Len(b.payloads, 1)
		msg, err := models.DecodeRelayMessage(b.payloads[0])
		s.Require().NoError(err)
		s.Equal(models.KindCreditForDebit, msg.Kind)
		s.Equal(uint64(9), msg.Amount)
	})
}
