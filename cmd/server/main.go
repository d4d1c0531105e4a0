// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services
// packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mintgate/internal/admintoken"
	"mintgate/internal/mint/handler"
	"mintgate/internal/mint/ports"
	adminsvc "mintgate/internal/mint/service/admin"
	"mintgate/internal/mint/service/admission"
	"mintgate/internal/mint/service/notifier"
	"mintgate/internal/mint/service/replicator"
	allowliststore "mintgate/internal/mint/store/allowlist"
	authoritystore "mintgate/internal/mint/store/authority"
	fundingstore "mintgate/internal/mint/store/funding"
	globalstatusstore "mintgate/internal/mint/store/globalstatus"
	ledgerstore "mintgate/internal/mint/store/ledger"
	mintrecordstore "mintgate/internal/mint/store/mintrecord"
	peerstore "mintgate/internal/mint/store/peers"
	poolstore "mintgate/internal/mint/store/pool"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/httpserver"
	"mintgate/internal/platform/logger"
	"mintgate/internal/platform/metrics"
	"mintgate/internal/platform/middleware"
	platformredis "mintgate/internal/platform/redis"
	kafkarelay "mintgate/internal/relay/kafka"
	memoryrelay "mintgate/internal/relay/memory"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"
	auditmemory "mintgate/pkg/platform/audit/store/memory"
	auditpostgres "mintgate/pkg/platform/audit/store/postgres"
	auditworker "mintgate/pkg/platform/audit/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	engineMetrics := metrics.New()

	replicaID := id.ReplicaID(cfg.ReplicaID)

	// Stores: postgres when configured, memory otherwise. The memory
	// variants carry the same invariants, so a single-replica dev
	// deployment needs no external services at all.
	var (
		pools      ports.PoolStore
		allowlist  ports.AllowlistStore
		records    ports.MintRecordStore
		auditStore audit.Store
	)
	if pg := config.PostgresFromEnv(); pg.DSN != "" {
		db, err := sql.Open("postgres", pg.DSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pools = poolstore.NewPostgres(db)
		allowlist = allowliststore.NewPostgres(db)
		records = mintrecordstore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		pools = poolstore.New()
		allowlist = allowliststore.New()
		records = mintrecordstore.New()
		auditStore = auditmemory.New()
	}

	var status ports.GlobalStatusStore = globalstatusstore.New()
	redisClient, err := platformredis.New(config.RedisFromEnv())
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		status = globalstatusstore.NewRedis(redisClient.Client)
	}

	peers := peerstore.New()
	funding := fundingstore.New(0)
	ledger := ledgerstore.New()
	authority := authoritystore.New(cfg.AdminAuthority)

	auditPublisher := audit.NewChannelPublisher(256)

	replication, err := replicator.New(peers, status, ledger,
		replicator.WithLogger(log),
		replicator.WithAuditPublisher(auditPublisher),
		replicator.WithMetrics(engineMetrics),
	)
	if err != nil {
		log.Error("replicator init failed", "error", err)
		os.Exit(1)
	}

	relayCfg := config.RelayFromEnv()
	senderIdentity := id.Identity(cfg.ReplicaID)
	var relay ports.Relay
	var consume func(ctx context.Context) error
	if len(relayCfg.Brokers) > 0 {
		kr, err := kafkarelay.New(kafkarelay.Config{
			Brokers:     relayCfg.Brokers,
			TopicPrefix: relayCfg.TopicPrefix,
			Self:        replicaID,
			Sender:      senderIdentity,
			FlatFee:     relayCfg.FlatFee,
		}, kafkarelay.WithLogger(log))
		if err != nil {
			log.Error("kafka relay init failed", "error", err)
			os.Exit(1)
		}
		defer kr.Close()
		relay = kr
		consume = func(ctx context.Context) error {
			return kr.Consume(ctx, replication)
		}
	} else {
		// Loopback keeps a single replica self-contained; inbound
		// deliveries can only originate locally.
		bus := memoryrelay.NewBus(relayCfg.FlatFee)
		bus.Register(replicaID, replication)
		relay = bus.Endpoint(replicaID, senderIdentity)
	}

	peerNotifier, err := notifier.New(replicaID, peers, funding, relay,
		notifier.WithLogger(log),
		notifier.WithAuditPublisher(auditPublisher),
		notifier.WithMetrics(engineMetrics),
		notifier.WithFeeRefundIdentity(senderIdentity),
	)
	if err != nil {
		log.Error("notifier init failed", "error", err)
		os.Exit(1)
	}

	admissions, err := admission.New(replicaID, pools, allowlist, records, status,
		admission.WithLogger(log),
		admission.WithAuditPublisher(auditPublisher),
		admission.WithMetrics(engineMetrics),
		admission.WithNotifier(peerNotifier),
	)
	if err != nil {
		log.Error("admission init failed", "error", err)
		os.Exit(1)
	}

	adminService, err := adminsvc.New(adminsvc.Deps{
		Engine:    admissions,
		Pools:     pools,
		Allowlist: allowlist,
		Records:   records,
		Status:    status,
		Peers:     peers,
		Funding:   funding,
		Authority: authority,
	},
		adminsvc.WithLogger(log),
		adminsvc.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("admin service init failed", "error", err)
		os.Exit(1)
	}

	tokens := admintoken.New(cfg.AdminSignKey, "mintgate")
	h := handler.New(admissions, adminService, status, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Throttle(middleware.ThrottleOptions{PerSecond: 50, Burst: 10}))
		h.RegisterPublic(r)
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuthority(tokens, authority, log))
		h.RegisterAdmin(r)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting mintgate replica", "addr", cfg.Addr, "replica", cfg.ReplicaID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		err := auditworker.NewWorker(auditStore, auditPublisher.Inbox()).Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if consume != nil {
		group.Go(func() error {
			err := consume(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
