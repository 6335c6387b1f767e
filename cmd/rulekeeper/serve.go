package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gfcbot/rulekeeper/internal/api"
	"github.com/gfcbot/rulekeeper/internal/authz"
	"github.com/gfcbot/rulekeeper/internal/config"
	"github.com/gfcbot/rulekeeper/internal/db"
	"github.com/gfcbot/rulekeeper/internal/db/migrations"
	"github.com/gfcbot/rulekeeper/internal/service"
	"github.com/gfcbot/rulekeeper/internal/store"
	"github.com/gfcbot/rulekeeper/internal/sweep"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled retention sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipMigrate)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations on startup")

	return cmd
}

// components is the wired object graph shared by serve and sweep.
type components struct {
	rules     *service.RuleService
	resolve   *service.ResolveService
	retention *service.RetentionService
	audit     *service.AuditService
	worker    *service.AuditWorker
	sweeper   *sweep.Sweeper
	clients   *store.ClientStore
}

func wire(e *env) *components {
	base := store.Base{Pool: e.pool, Log: e.log}

	ruleStore := store.NewRuleStore(base)
	retentionStore := store.NewRetentionStore(base)
	auditStore := store.NewAuditStore(base)
	historyStore := store.NewHistoryStore(base)

	worker := service.NewAuditWorker(auditStore, e.log, e.cfg.AuditQueueSize)

	return &components{
		rules:     service.NewRuleService(ruleStore, worker, e.log),
		resolve:   service.NewResolveService(ruleStore),
		retention: service.NewRetentionService(retentionStore, worker, e.log),
		audit:     service.NewAuditService(auditStore, e.log),
		worker:    worker,
		sweeper: sweep.NewSweeper(
			retentionStore,
			[]sweep.Dataset{historyStore, auditStore},
			sweep.Options{Workers: e.cfg.SweepWorkers, TenantTimeout: e.cfg.SweepTenantTimeout},
			e.log,
		),
		clients: store.NewClientStore(e.pool),
	}
}

// prepareSchema applies pending migrations, or with skip set refuses to run
// against a schema that is behind the binary.
func prepareSchema(ctx context.Context, e *env, skip bool) error {
	if !skip {
		return db.RunMigrations(ctx, e.pool, e.log, migrations.FS)
	}

	pending, err := db.HasPending(ctx, e.pool, migrations.FS)
	if err != nil {
		return err
	}
	if pending {
		return errors.New("database has pending migrations; run `rulekeeper migrate up` or drop --skip-migrate")
	}

	return nil
}

func runServe(ctx context.Context, skipMigrate bool) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	prometheus.MustRegister(e.pool.Collector())

	if err := prepareSchema(ctx, e, skipMigrate); err != nil {
		return err
	}

	authorizer, err := authz.NewAuthorizer(e.cfg.AuthzPolicyFile, e.cfg.AuthzMode)
	if err != nil {
		return err
	}
	if e.cfg.AuthzMode != authz.ModeEnforce {
		e.log.WithField("mode", e.cfg.AuthzMode).Warn("authz.not_enforcing")
	}

	c := wire(e)

	scheduler, err := sweep.NewScheduler(e.cfg.SweepSchedule, e.cfg.SweepTimezone, c.sweeper, e.log)
	if err != nil {
		return err
	}

	// The audit worker outlives the HTTP server so mutations accepted during
	// shutdown are still recorded.
	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorker()

	workerDone := make(chan struct{})
	go func() {
		c.worker.Run(workerCtx)
		close(workerDone)
	}()

	srv := &http.Server{
		Addr: e.cfg.Addr(),
		Handler: api.NewRouter(ctx, &api.RouterDeps{
			Log:         e.log,
			Pool:        e.pool,
			Rules:       c.rules,
			Resolve:     c.resolve,
			Retention:   c.retention,
			Audit:       c.audit,
			Sweeper:     c.sweeper,
			Clients:     c.clients,
			Authorizer:  authorizer,
			CORSOrigins: e.cfg.CORSOrigins,
			Version:     config.Version,
			RateLimit:   e.cfg.RateLimit,
			RateBurst:   e.cfg.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute, // POST /admin/sweep runs synchronously.
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.log.WithField("addr", srv.Addr).Info("server.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start(gctx)
		<-gctx.Done()

		e.log.Info("server.shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)

		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			e.log.Warn("sweep.shutdown_timeout")
		}

		return err
	})

	err = g.Wait()

	stopWorker()
	<-workerDone

	e.log.Info("server.stopped")

	return err
}
