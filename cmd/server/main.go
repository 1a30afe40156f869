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

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"locality/internal/audit"
	audithandler "locality/internal/audit/handler"
	"locality/internal/audit/publisher"
	auditstore "locality/internal/audit/store"
	authhandler "locality/internal/auth/handler"
	authservice "locality/internal/auth/service"
	adminstore "locality/internal/auth/store/admin"
	"locality/internal/auth/store/revocation"
	"locality/internal/certificate"
	certhandler "locality/internal/certificate/handler"
	certservice "locality/internal/certificate/service"
	certstore "locality/internal/certificate/store"
	dirhandler "locality/internal/directory/handler"
	dirservice "locality/internal/directory/service"
	dirstore "locality/internal/directory/store"
	"locality/internal/household"
	househandler "locality/internal/household/handler"
	idhandler "locality/internal/idcard/handler"
	idservice "locality/internal/idcard/service"
	idstore "locality/internal/idcard/store"
	"locality/internal/platform/config"
	"locality/internal/platform/httpserver"
	"locality/internal/platform/logger"
	"locality/internal/platform/metrics"
	platformredis "locality/internal/platform/redis"
	"locality/internal/token"
	httptransport "locality/internal/transport/http"
	"locality/internal/vault"
	vaulthandler "locality/internal/vault/handler"
	vaultstore "locality/internal/vault/store"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	// Stores: postgres when a database is configured, memory otherwise.
	var (
		directoryStore interface {
			dirservice.HeadStore
			dirservice.MemberStore
			authservice.HeadDirectory
		}
		idcardStore idservice.Store
		certStore   certservice.Store
		vaultStore  vault.Store
		auditStore  audit.Store
		adminStore  authservice.AdminStore
	)
	if db != nil {
		directoryStore = dirstore.NewPostgres(db)
		idcardStore = idstore.NewPostgres(db)
		certStore = certstore.NewPostgres(db)
		vaultStore = vaultstore.NewPostgres(db)
		auditStore = auditstore.NewPostgres(db)
		adminStore = adminstore.NewPostgres(db)
	} else {
		directoryStore = dirstore.NewMemory()
		idcardStore = idstore.NewMemory()
		certStore = certstore.NewMemory()
		vaultStore = vaultstore.NewMemory()
		auditStore = auditstore.NewMemory()
		adminStore = adminstore.NewMemory()
	}

	var revoked authservice.RevocationList
	if redisClient, err := platformredis.NewClient(ctx, cfg.RedisAddr); err != nil {
		log.Warn("redis unreachable, using in-memory revocation list", "error", err)
		revoked = revocation.NewMemory()
	} else {
		defer redisClient.Close()
		revoked = revocation.NewRedis(redisClient)
	}

	auditSvc := audit.NewService(auditStore, log, m, 256)

	var auditPublisher audit.Publisher
	if len(cfg.AuditBrokers) > 0 {
		kafka, err := publisher.NewKafka(cfg.AuditBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to connect audit publisher", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		auditPublisher = kafka
	}

	tokens := token.NewService(cfg.JWTSigningKey, "locality", cfg.TokenTTL)

	directorySvc := dirservice.New(directoryStore, directoryStore, auditSvc, m)
	idcardSvc := idservice.New(idcardStore, directorySvc, auditSvc, m)
	certSvc := certservice.New(certStore, directorySvc, auditSvc, m, map[certificate.Kind]certservice.ApprovalHook{
		certificate.KindDeath: certservice.DeathHook(directorySvc),
	})
	vaultSvc := vault.NewService(vaultStore, auditSvc)
	householdSvc := household.New(directorySvc, idcardSvc, certSvc)
	authSvc := authservice.New(adminStore, directoryStore, tokens, revoked, auditSvc, m)

	saver, err := vault.NewDiskSaver(cfg.UploadDir)
	if err != nil {
		log.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:      authhandler.New(authSvc, log, cfg.SecureCookies),
		Directory: dirhandler.New(directorySvc, log),
		IDCard:    idhandler.New(idcardSvc, log),
		Cert:      certhandler.New(certSvc, log),
		Vault:     vaulthandler.New(vaultSvc, saver, log),
		Household: househandler.New(householdSvc, log),
		Audit:     audithandler.New(auditSvc, log),
	}, authSvc, log, m, db)

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := auditSvc.Run(gCtx, auditPublisher)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting locality server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
