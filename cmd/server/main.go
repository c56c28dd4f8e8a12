package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/insurguide/internal/api"
	"github.com/rohits-web03/insurguide/internal/api/handlers"
	"github.com/rohits-web03/insurguide/internal/api/services"
	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/logger"
	"github.com/rohits-web03/insurguide/internal/repositories"
	"github.com/rohits-web03/insurguide/internal/telemetry"
)

const (
	upstreamTimeout = 30 * time.Second
	probeTimeout    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.AppName, cfg.AppVersion)
	if err != nil {
		log.WithError(err).Warn("Tracing disabled")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.WithError(err).Warn("Flush traces")
		}
	}()

	db, err := repositories.ConnectDatabase(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.CloseDatabase(db); err != nil {
			log.WithError(err).Warn("Close database")
		}
	}()

	auth, err := services.NewAuthService(repositories.NewUserRepository(db), cfg.Auth)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: upstreamTimeout}

	var embedder repositories.Embedder
	if e := services.NewEmbedder(cfg.LLM, httpClient); e != nil {
		embedder = e
	} else {
		log.Info("OPENAI_API_KEY not set, vector writes and queries need explicit embeddings")
	}

	search, err := repositories.NewSearchGateway(cfg.ES, nil, log)
	if err != nil {
		log.WithError(err).Error("Elasticsearch client could not be created")
		search = repositories.Unavailable("elasticsearch", err)
	}
	vector, err := repositories.NewVectorGateway(cfg.Vector, embedder, httpClient, log)
	if err != nil {
		log.WithError(err).Error("Vector store client could not be created")
		vector = repositories.Unavailable("chroma", err)
	}
	search = repositories.WithBreaker(search, repositories.DefaultBreakerSettings(), log)
	vector = repositories.WithBreaker(vector, repositories.DefaultBreakerSettings(), log)

	probe(ctx, log, search, vector)

	chat := services.NewChatService(cfg.LLM, httpClient)
	if !chat.Enabled() {
		log.Info("Chat disabled: OPENAI_API_KEY not set, /api/chat answers 503")
	}

	h := &handlers.Handler{
		Auth:             auth,
		Chat:             chat,
		Search:           search,
		Vector:           vector,
		VectorCollection: cfg.Vector.Collection,
		AppName:          cfg.AppName,
		AppVersion:       cfg.AppVersion,
		Log:              log,
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(h, cfg),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: upstreamTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting %s server on port: %s", cfg.AppName, cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "could not listen on port %s", cfg.Port)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})
	return g.Wait()
}

// probe checks every gateway once so misconfiguration shows up in the startup
// log. Failures never stop the server.
func probe(ctx context.Context, log *logrus.Logger, gateways ...repositories.Gateway) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var g errgroup.Group
	for _, gw := range gateways {
		g.Go(func() error {
			if _, err := gw.Health(ctx); err != nil {
				log.WithError(err).Warnf("%s is not reachable", gw.Name())
				return nil
			}
			log.Infof("%s is reachable", gw.Name())
			return nil
		})
	}
	_ = g.Wait()
}
