// Command apiserver serves an OpenAPI document. Operations of the bundled
// sample document are backed by an in-memory inventory; any other document
// is served entirely from its examples and schemas.
//
//	apiserver --spec openapi.yaml --addr :8080
//
// Every flag has an APISERVER_ environment variable, e.g. APISERVER_API_SECRET.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/drblury/openapiserver/api"
	"github.com/drblury/openapiserver/info"
	"github.com/drblury/openapiserver/internal/config"
	"github.com/drblury/openapiserver/probe"
	"github.com/drblury/openapiserver/router"
	"github.com/drblury/openapiserver/server"
)

var version = "dev"

//go:embed openapi.yaml
var sampleSpec []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		slog.Error("apiserver failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	doc, sample, err := loadSpec(ctx, cfg.API.SpecFile)
	if err != nil {
		return err
	}

	apiCfg := api.Config{
		Version:      cfg.API.Version,
		Spec:         doc,
		Secret:       cfg.API.Secret,
		APIRoot:      cfg.API.Root,
		Strict:       cfg.API.Strict,
		ErrorDetails: cfg.API.ErrorDetails,
		Logger:       logger,
		Meta:         map[string]any{"version": version},
	}
	if sample {
		apiCfg.Controllers = newInventory(
			item{Name: "lamp", Price: 19.5},
			item{Name: "chair", Price: 49},
			item{Name: "rug"},
		).controllers()
	}
	if cfg.API.Secret == "" {
		logger.Warn("no api secret configured, secured operations will answer 401")
	}

	var readiness []probe.Func
	if cfg.Mongo.URI != "" {
		client, err := connectMongo(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		}()
		readiness = append(readiness, probe.NewMongoPingProbe(client, readpref.Primary()))
	}

	srv, err := server.New(server.Config{
		APIs:            []api.Config{apiCfg},
		Origin:          cfg.Server.Origin,
		StaticFolder:    cfg.Server.StaticFolder,
		Timeout:         cfg.Server.Timeout,
		Compression:     cfg.Server.Compression,
		DocsUI:          info.ParseUI(cfg.Server.DocsUI),
		ReadinessChecks: readiness,
		RateLimit: router.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RPS,
			Burst:             cfg.Server.RateLimit.Burst,
		},
		Build:           map[string]string{"version": version},
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// loadSpec loads path, or the bundled sample document when path is empty.
func loadSpec(ctx context.Context, path string) (*openapi3.T, bool, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	if path == "" {
		doc, err := loader.LoadFromData(sampleSpec)
		if err != nil {
			return nil, false, fmt.Errorf("load sample document: %w", err)
		}
		return doc, true, nil
	}

	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, false, nil
}

func connectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}
