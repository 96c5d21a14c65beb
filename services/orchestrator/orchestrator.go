// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator provides the core orchestrator service for Lorekeep.
//
// This package contains the main Orchestrator type that coordinates all
// components of the service: HTTP routing, source adapters, LLM clients,
// the spoiler redactor, and observability infrastructure.
//
// # Usage
//
//	cfg := orchestrator.Config{Port: 12410}
//	svc, err := orchestrator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Run()
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/llm"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/observability"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/routes"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/services"
	"github.com/LorekeepAI/Lorekeep/services/router"
	"github.com/LorekeepAI/Lorekeep/services/sources"
	"github.com/LorekeepAI/Lorekeep/services/spoiler"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the orchestrator service.
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers must
	// not modify routes after construction.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds orchestrator configuration options. All fields are
// optional; New() applies defaults for zero values.
type Config struct {
	// Port is the HTTP server port. Default: 12410
	Port int

	// LLMBackend specifies the model provider.
	// Valid values: "openai", "ollama", "none"
	// Default: "openai"
	LLMBackend string

	// SpoilerPolicy is the server default redaction level.
	// Valid values: "minimal", "medium", "full". Default: "medium"
	SpoilerPolicy string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "lorekeep-otel-collector:4317"
	OTelEndpoint string

	// EnableMetrics enables the Prometheus /metrics endpoint.
	// Default: true
	EnableMetrics bool

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// CachePath is the BadgerDB directory for the source result cache.
	// Empty disables caching.
	CachePath string

	// CacheTTL bounds how long cached source results are served.
	// Default: 6 hours.
	CacheTTL time.Duration

	// SourceTimeout bounds each adapter call. Default: 10 seconds.
	SourceTimeout time.Duration

	// IGDBClientID and IGDBAccessToken are Twitch credentials for the
	// IGDB metadata source. Empty disables the IGDB adapter.
	IGDBClientID    string
	IGDBAccessToken string

	// APIToken protects the /v1 API group with bearer authentication.
	// Empty leaves the API open, appropriate for local deployments.
	APIToken string
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use. All fields are read-only
// after New() returns.
type service struct {
	config        Config
	router        *gin.Engine
	pipeline      *services.Pipeline
	cache         *sources.Cache
	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new orchestrator Service with the given configuration.
//
// Initialization order:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing
//  3. Initializes Prometheus metrics
//  4. Opens the source result cache (optional)
//  5. Builds the source adapters and topic router
//  6. Creates the LLM client for narration (optional)
//  7. Compiles the spoiler pattern engine
//  8. Sets up HTTP routes
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	var metrics *observability.PipelineMetrics
	if s.config.EnableMetrics {
		metrics = observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics for the ask pipeline")
	}

	level, err := answer.ParsePolicyLevel(s.config.SpoilerPolicy)
	if err != nil {
		s.cleanup()
		return nil, err
	}

	topicRouter, err := s.buildRouter()
	if err != nil {
		s.cleanup()
		return nil, err
	}

	narrator := &llm.Narrator{}
	if client, err := s.initLLMClient(); err != nil {
		slog.Warn("LLM client unavailable, answers will carry source data only", "error", err)
	} else {
		narrator.Client = client
	}

	engine, err := spoiler.NewEngine()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to compile spoiler patterns: %w", err)
	}

	s.pipeline = services.NewPipeline(topicRouter, narrator, spoiler.NewRedactor(engine),
		metrics, level)

	s.initRouter()
	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error. Cleanup
// is automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting orchestrator server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12410
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "openai"
	}
	if cfg.SpoilerPolicy == "" {
		cfg.SpoilerPolicy = "medium"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "lorekeep-otel-collector:4317"
	}
	cfg.EnableMetrics = true
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 6 * time.Hour
	}
	if cfg.SourceTimeout == 0 {
		cfg.SourceTimeout = 10 * time.Second
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing over an
// insecure gRPC connection, appropriate for internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("lorekeep-orchestrator")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// buildRouter constructs the source adapters and registers them with the
// topic router. Each adapter is rate limited; a cache wraps them when
// CachePath is set.
func (s *service) buildRouter() (*router.Router, error) {
	if s.config.CachePath != "" {
		cache, err := sources.OpenCache(sources.CacheConfig{
			Path: s.config.CachePath,
			TTL:  s.config.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open the source cache: %w", err)
		}
		s.cache = cache
	}

	wiki := s.wrap(sources.NewWikiAdapter(nil), rate.Limit(2), 4)
	hltb := s.wrap(sources.NewHLTBAdapter(nil), rate.Limit(1), 2)

	rt := router.New(s.config.SourceTimeout)
	rt.Register(router.CategoryPlot, wiki)
	rt.Register(router.CategoryLore, wiki)
	rt.Register(router.CategoryTips, wiki)
	rt.Register(router.CategoryPlaytime, hltb)
	rt.Register(router.CategoryMetadata, wiki)

	if s.config.IGDBClientID != "" && s.config.IGDBAccessToken != "" {
		igdb := s.wrap(sources.NewIGDBAdapter(s.config.IGDBClientID, s.config.IGDBAccessToken, nil),
			rate.Limit(4), 8)
		rt.Register(router.CategoryMetadata, igdb)
	} else {
		slog.Info("IGDB credentials not configured, metadata falls back to the wiki source")
	}

	return rt, nil
}

// wrap applies the rate limiter and, when configured, the cache.
func (s *service) wrap(a sources.Adapter, r rate.Limit, burst int) sources.Adapter {
	wrapped := sources.Adapter(sources.WithRateLimit(a, r, burst))
	if s.cache != nil {
		wrapped = sources.WithCache(wrapped, s.cache)
	}
	return wrapped
}

// initLLMClient creates the narration backend. "none" disables narration
// entirely, leaving answers grounded in source data alone.
func (s *service) initLLMClient() (llm.LLMClient, error) {
	switch s.config.LLMBackend {
	case "none":
		return nil, fmt.Errorf("narration disabled by configuration")
	case "openai":
		slog.Info("Using OpenAI LLM backend")
		return llm.NewOpenAIClient()
	case "ollama":
		slog.Info("Using Ollama LLM backend")
		return llm.NewOllamaClient()
	default:
		slog.Warn("Unknown LLM backend, defaulting to openai", "backend", s.config.LLMBackend)
		return llm.NewOpenAIClient()
	}
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("lorekeep-orchestrator"))

	routes.SetupRoutes(s.router, s.pipeline, s.config.APIToken, s.config.EnableMetrics)
}

// cleanup releases resources held by the service.
func (s *service) cleanup() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Warn("Source cache close error", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
