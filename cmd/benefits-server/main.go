// cmd/benefits-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"benefits-assistant/internal/api"
	"benefits-assistant/internal/common/bls"
	"benefits-assistant/internal/common/cache"
	"benefits-assistant/internal/common/camunda"
	"benefits-assistant/internal/common/config"
	"benefits-assistant/internal/common/database"
	commonhttp "benefits-assistant/internal/common/http"
	"benefits-assistant/internal/common/legiscan"
	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/common/logger"
	"benefits-assistant/internal/common/observability"
	"benefits-assistant/internal/common/tokenizer"
	"benefits-assistant/pkg/registry"

	bc "benefits-assistant/internal/workers/ai-conversation/benefits-chat"
	ci "benefits-assistant/internal/workers/ai-conversation/classify-intent"
	cr "benefits-assistant/internal/workers/ai-conversation/compose-response"
	ews "benefits-assistant/internal/workers/ai-conversation/enrich-web-search"
	ge "benefits-assistant/internal/workers/ai-conversation/gather-evidence"
	gc "benefits-assistant/internal/workers/ai-conversation/generate-chart"
	na "benefits-assistant/internal/workers/ai-conversation/notepad-assist"
	se "benefits-assistant/internal/workers/ai-conversation/summarize-evidence"
	ss "benefits-assistant/internal/workers/ai-conversation/summarize-search"
	br "benefits-assistant/internal/workers/infrastructure/build-response"
	so "benefits-assistant/internal/workers/infrastructure/save-onboarding"
	st "benefits-assistant/internal/workers/infrastructure/select-template"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting benefits assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	readiness := []api.ReadinessCheck{
		{Name: "postgres", Check: pg.Ping},
		{Name: "elasticsearch", Check: esClient.Ping},
	}

	// --- Init Redis with retry (legislation cache) ---
	var redisClient *database.RedisClient
	if cfg.Pipeline.LegislationCache.Backend == "redis" {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		readiness = append(readiness, api.ReadinessCheck{Name: "redis", Check: redisClient.Ping})
		zapLog.Info("Redis connected successfully")
	}

	// --- Text generation ---
	apis := cfg.APIs
	var generator llm.Generator = llm.NewOpenAIGenerator(apis.OpenAI.APIKey, apis.OpenAI.BaseURL, apis.OpenAI.Model)
	if apis.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiGenerator(ctx, apis.Gemini.APIKey, apis.Gemini.Model)
		if err != nil {
			zapLog.Warn("gemini fallback disabled", zap.Error(err))
		} else {
			defer gemini.Close()
			generator = llm.NewFallbackGenerator(generator, gemini, log)
		}
	}
	embedder := llm.NewOpenAIEmbedder(apis.OpenAI.APIKey, apis.OpenAI.BaseURL, apis.OpenAI.EmbeddingModel)

	// --- Evidence adapters ---
	documents := database.NewDocumentStore(pg.DB)
	es := cfg.Database.Elasticsearch
	knowledge := database.NewKnowledgeIndex(esClient.Client, es.KnowledgeIndex, es.VectorField, es.TextField)

	webSearch := ews.NewHandler(&ews.Config{
		SearchAPIBaseURL: apis.WebSearch.BaseURL,
		SearchAPIKey:     apis.WebSearch.APIKey,
		SearchEngineID:   apis.WebSearch.EngineID,
		Timeout:          config.GetDuration(apis.WebSearch.Timeout),
		MaxResults:       5,
		MinRelevance:     0.5,
		MaxQueryLength:   256,
	}, commonhttp.NewClient(config.GetDuration(apis.WebSearch.Timeout)).WithRetries(1), &enrichWebSearchLoggerAdapter{log})

	legislation := legiscan.NewClient(
		commonhttp.NewClient(config.GetDuration(apis.LegiScan.Timeout)).WithRetries(2),
		apis.LegiScan.BaseURL, apis.LegiScan.APIKey)
	labor := bls.NewClient(
		commonhttp.NewClient(config.GetDuration(apis.BLS.Timeout)).WithRetries(2),
		apis.BLS.BaseURL, apis.BLS.APIKey, apis.BLS.SeriesID)

	pipeline := cfg.Pipeline
	cacheTTL := config.GetDuration(pipeline.LegislationCache.TTL)
	var legislationCache cache.LegislationCache = cache.NewMemoryLegislationCache(cacheTTL)
	if redisClient != nil {
		legislationCache = cache.NewRedisLegislationCache(redisClient.Client, cacheTTL, log)
	}

	// --- Pipeline stages ---
	classifyCfg := ci.LoadConfig()
	classifyCfg.HistoryTurns = pipeline.HistoryTurns
	classifyCfg.MaxSearchTerms = pipeline.MaxSearchTerms
	classifier := ci.NewHandler(classifyCfg, generator, &classifyLoggerAdapter{log})

	gatherCfg := ge.LoadConfig()
	gatherCfg.AdapterTimeout = config.GetDuration(pipeline.AdapterTimeout)
	gatherCfg.RAGTopK = pipeline.RAGTopK
	gatherCfg.MaxBillsPerJurisdiction = pipeline.MaxBillsPerJurisdiction
	gatherCfg.FederalJurisdiction = pipeline.FederalJurisdiction
	gatherCfg.CacheScope = pipeline.LegislationCache.Scope
	gatherCfg.CacheTTL = cacheTTL
	gatherer := ge.NewHandler(gatherCfg, ge.Sources{
		Documents:   documents,
		Embedder:    embedder,
		Knowledge:   knowledge,
		Web:         webSearch,
		Legislation: legislation,
		Labor:       labor,
		Planner:     generator,
		Cache:       legislationCache,
	}, &gatherLoggerAdapter{log})

	composeCfg := cr.LoadConfig()
	composeCfg.EvidenceTokenBudget = pipeline.EvidenceTokenBudget
	composer := cr.NewHandler(composeCfg, generator, tokenizer.New(pipeline.TokenizerModel, log), &composeLoggerAdapter{log})

	summarizer := se.NewHandler(se.LoadConfig(), generator, &summarizeLoggerAdapter{log})

	chatCfg := bc.LoadConfig()
	chatCfg.Timeout = config.GetDuration(pipeline.RequestTimeout)
	chat := bc.NewHandler(chatCfg, bc.Stages{
		Store:      documents,
		Classifier: classifier,
		Gatherer:   gatherer,
		Composer:   composer,
		Summarizer: summarizer,
	}, generator, &chatLoggerAdapter{log})

	charts := gc.NewHandler(gc.LoadConfig(), generator, documents, webSearch, &chartLoggerAdapter{log})

	researchCfg := ss.LoadConfig()
	researchCfg.AdapterTimeout = config.GetDuration(pipeline.AdapterTimeout)
	research := ss.NewHandler(researchCfg, generator, ss.Sources{
		Web:       webSearch,
		Labor:     labor,
		Documents: documents,
	}, &researchLoggerAdapter{log})

	notepad := na.NewHandler(na.LoadConfig(), generator, &notepadLoggerAdapter{log})
	onboarding := so.NewHandler(so.LoadConfig(), documents, log)

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry failed to load", zap.Error(err))
	}

	// --- Optional Zeebe job workers ---
	var zeebe *camunda.Client
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		readiness = append(readiness, api.ReadinessCheck{Name: "zeebe", Check: zeebe.HealthCheck})
		zapLog.Info("Zeebe client connected successfully")

		templates := st.NewHandler(st.LoadConfig(), log)
		responses := br.NewHandler(&br.Config{
			Timeout:      br.LoadConfig().Timeout,
			OutputSchema: outputSchema(reg, bc.TaskType),
		}, log)

		jobHandlers := []struct {
			taskType string
			handle   worker.JobHandler
		}{
			{bc.TaskType, chat.Handle},
			{ci.TaskType, classifier.Handle},
			{ge.TaskType, gatherer.Handle},
			{ews.TaskType, webSearch.Handle},
			{st.TaskType, templates.Handle},
			{cr.TaskType, composer.Handle},
			{br.TaskType, responses.Handle},
			{se.TaskType, summarizer.Handle},
			{gc.TaskType, charts.Handle},
			{ss.TaskType, research.Handle},
			{na.TaskType, notepad.Handle},
			{so.TaskType, onboarding.Handle},
		}
		for _, jh := range jobHandlers {
			if !config.IsWorkerEnabled(cfg, jh.taskType) {
				zapLog.Info("worker disabled", zap.String("taskType", jh.taskType))
				continue
			}
			wcfg := config.GetWorkerConfig(cfg, jh.taskType)
			workers = append(workers, camunda.NewWorker(zeebe.Raw(), jh.taskType, camunda.WorkerOptions{
				MaxJobsActive: wcfg.MaxJobsActive,
				Timeout:       config.GetDuration(wcfg.Timeout),
			}, jh.handle, zapLog))
		}
		zapLog.Info("Zeebe workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP server ---
	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.New(&api.Config{
			Logger:         log,
			Chat:           chat,
			Charts:         charts,
			Research:       research,
			Notepad:        notepad,
			Onboarding:     onboarding,
			Registry:       reg,
			Observability:  obs,
			MetricsHandler: promhttp.Handler(),
			Readiness:      readiness,
			RequestTimeout: config.GetDuration(pipeline.RequestTimeout),
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Benefits assistant stopped")
}

func outputSchema(reg *registry.ActivityRegistry, taskType string) map[string]interface{} {
	if a, ok := reg.Get(taskType); ok {
		return a.OutputSchema
	}
	return nil
}
