package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apiarylab/apiary-agent/api"
	"github.com/apiarylab/apiary-agent/bot"
	"github.com/apiarylab/apiary-agent/config"
	"github.com/apiarylab/apiary-agent/domain"
	"github.com/apiarylab/apiary-agent/embeddings"
	"github.com/apiarylab/apiary-agent/indexer"
	"github.com/apiarylab/apiary-agent/ingestion"
	"github.com/apiarylab/apiary-agent/llm"
	"github.com/apiarylab/apiary-agent/retrieval"
	"github.com/apiarylab/apiary-agent/session"
	"github.com/apiarylab/apiary-agent/smalltalk"
	"github.com/apiarylab/apiary-agent/vectorindex"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "index":
		indexCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "stats":
		statsCmd(logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

type pipeline struct {
	classifier *domain.Classifier
	store      vectorindex.SearchStore
	indexer    *indexer.Indexer
	bot        *bot.Bot
	sessions   *session.Store
}

func buildPipeline(ctx context.Context, cfg config.Config, logger *log.Logger) (*pipeline, error) {
	classifier := domain.NewClassifier()

	store, err := vectorindex.NewStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vector store setup: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedder setup: %w", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm setup: %w", err)
	}

	ingestor := ingestion.NewIngestor(classifier, cfg.ChunkSize, cfg.MinChunkChars, logger)
	ix := indexer.New(cfg.DataDir, ingestor, embedder, store, cfg.Embeddings.BatchSize, logger)

	var translator llm.Client
	if cfg.ExpandQueries {
		translator = llmClient
	}
	retriever := retrieval.NewRetriever(store, embedder, classifier, translator, cfg.TopK, logger)

	sessions := session.NewStore(cfg.MemorySize)
	b := bot.New(classifier, smalltalk.NewResponder(), retriever, sessions, llmClient, logger)

	return &pipeline{
		classifier: classifier,
		store:      store,
		indexer:    ix,
		bot:        b,
		sessions:   sessions,
	}, nil
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.ListenAddr, "listen address")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("pipeline setup: %v", err)
	}

	if !p.store.IsValid(ctx) {
		logger.Printf("no valid index found, building from %s", cfg.DataDir)
		if _, err := p.indexer.Rebuild(ctx); err != nil {
			if errors.Is(err, ingestion.ErrEmptyCorpus) {
				logger.Printf("corpus is empty; queries will report an unavailable index until documents are added")
			} else {
				logger.Fatalf("initial index build: %v", err)
			}
		}
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           api.New(p.bot, p.indexer, p.sessions, cfg.AdminToken, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func indexCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("index", flag.ExitOnError)
	dataDir := flags.String("dir", cfg.DataDir, "path to corpus directory")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse index flags: %v", err)
	}
	cfg.DataDir = *dataDir

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("pipeline setup: %v", err)
	}

	count, err := p.indexer.Rebuild(ctx)
	if err != nil {
		logger.Fatalf("rebuild failed: %v", err)
	}
	logger.Printf("indexed %d chunks", count)
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask")
	userID := flags.String("user", "cli", "user id for session memory")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	if *question == "" {
		logger.Fatal("ask requires --question")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("pipeline setup: %v", err)
	}

	answer, err := p.bot.Ask(ctx, *userID, *question)
	if err != nil {
		logger.Fatalf("ask failed: %v", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for idx, source := range answer.Sources {
			fmt.Printf("%d. %s\n", idx+1, source)
		}
	}
}

func statsCmd(logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("stats", flag.ExitOnError)
	baseURL := flags.String("url", "http://localhost:8080", "base URL of a running server")
	token := flags.String("token", os.Getenv("ADMIN_TOKEN"), "admin token")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse stats flags: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, *baseURL+"/v1/admin/stats", nil)
	if err != nil {
		logger.Fatalf("create stats request: %v", err)
	}
	if *token != "" {
		req.Header.Set("X-Admin-Token", *token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatalf("fetch stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Fatalf("stats request returned %s", resp.Status)
	}

	var stats struct {
		Users     int `json:"users"`
		Questions int `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		logger.Fatalf("decode stats: %v", err)
	}

	fmt.Printf("Users: %d\nQuestions: %d\n", stats.Users, stats.Questions)
}

func printUsage() {
	fmt.Println("Usage: apiary-agent <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the HTTP API (builds the index on first start)")
	fmt.Println("  index    Rebuild the vector index from the corpus directory")
	fmt.Println("  ask      Ask a single question from the command line")
	fmt.Println("  stats    Show usage statistics from a running server")
}
