package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/embedcache"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/embedder"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/fare"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/ferry"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/flightradar"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/penalty"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/railradar"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/reddit"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/tools"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/transport"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	// Transport flags
	httpAddr := flag.String("http", "", "Serve MCP over HTTP on this address instead of stdio (e.g. :8080)")
	rateLimit := flag.Int("rate-limit", 100, "HTTP requests per minute per IP (0 to disable)")

	// Dataset flags
	dataDir := flag.String("data-dir", envOr("DATA_DIR", "data"), "Directory holding the penalty, fare, and ferry datasets")

	// Embedder flags
	embeddingURL := flag.String("embedding-url", envOr("EMBEDDING_URL", "http://localhost:8081/v1"), "OpenAI-compatible embeddings API base URL")
	embeddingModel := flag.String("embedding-model", envOr("EMBEDDING_MODEL", "all-MiniLM-L6-v2"), "Embedding model name")
	embeddingKey := flag.String("embedding-api-key", os.Getenv("EMBEDDING_API_KEY"), "API key for the embeddings endpoint (optional)")

	// Redis flags
	redisHost := flag.String("redis-host", envOr("REDIS_HOST", "localhost"), "Redis host for the embedding warm-start cache")
	redisPort := flag.Int("redis-port", envIntOr("REDIS_PORT", 6379), "Redis port")
	redisDB := flag.Int("redis-db", envIntOr("REDIS_DB", 0), "Redis database number")
	noRedis := flag.Bool("no-redis", false, "Run without the Redis warm-start cache")

	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("mumbai-travel-assistant %s\n", version)
		return
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// The warm-start cache is optional: an unreachable Redis degrades
	// to recomputing embeddings at startup, never to a dead server.
	var cache penalty.EmbeddingCache
	if !*noRedis {
		client := redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", *redisHost, *redisPort),
			DB:   *redisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("Redis unreachable, continuing without warm-start cache: %v", err)
			client.Close()
		} else {
			cache = embedcache.New(client)
			defer client.Close()
		}
	}

	emb := embedder.NewOpenAI(*embeddingURL, *embeddingKey, *embeddingModel)
	store := penalty.NewStore(emb, cache, *dataDir, logger)

	fares, err := fare.NewService(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load fare tables: %v", err)
	}
	ferries, err := ferry.NewService(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load ferry timetable: %v", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mumbai-travel-assistant",
		Version: version,
	}, nil)

	// Register tools
	tools.Register(server, tools.Deps{
		Penalties: store,
		Fares:     fares,
		Ferries:   ferries,
		Rail:      railradar.NewClient(httpClient),
		Flights:   flightradar.NewClient(httpClient),
		Reddit:    reddit.NewClient(httpClient),
	})

	// Warm the embedding matrix in the background. The first penalty
	// search joins the same attempt if warmup is still running, and a
	// failure here is retried on demand.
	go func() {
		if err := store.EnsureReady(context.Background(), false); err != nil {
			log.Printf("Penalty embedding warmup failed, will retry on first search: %v", err)
		}
	}()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *httpAddr != "" {
		runHTTP(server, *httpAddr, *rateLimit, sigChan)
		return
	}

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	// Start server with stdio transport
	log.Println("Starting Mumbai travel assistant MCP server...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func runHTTP(server *mcp.Server, addr string, rateLimit int, sigChan chan os.Signal) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      transport.NewRouter(server, transport.Options{RateLimit: rateLimit}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		<-sigChan
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		close(done)
	}()

	log.Printf("Starting Mumbai travel assistant MCP server on %s", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	log.Println("Server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
