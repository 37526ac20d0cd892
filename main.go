package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diggingboard/diggingboard/handlers"
	"github.com/diggingboard/diggingboard/internal/accounts"
	"github.com/diggingboard/diggingboard/internal/auth"
	"github.com/diggingboard/diggingboard/internal/board"
	"github.com/diggingboard/diggingboard/internal/config"
	"github.com/diggingboard/diggingboard/internal/database"
	"github.com/diggingboard/diggingboard/internal/sessions"
	"github.com/diggingboard/diggingboard/internal/spotify"
	"github.com/diggingboard/diggingboard/internal/storage"
	"github.com/diggingboard/diggingboard/internal/votes"
	"github.com/diggingboard/diggingboard/pkg/logger"
	"github.com/diggingboard/diggingboard/pkg/metrics"
	"github.com/diggingboard/diggingboard/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v spotify=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Spotify.ClientID != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Connect to Redis early so the rate limiter and blacklist can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	blacklist := sessions.NewBlacklist(redisClient)

	// Optional global rate limiter (per-account when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Prefer Redis-based sessions when available; Mongo is the fallback store
	var sessionsSvc *sessions.Service
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("using Redis for session storage")
	}

	// MongoDB-backed services, with retry/backoff to tolerate startup races
	var accountsSvc *accounts.Service
	var boardSvc *board.Service
	var votesSvc *votes.Service
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)

			accountsSvc = accounts.NewService(accounts.NewMongoAccountRepository(db.Collection("accounts")))
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}

			store := board.NewMongoStore(db)
			boardSvc = board.NewService(store, store, store)
			votesSvc = votes.NewService(votes.NewMongoRepository(db.Collection("votes")), store)
		}
	}

	// Catalog client: search always works with client credentials; playlist
	// appends additionally need a refresh token + playlist id
	var catalog *spotify.Client
	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		catalog = spotify.NewClient(cfg.Spotify)
		if boardSvc != nil && cfg.Spotify.PlaylistID != "" {
			boardSvc.SetPlaylistAppender(catalog)
		}
	}

	// Optional MinIO-backed image store
	var imageStore *storage.ImageStore
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		imageStore, err = storage.NewImageStore(mcfg)
		if err != nil {
			logger.Warnf("image store unavailable: %v", err)
		}
	}

	verifier := auth.NewVerifier(cfg, blacklist)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the stores behind the core API are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["accounts"] = accountsSvc != nil
		deps["sessions"] = sessionsSvc != nil
		deps["boards"] = boardSvc != nil
		if accountsSvc == nil || sessionsSvc == nil || boardSvc == nil {
			ready = false
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		deps["catalog"] = catalog != nil
		deps["images"] = imageStore != nil

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(verifier))

	if accountsSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, accountsSvc, sessionsSvc, blacklist).Register(api)

		api.GET("/me", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
			a, err := accountsSvc.GetByID(c.Request.Context(), middleware.SubjectFromContext(c))
			if err != nil || a == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"account": a})
		})
	} else {
		logger.Warnf("auth handlers not registered because account/session services are unavailable")
	}

	if boardSvc != nil {
		handlers.NewContentHandler(boardSvc).Register(api)
		handlers.NewBoardHandler(boardSvc, votesSvc).Register(api, middleware.AuthMiddleware(verifier))
	} else {
		logger.Warnf("board handlers not registered because the content store is unavailable")
	}

	if catalog != nil {
		handlers.NewTracksHandler(catalog).Register(api)
	}
	if imageStore != nil {
		handlers.NewImagesHandler(imageStore).Register(api)
	}

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting diggingboard on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
