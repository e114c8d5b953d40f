package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/cache"
	"github.com/example/task-tracker/modules/notification"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/modules/user"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	httpPort := getEnvInt("HTTP_PORT", 3000)
	dbPath := getEnv("DB_PATH", "tasks.db")
	dbDebug := getEnvBool("DB_DEBUG", false)
	redisAddr := getEnv("REDIS_ADDR", "")
	cachePrefix := getEnv("CACHE_PREFIX", "tasktracker:")
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)

	jwtConfig := auth.DefaultJWTConfig()
	jwtConfig.SecretKey = getEnv("JWT_SECRET_KEY", jwtConfig.SecretKey)
	jwtConfig.Issuer = getEnv("JWT_ISSUER", jwtConfig.Issuer)
	jwtConfig.AccessTokenDuration = getEnvDuration("ACCESS_TOKEN_TTL", jwtConfig.AccessTokenDuration)

	log.Println("=== Task Tracker ===")
	log.Printf("Database: %s", dbPath)
	log.Printf("HTTP Port: %d", httpPort)
	if redisAddr != "" {
		log.Printf("Redis: %s (prefix %s, ttl %s)", redisAddr, cachePrefix, cacheTTL)
	} else {
		log.Println("Redis: disabled")
	}
	if os.Getenv("JWT_SECRET_KEY") == "" {
		log.Println("Warning: JWT_SECRET_KEY not set, using the development secret")
	}

	// Create modules
	userModule := user.NewModule()
	authModule := auth.NewModule(jwtConfig)
	taskModule := task.NewModule(dbPath, dbDebug)
	notificationModule := notification.NewModule()
	apiModule := api.NewModule(httpPort)

	var cacheModule *cache.Module
	if redisAddr != "" {
		cacheModule = cache.NewModule(cache.Config{
			RedisAddr: redisAddr,
			Prefix:    cachePrefix,
			TTL:       cacheTTL,
		})
		taskModule.SetCache(cacheModule.Cache())
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order: independent modules first, then modules with dependencies
	app.Register(userModule)
	app.Register(authModule)
	if cacheModule != nil {
		app.Register(cacheModule)
	}
	app.Register(taskModule)
	app.Register(notificationModule) // depends on user, consumes task events
	app.Register(apiModule)          // depends on task, auth, user, notification

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(authModule, httpPort)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(authModule *auth.AuthModule, port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Demo users and bearer tokens:")
	for _, u := range user.DemoUsers {
		token, err := authModule.IssueAccessToken(u.ID, u.Email)
		if err != nil {
			log.Printf("  - %s: %s (token unavailable: %v)", u.ID, u.Name, err)
			continue
		}
		log.Printf("  - %s: %s (%s)", u.ID, u.Name, u.Email)
		log.Printf("    Authorization: Bearer %s", token)
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  GET    /api/tasks               - List own tasks (?assignedToMe=true&status=&scope=)")
	log.Println("  POST   /api/tasks               - Create a task")
	log.Println("  GET    /api/tasks/:id           - Get a task")
	log.Println("  PATCH  /api/tasks/:id           - Update a task (owner only)")
	log.Println("  DELETE /api/tasks/:id           - Delete a task (owner only)")
	log.Println("  GET    /api/users               - List users")
	log.Println("  GET    /api/notifications       - List your notifications")
	log.Println("  GET    /health                  - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
