package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rollcall/auth"
	"rollcall/db"
	"rollcall/live"
	"rollcall/middleware"
	"rollcall/ratelim"
	"rollcall/routes"
	"rollcall/signups"
	"rollcall/status"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := db.Connect(ctx, mongoURI)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	store := db.NewStore(client)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	overlay := status.NewOverlay(rdb)

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET is not set")
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminEmail == "" || adminHash == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set")
	}

	hub := live.NewHub()
	go hub.Run()

	mw := &middleware.Auth{Secret: jwtSecret}
	rateLimiter := ratelim.NewRateLimiter()

	authHandler := &auth.Handler{
		Secret:            jwtSecret,
		AdminEmail:        adminEmail,
		AdminPasswordHash: adminHash,
	}
	signupHandler := &signups.Handler{
		Store:    store,
		Overlay:  overlay,
		Hub:      hub,
		SheetURL: os.Getenv("SHEET_URL"),
	}

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddAuthRoutes(router, authHandler, mw, rateLimiter)
	routes.AddSignupRoutes(router, signupHandler, mw, rateLimiter)
	routes.AddLiveRoutes(router, hub)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      65 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		hub.Stop()
		if err := rdb.Close(); err != nil {
			log.Println("Redis close:", err)
		}
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Println("Mongo disconnect:", err)
		}
	})

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()

	if err := server.Shutdown(sctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly")
}
