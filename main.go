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

	"entrada/access"
	"entrada/admin"
	"entrada/db"
	"entrada/globals"
	"entrada/mailer"
	"entrada/phonepe"
	"entrada/ratelim"
	"entrada/register"
	"entrada/routes"
	"entrada/scan"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Printf("Index creation failed (continuing): %v", err)
	}

	mail := mailer.NewMailer(
		globals.EnvOr("SMTP_HOST", "smtp.gmail.com"),
		globals.EnvOr("SMTP_PORT", "587"),
		os.Getenv("SMTP_FROM"),
		os.Getenv("SMTP_PASS"),
	)

	hub := scan.NewHub()
	go hub.Run()
	go scan.StartFeedWorker(ctx, hub)

	sweeper := access.NewSweeper(24 * time.Hour)
	sweeper.Start(ctx)

	rateLimiter := ratelim.NewRateLimiter()

	deps := routes.Deps{
		Admin:  admin.NewHandler(mail),
		Reg:    register.NewHandler(mail),
		Access: access.NewHandler(mail),
		Pay:    phonepe.NewBridge(phonepe.ConfigFromEnv(), mail),
		Hub:    hub,
	}

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, rateLimiter, deps)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-VERIFY"},
		AllowCredentials: true,
	})

	handler := securityHeaders(loggingMiddleware(c.Handler(router)))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	cancel()
	sweeper.Stop()
	hub.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	if err := db.Client.Disconnect(shutdownCtx); err != nil {
		log.Printf("Mongo disconnect error: %v", err)
	}
	log.Println("Server stopped")
}
