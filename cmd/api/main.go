package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelierhq.io/internal/audit"
	"atelierhq.io/internal/auth"
	"atelierhq.io/internal/authz"
	"atelierhq.io/internal/httpapi"
	"atelierhq.io/internal/ids"
	"atelierhq.io/internal/obs"
	"atelierhq.io/internal/portal"
	"atelierhq.io/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	registry, err := httpapi.BuildPolicies()
	if err != nil {
		log.Fatalf("build policies: %v", err)
	}

	// Store selection: postgres when a DSN is configured, in-process
	// memory otherwise (local runs, smoke tests).
	var (
		db          *sql.DB
		auditStore  audit.Store
		portalStore portal.Store
	)
	if dsn := os.Getenv("ATELIER_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		db = pgStore.DB()
		auditStore = pgStore
		portalStore = pgStore

		if err := seedStaffUser(pgStore); err != nil {
			log.Fatalf("seed staff user: %v", err)
		}
	} else {
		auditStore = audit.NewMemory()
		portalStore = portal.NewInMemory()
	}

	stream := audit.NewStream()
	recorderOpts := []audit.RecorderOption{audit.WithStream(stream)}
	if os.Getenv("ATELIER_AUDIT_ASYNC") == "1" {
		recorderOpts = append(recorderOpts, audit.WithAsync(512))
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)
	defer recorder.Close()

	engine, err := authz.NewEngine(registry, recorder)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	svc, err := portal.NewService(portalStore)
	if err != nil {
		log.Fatalf("build portal service: %v", err)
	}

	api := httpapi.New(httpapi.Config{
		Engine:     engine,
		AuditStore: auditStore,
		Stream:     stream,
		Portal:     svc,
		Ready:      httpapi.ReadyProbe{DB: db},
		Version:    version,
	})

	addr := os.Getenv("ATELIER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting atelier-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}

// seedStaffUser provisions one platform-staff account from
// ATELIER_SEED_STAFF ("email:password"). Idempotent; skipped when unset.
func seedStaffUser(store *pg.Store) error {
	raw := os.Getenv("ATELIER_SEED_STAFF")
	if raw == "" {
		return nil
	}
	email, password, ok := splitPair(raw)
	if !ok {
		return errors.New("ATELIER_SEED_STAFF must be email:password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := store.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, portal.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return store.CreateUser(ctx, &portal.User{
		ID:           ids.New(),
		Email:        email,
		Role:         string(authz.RolePlatformStaff),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}

func splitPair(raw string) (string, string, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == ':' {
			return raw[:i], raw[i+1:], raw[:i] != "" && raw[i+1:] != ""
		}
	}
	return "", "", false
}
