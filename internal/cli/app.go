package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/acuellar/cfdivault/internal/config"
	"github.com/acuellar/cfdivault/internal/logging"
	"github.com/acuellar/cfdivault/internal/models"
	"github.com/acuellar/cfdivault/internal/services"
	"github.com/acuellar/cfdivault/internal/store/local"
	"github.com/acuellar/cfdivault/internal/store/remote"

	_ "modernc.org/sqlite"
)

// Mode reflects the remote store's reachability as seen by the client.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the configuration, stores, and services behind the REPL.
type App struct {
	config *config.Config
	db     *sql.DB
	remote remote.Client
	auth   *services.AuthService
	sync   *services.SyncService
	sess   *models.Session
	Mode   Mode
	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := local.InitDatabase(ctx, c.LocalDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	store := local.NewSQLiteStore(db)
	remoteClient := remote.NewHTTPClient(c.RemoteBaseURL, c.RemoteAPIKey, c.RequestTimeout)

	syncSvc := services.NewSyncService(store, remoteClient, logger)
	authSvc := services.NewAuthService(syncSvc, store, db, remoteClient, logger)

	return &App{
		config: c,
		db:     db,
		remote: remoteClient,
		auth:   authSvc,
		sync:   syncSvc,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.auth.Bootstrap(ctx); err != nil {
		return err
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) isLoggedIn() bool {
	return !a.sess.Closed()
}

// StartOnlineStatusWatcher probes the remote store on every tick and keeps
// App.Mode in sync with the result. Runs until ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.remote.Probe(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
