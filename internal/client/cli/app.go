package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/camkeeper/internal/client/cameras"
	"github.com/dmitrijs2005/camkeeper/internal/client/cognito"
	"github.com/dmitrijs2005/camkeeper/internal/client/config"
	"github.com/dmitrijs2005/camkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/dmitrijs2005/camkeeper/internal/client/pipeline"
	"github.com/dmitrijs2005/camkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/camkeeper/internal/client/services"
	"github.com/dmitrijs2005/camkeeper/internal/client/tokenstore"
	"github.com/dmitrijs2005/camkeeper/internal/dbx"
	"github.com/dmitrijs2005/camkeeper/internal/logging"
	"github.com/dmitrijs2005/camkeeper/internal/netx"
)

// Analyzer is implemented by pipeline.Client.
type Analyzer interface {
	Analyze(ctx context.Context, rtspURL string, mode models.AnalysisMode, captureFrame bool) (*models.AnalysisResult, error)
}

// CameraService is implemented by cameras.Service.
type CameraService interface {
	List(ctx context.Context) ([]models.Camera, bool, error)
	Get(ctx context.Context, id string) (*models.Camera, error)
	Create(ctx context.Context, c models.Camera) (*models.Camera, error)
	Update(ctx context.Context, c models.Camera) (*models.Camera, error)
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context)
}

type App struct {
	auth     services.AuthService
	flow     *Flow
	analyzer Analyzer
	cameras  CameraService
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer
	db     *sql.DB
	prefs  metadata.Repository

	mu       sync.Mutex
	userName string
}

// NewApp opens the local database and wires the identity provider, the
// session service and the data API clients from c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := dbx.Open(ctx, c.DatabasePath, migrations.Migrations)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	gw, err := cognito.New(ctx, cognito.Config{
		Region:       c.Region,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     c.CognitoEndpoint,
		Timeout:      c.AuthTimeout,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := services.NewSessionService(gw, tokenstore.NewSQLiteStore(db, logger), logger)

	opts := netx.Options{
		Timeout:        c.APITimeout,
		Retries:        c.APIRetries,
		RetryBackoff:   c.APIRetryBackoff,
		OnUnauthorized: auth.HandleUnauthorized,
	}
	pipe := pipeline.NewClient(netx.NewClient(c.PipelineURL, auth.AccessToken, opts, logger))
	cams := cameras.NewService(netx.NewClient(c.CamerasURL, auth.AccessToken, opts, logger), db, logger)

	a := newApp(auth, pipe, cams, bufio.NewReader(os.Stdin), os.Stdout, logger)
	a.db = db
	a.prefs = metadata.NewSQLiteRepository(db)
	return a, nil
}

func newApp(auth services.AuthService, analyzer Analyzer, cams CameraService, reader *bufio.Reader, out io.Writer, logger logging.Logger) *App {
	a := &App{
		auth:     auth,
		flow:     NewFlow(auth),
		analyzer: analyzer,
		cameras:  cams,
		logger:   logger,
		reader:   reader,
		out:      out,
	}
	auth.Subscribe(a.onSessionChange)
	return a
}

// onSessionChange tracks the signed-in user and drops the camera cache as
// soon as no one is signed in.
func (a *App) onSessionChange(state services.State, user *models.User) {
	a.mu.Lock()
	if state == services.StateAuthenticated && user != nil {
		a.userName = user.Email
		a.mu.Unlock()
		return
	}
	a.userName = ""
	a.mu.Unlock()

	a.cameras.Purge(context.Background())
}

// Run restores the stored session, then serves the REPL until exit.
func (a *App) Run(ctx context.Context) {
	if a.db != nil {
		defer a.db.Close()
	}
	if a.auth.Start(ctx) == services.StateAuthenticated {
		printlnFn("Welcome back,", a.currentUserName()+".")
	}
	a.restoreLastEmail(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.State() == services.StateAuthenticated
}

func (a *App) currentUserName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}
