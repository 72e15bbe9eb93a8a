package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/client"
	"github.com/dmitrijs2005/onboarding/internal/client/config"
	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/client/services"
	"github.com/dmitrijs2005/onboarding/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single reachability probe.
const pingTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// formsAPI is the part of client.FormsService the commands use.
type formsAPI interface {
	List(ctx context.Context, f models.ListFilter) (*models.Page[models.Form], error)
	Create(ctx context.Context, f *models.Form) (*models.Form, error)
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) (*models.Form, error)
	Archive(ctx context.Context, id string) (*models.Form, error)
	Duplicate(ctx context.Context, id string) (*models.Form, error)
	ListPublic(ctx context.Context, f models.ListFilter) (*models.Page[models.Form], error)
	GetPublic(ctx context.Context, id string) (*models.Form, error)
}

// submissionsAPI is the part of client.SubmissionsService the commands use.
type submissionsAPI interface {
	Create(ctx context.Context, n models.NewSubmission) (*models.Submission, error)
	ListMine(ctx context.Context, f models.ListFilter) (*models.Page[models.Submission], error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	ListAll(ctx context.Context, f models.ListFilter) (*models.Page[models.Submission], error)
	GetAdmin(ctx context.Context, id string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id string, upd models.StatusUpdate) (*models.Submission, error)
	Stats(ctx context.Context) (*models.SubmissionStats, error)
}

type App struct {
	config      *config.Config
	session     services.SessionStore
	forms       formsAPI
	submissions submissionsAPI
	ping        pinger
	store       metadata.Repository
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	closeFn     func() error

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens local storage, builds the API client and restores the
// session. Invalidations raised by the client are forwarded to the session
// store and announced on stdout.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, closeFn, err := OpenStorage(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening storage", "backend", c.StorageBackend, "err", err)
		return nil, err
	}

	a := &App{
		config:  c,
		store:   store,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closeFn: closeFn,
	}

	opts := []client.Option{
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
		client.WithLoginPath(c.LoginPath),
		client.WithSessionInvalidated(a.sessionInvalidated),
	}
	if c.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(c.RateLimit, 1))
	}

	api, err := client.New(c.APIURL, store, opts...)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	a.forms = api.Forms
	a.submissions = api.Submissions
	a.ping = api
	a.session = services.NewSessionStore(ctx, api.Auth, store, services.NewWriterNotifier(os.Stdout), log)

	return a, nil
}

// sessionInvalidated runs once per failed refresh, possibly on a request
// goroutine.
func (a *App) sessionInvalidated(ctx context.Context, loginPath string) {
	if a.session != nil {
		a.session.Invalidate(ctx)
	}
	fmt.Fprintf(a.out, "Session expired. Please log in again (%s).\n", loginPath)
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

// Run verifies the stored session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn != nil {
			if err := a.closeFn(); err != nil {
				a.log.Warn(ctx, "error closing storage", "err", err)
			}
		}
	}()

	a.session.Initialize(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "Welcome to the onboarding CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated
}

func (a *App) isAdmin() bool {
	s := a.session.State()
	return s.IsAuthenticated && s.User != nil && s.User.IsAdmin()
}

func (a *App) getStatus() string {
	s := ""
	if st := a.session.State(); st.User != nil {
		s = fmt.Sprintf("%s %s ", st.User.Username, st.User.Role)
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.ping.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
