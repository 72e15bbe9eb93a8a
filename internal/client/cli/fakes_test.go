package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/onboarding/internal/client/config"
	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/client/services"
	"github.com/dmitrijs2005/onboarding/internal/logging"
)

// ------------ helpers ------------

// readerFromLines feeds each line, newline-terminated, to a prompt reader.
func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 {
		return bufio.NewReader(strings.NewReader(""))
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

var (
	alice = &models.User{ID: "1", Username: "alice", Email: "alice@example.org", FirstName: "Alice", LastName: "Smith", Role: models.RoleClient}
	admin = &models.User{ID: "2", Username: "root", Email: "root@example.org", Role: models.RoleAdmin}
)

func signedIn(u *models.User) services.State {
	return services.State{User: u, IsAuthenticated: u != nil, IsInitialized: true}
}

type testApp struct {
	*App
	out     *bytes.Buffer
	session *fakeSession
	forms   *fakeForms
	subs    *fakeSubmissions
}

func newTestApp(state services.State, r *bufio.Reader) *testApp {
	out := &bytes.Buffer{}
	fs := &fakeSession{state: state}
	ff := &fakeForms{}
	fsub := &fakeSubmissions{}
	if r == nil {
		r = readerFromLines()
	}
	app := &App{
		config:      &config.Config{LoginPath: "/auth/login"},
		session:     fs,
		forms:       ff,
		submissions: fsub,
		store:       metadata.NewMemoryRepository(),
		log:         logging.Nop(),
		reader:      r,
		out:         out,
	}
	return &testApp{App: app, out: out, session: fs, forms: ff, subs: fsub}
}

// ------------ session ------------

type fakeSession struct {
	mu    sync.Mutex
	state services.State

	loginUser string
	loginPass string
	loginErr  error

	registered *models.RegisterRequest
	regErr     error

	logoutCalled bool
	invalidated  bool
	initialized  bool

	fetchCalls int
	fetchErr   error
}

func (f *fakeSession) Initialize(context.Context) { f.initialized = true }
func (f *fakeSession) Login(_ context.Context, u, p string) error {
	f.loginUser, f.loginPass = u, p
	if f.loginErr == nil {
		f.state = signedIn(&models.User{Username: u, Role: models.RoleClient})
	}
	return f.loginErr
}
func (f *fakeSession) Register(_ context.Context, req models.RegisterRequest) error {
	f.registered = &req
	return f.regErr
}
func (f *fakeSession) Logout(context.Context) {
	f.logoutCalled = true
	f.state = services.State{IsInitialized: true}
}
func (f *fakeSession) FetchUser(context.Context) error {
	f.fetchCalls++
	return f.fetchErr
}
func (f *fakeSession) Invalidate(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = true
	f.state = services.State{IsInitialized: true}
}
func (f *fakeSession) State() services.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
func (f *fakeSession) Subscribe(func(services.State)) func() { return func() {} }

// ------------ forms ------------

type fakeForms struct {
	listFilter models.ListFilter
	listOut    *models.Page[models.Form]
	listErr    error

	created   *models.Form
	createErr error

	action   string
	actionID string

	getID  string
	getOut *models.Form
	getErr error
}

func (f *fakeForms) List(_ context.Context, lf models.ListFilter) (*models.Page[models.Form], error) {
	f.listFilter = lf
	return f.page(), f.listErr
}
func (f *fakeForms) Create(_ context.Context, in *models.Form) (*models.Form, error) {
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *in
	out.ID = "new-1"
	return &out, nil
}
func (f *fakeForms) Delete(_ context.Context, id string) error {
	f.action, f.actionID = "delete", id
	return nil
}
func (f *fakeForms) Activate(_ context.Context, id string) (*models.Form, error) {
	f.action, f.actionID = "activate", id
	return &models.Form{ID: id, Title: "Vendor", Status: models.FormActive}, nil
}
func (f *fakeForms) Archive(_ context.Context, id string) (*models.Form, error) {
	f.action, f.actionID = "archive", id
	return &models.Form{ID: id, Title: "Vendor", Status: models.FormArchived}, nil
}
func (f *fakeForms) Duplicate(_ context.Context, id string) (*models.Form, error) {
	f.action, f.actionID = "duplicate", id
	return &models.Form{ID: id + "-copy", Title: "Vendor (Copy)", Status: models.FormDraft}, nil
}
func (f *fakeForms) ListPublic(_ context.Context, lf models.ListFilter) (*models.Page[models.Form], error) {
	f.listFilter = lf
	return f.page(), f.listErr
}
func (f *fakeForms) GetPublic(_ context.Context, id string) (*models.Form, error) {
	f.getID = id
	return f.getOut, f.getErr
}

func (f *fakeForms) page() *models.Page[models.Form] {
	if f.listOut == nil {
		return &models.Page[models.Form]{}
	}
	return f.listOut
}

// ------------ submissions ------------

type fakeSubmissions struct {
	created   *models.NewSubmission
	uploads   map[string]string
	createErr error

	listFilter models.ListFilter
	listOut    *models.Page[models.Submission]

	getID  string
	getOut *models.Submission
	getErr error

	updateID string
	update   models.StatusUpdate

	stats *models.SubmissionStats
}

func (f *fakeSubmissions) Create(_ context.Context, n models.NewSubmission) (*models.Submission, error) {
	f.created = &n
	f.uploads = map[string]string{}
	for _, a := range n.Files {
		var b bytes.Buffer
		_, _ = b.ReadFrom(a.Content)
		f.uploads[a.Field] = a.Filename + ":" + b.String()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Submission{ID: "s-1", Status: models.StatusPending}, nil
}
func (f *fakeSubmissions) ListMine(_ context.Context, lf models.ListFilter) (*models.Page[models.Submission], error) {
	f.listFilter = lf
	return f.page(), nil
}
func (f *fakeSubmissions) Get(_ context.Context, id string) (*models.Submission, error) {
	f.getID = id
	return f.getOut, f.getErr
}
func (f *fakeSubmissions) ListAll(_ context.Context, lf models.ListFilter) (*models.Page[models.Submission], error) {
	f.listFilter = lf
	return f.page(), nil
}
func (f *fakeSubmissions) GetAdmin(_ context.Context, id string) (*models.Submission, error) {
	f.getID = id
	return f.getOut, f.getErr
}
func (f *fakeSubmissions) UpdateStatus(_ context.Context, id string, upd models.StatusUpdate) (*models.Submission, error) {
	f.updateID, f.update = id, upd
	return &models.Submission{ID: id, FormTitle: "Vendor", Status: upd.Status, AdminNotes: upd.AdminNotes}, nil
}
func (f *fakeSubmissions) Stats(context.Context) (*models.SubmissionStats, error) {
	return f.stats, nil
}

func (f *fakeSubmissions) page() *models.Page[models.Submission] {
	if f.listOut == nil {
		return &models.Page[models.Submission]{}
	}
	return f.listOut
}
