package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/go-chi/chi/v5"
)

/*************
 * Fake backend
 *************/

type uploadedFile struct {
	Field    string
	Filename string
	Content  string
}

type fakeBackend struct {
	mu sync.Mutex

	access  map[string]bool
	refresh string

	refreshFail   bool
	rotate        bool
	alwaysDeny    bool
	refreshWaitN  int32
	issued        int
	refreshCalls  atomic.Int32
	deniedHits    atomic.Int32
	calls         map[string]int
	lastAuth      string
	lastRequestID string
	lastQuery     string
	lastBody      map[string]any

	uploadForm  string
	uploadData  string
	uploadFiles []uploadedFile

	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{access: map[string]bool{}, calls: map[string]int{}}
	b.srv = httptest.NewServer(b.routes())
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) URL() string { return b.srv.URL + "/api" }

func (b *fakeBackend) grant(access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access[access] = true
	b.refresh = refresh
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) auth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

func (b *fakeBackend) requestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRequestID
}

func (b *fakeBackend) query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

func (b *fakeBackend) body() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody
}

func (b *fakeBackend) upload() (string, string, []uploadedFile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploadForm, b.uploadData, append([]uploadedFile(nil), b.uploadFiles...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		if r.URL.Path != "/api/auth/refresh/" {
			b.lastAuth = r.Header.Get("Authorization")
		}
		b.lastRequestID = r.Header.Get("X-Request-ID")
		b.lastQuery = r.URL.RawQuery
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		ok := b.access[token] && !b.alwaysDeny
		b.mu.Unlock()
		if !ok {
			b.deniedHits.Add(1)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) decodeBody(r *http.Request) map[string]any {
	var m map[string]any
	_ = json.NewDecoder(r.Body).Decode(&m)
	b.mu.Lock()
	b.lastBody = m
	b.mu.Unlock()
	return m
}

func (b *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Get("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.Post("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		m := b.decodeBody(r)
		if m["username"] != "alice" || m["password"] != "correct" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		b.grant("A1", "R1")
		writeJSON(w, http.StatusOK, models.AuthResponse{
			User:   models.User{ID: "u1", Username: "alice", Role: models.RoleClient},
			Tokens: models.Tokens{Access: "A1", Refresh: "R1"},
		})
	})

	r.Post("/api/auth/register/", func(w http.ResponseWriter, r *http.Request) {
		m := b.decodeBody(r)
		if m["password"] != m["password2"] {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"password": []string{"Password fields didn't match."},
				"email":    []string{"Enter a valid email address."},
			})
			return
		}
		b.grant("A1", "R1")
		writeJSON(w, http.StatusCreated, models.AuthResponse{
			User:   models.User{ID: "u2", Username: fmt.Sprint(m["username"]), Role: models.RoleClient},
			Tokens: models.Tokens{Access: "A1", Refresh: "R1"},
		})
	})

	r.Post("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		m := b.decodeBody(r)

		if n := b.refreshWaitN; n > 0 {
			deadline := time.Now().Add(2 * time.Second)
			for b.deniedHits.Load() < n && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			time.Sleep(100 * time.Millisecond)
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.refreshFail || m["refresh"] != b.refresh {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Token is invalid or expired","code":"token_not_valid"}`)
			return
		}
		b.issued++
		access := fmt.Sprintf("A-%d", b.issued)
		b.access[access] = true
		resp := models.RefreshResponse{Access: access}
		if b.rotate {
			b.refresh = fmt.Sprintf("R-%d", b.issued)
			resp.Refresh = b.refresh
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	r.Get("/api/forms/public/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Form{{ID: "f1", Title: "KYC", Status: models.FormActive}})
	})
	r.Get("/api/forms/public/{id}/", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "f1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeJSON(w, http.StatusOK, models.Form{ID: "f1", Title: "KYC", Schema: []models.FormField{{Name: "name", Label: "Name", Required: true}}})
	})

	r.Group(func(r chi.Router) {
		r.Use(b.requireAuth)

		r.Get("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.User{ID: "u1", Username: "alice", Role: models.RoleClient})
		})
		r.Patch("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
			m := b.decodeBody(r)
			writeJSON(w, http.StatusOK, models.User{ID: "u1", Username: "alice", Phone: fmt.Sprint(m["phone"])})
		})

		r.Get("/api/forms/admin/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"count": 1, "next": nil, "previous": nil,
				"results": []models.Form{{ID: "f1", Title: "KYC", Status: models.FormStatus(r.URL.Query().Get("status"))}},
			})
		})
		r.Post("/api/forms/admin/", func(w http.ResponseWriter, r *http.Request) {
			m := b.decodeBody(r)
			writeJSON(w, http.StatusCreated, models.Form{ID: "f9", Title: fmt.Sprint(m["title"]), Status: models.FormDraft})
		})
		r.Get("/api/forms/admin/{id}/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Form{ID: chi.URLParam(r, "id"), Title: "KYC"})
		})
		r.Patch("/api/forms/admin/{id}/", func(w http.ResponseWriter, r *http.Request) {
			m := b.decodeBody(r)
			writeJSON(w, http.StatusOK, models.Form{ID: chi.URLParam(r, "id"), Title: fmt.Sprint(m["title"])})
		})
		r.Delete("/api/forms/admin/{id}/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/api/forms/admin/{id}/activate/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Form{ID: chi.URLParam(r, "id"), Status: models.FormActive})
		})
		r.Post("/api/forms/admin/{id}/archive/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Form{ID: chi.URLParam(r, "id"), Status: models.FormArchived})
		})
		r.Post("/api/forms/admin/{id}/duplicate/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, models.Form{ID: chi.URLParam(r, "id") + "-copy", Status: models.FormDraft})
		})

		r.Post("/api/submissions/", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			b.mu.Lock()
			b.uploadForm = r.FormValue("form")
			b.uploadData = r.FormValue("data")
			b.uploadFiles = nil
			for field, hs := range r.MultipartForm.File {
				for _, h := range hs {
					f, _ := h.Open()
					c, _ := io.ReadAll(f)
					_ = f.Close()
					b.uploadFiles = append(b.uploadFiles, uploadedFile{Field: field, Filename: h.Filename, Content: string(c)})
				}
			}
			b.mu.Unlock()
			writeJSON(w, http.StatusCreated, models.Submission{ID: "s1", Form: models.FormRef{ID: r.FormValue("form")}, Status: models.StatusPending})
		})
		r.Get("/api/submissions/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []models.Submission{{ID: "s1", Status: models.StatusPending}})
		})
		r.Get("/api/submissions/{id}/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Submission{ID: chi.URLParam(r, "id"), Form: models.FormRef{ID: "f1", Title: "KYC"}})
		})
		r.Get("/api/submissions/admin/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"count": 2, "results": []models.Submission{{ID: "s1"}, {ID: "s2"}},
			})
		})
		r.Get("/api/submissions/admin/stats/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.SubmissionStats{Total: 4, Pending: 1, Approved: 2, Rejected: 1})
		})
		r.Get("/api/submissions/admin/{id}/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Submission{ID: chi.URLParam(r, "id"), UserName: "alice"})
		})
		r.Patch("/api/submissions/admin/{id}/", func(w http.ResponseWriter, r *http.Request) {
			m := b.decodeBody(r)
			writeJSON(w, http.StatusOK, models.Submission{
				ID:         chi.URLParam(r, "id"),
				Status:     models.SubmissionStatus(fmt.Sprint(m["status"])),
				AdminNotes: fmt.Sprint(m["admin_notes"]),
			})
		})
	})

	return r
}
