package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"thudl/internal/models"
)

// fakeShare serves the share-link protocol for tests: the HTML share page,
// the password POST, the dirents API, and file downloads.
type fakeShare struct {
	key       string
	title     string
	password  string // non-empty means the share is protected
	tree      map[string][]models.DirEntry
	files     map[string]string
	failFiles map[string]int // remote path -> HTTP status to fail with
	failDirs  map[string]int // remote path -> HTTP status to fail with
	listCalls int
}

func (f *fakeShare) server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v2.1/share-links/"+f.key+"/dirents/", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls++
		path := r.URL.Query().Get("path")
		if status, ok := f.failDirs[path]; ok {
			w.WriteHeader(status)
			return
		}
		entries, ok := f.tree[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"dirent_list": entries})
	})

	mux.HandleFunc("/d/"+f.key+"/files/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("p")
		if status, ok := f.failFiles[path]; ok {
			w.WriteHeader(status)
			return
		}
		content, ok := f.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, content)
	})

	mux.HandleFunc("/d/"+f.key+"/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			r.ParseForm()
			if r.PostForm.Get("token") != f.key || r.PostForm.Get("csrfmiddlewaretoken") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if r.PostForm.Get("password") != f.password {
				fmt.Fprint(w, "<html>Please enter a correct password.</html>")
				return
			}
			fmt.Fprint(w, "<html>ok</html>")
			return
		}
		fmt.Fprintf(w, `<html><meta property="og:title" content="%s" />`, f.title)
		if f.password != "" {
			fmt.Fprint(w, `<input type="hidden" name="csrfmiddlewaretoken" value="tok123">`)
		}
		fmt.Fprint(w, "</html>")
	})

	return httptest.NewServer(mux)
}

func newTestSession(t *testing.T, baseURL string, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithBaseURL(baseURL)}, opts...)
	s, err := NewSession(zap.NewNop(), opts...)
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	return s
}

func TestExtractShareKey(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{"with trailing slash", "https://cloud.tsinghua.edu.cn/d/abc123/", "abc123", false},
		{"without trailing slash", "https://cloud.tsinghua.edu.cn/d/abc123", "abc123", false},
		{"extra slashes removed", "https://cloud.tsinghua.edu.cn/d/ab/c1/23/", "abc123", false},
		{"wrong prefix", "https://example.com/d/abc123/", "", true},
		{"library link not a share link", "https://cloud.tsinghua.edu.cn/library/abc/", "", true},
		{"empty key", "https://cloud.tsinghua.edu.cn/d/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractShareKey(tt.link)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLink) {
					t.Fatalf("ExtractShareKey(%q) error = %v, want ErrInvalidLink", tt.link, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractShareKey(%q) error = %v", tt.link, err)
			}
			if got != tt.want {
				t.Errorf("ExtractShareKey(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestFetchRootTitle(t *testing.T) {
	fake := &fakeShare{key: "abc123", title: "Course Slides"}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	title, err := session.FetchRootTitle(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchRootTitle() error: %v", err)
	}
	if title != "Course Slides" {
		t.Errorf("FetchRootTitle() = %q, want %q", title, "Course Slides")
	}
}

func TestFetchRootTitleMissingMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>no marker here</html>")
	}))
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	_, err := session.FetchRootTitle(context.Background(), "abc123")
	if !errors.Is(err, ErrTitleNotFound) {
		t.Fatalf("FetchRootTitle() error = %v, want ErrTitleNotFound", err)
	}
}

func TestAuthenticatePublicShare(t *testing.T) {
	fake := &fakeShare{key: "abc123", title: "Public"}
	srv := fake.server()
	defer srv.Close()

	prompted := false
	session := newTestSession(t, srv.URL, WithPasswordPrompt(func() (string, error) {
		prompted = true
		return "", nil
	}))

	if err := session.Authenticate(context.Background(), "abc123"); err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if prompted {
		t.Error("Authenticate() prompted for a password on a public share")
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	fake := &fakeShare{key: "abc123", title: "Protected", password: "secret"}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL, WithPasswordPrompt(func() (string, error) {
		return "not-the-password", nil
	}))

	err := session.Authenticate(context.Background(), "abc123")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("Authenticate() error = %v, want ErrWrongPassword", err)
	}
	if fake.listCalls != 0 {
		t.Errorf("listing endpoint hit %d times before authentication succeeded", fake.listCalls)
	}
}

func TestAuthenticateCorrectPassword(t *testing.T) {
	fake := &fakeShare{key: "abc123", title: "Protected", password: "secret"}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL, WithPasswordPrompt(func() (string, error) {
		return "secret", nil
	}))

	if err := session.Authenticate(context.Background(), "abc123"); err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
}

func TestAuthenticateProtectedWithoutPrompt(t *testing.T) {
	fake := &fakeShare{key: "abc123", title: "Protected", password: "secret"}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	err := session.Authenticate(context.Background(), "abc123")
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("Authenticate() error = %v, want ErrAuthRequired", err)
	}
}

func TestListDir(t *testing.T) {
	fake := &fakeShare{
		key:   "abc123",
		title: "Share",
		tree: map[string][]models.DirEntry{
			"/": {
				{IsDir: false, FilePath: "/a.txt", Size: 10, LastModified: "2024-01-01T00:00:00+08:00"},
				{IsDir: true, FolderPath: "/sub"},
			},
		},
	}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	entries, err := session.ListDir(context.Background(), "abc123", "/")
	if err != nil {
		t.Fatalf("ListDir() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListDir() returned %d entries, want 2", len(entries))
	}
	if entries[0].Path() != "/a.txt" || entries[0].Size != 10 {
		t.Errorf("entry 0 = %+v, want /a.txt size 10", entries[0])
	}
	if !entries[1].IsDir || entries[1].Path() != "/sub" {
		t.Errorf("entry 1 = %+v, want directory /sub", entries[1])
	}
}

func TestListDirServerError(t *testing.T) {
	fake := &fakeShare{
		key:      "abc123",
		title:    "Share",
		tree:     map[string][]models.DirEntry{},
		failDirs: map[string]int{"/": http.StatusInternalServerError},
	}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	_, err := session.ListDir(context.Background(), "abc123", "/")
	if !errors.Is(err, ErrListing) {
		t.Fatalf("ListDir() error = %v, want ErrListing", err)
	}
}

func TestListDirMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	_, err := session.ListDir(context.Background(), "abc123", "/")
	if !errors.Is(err, ErrListing) {
		t.Fatalf("ListDir() error = %v, want ErrListing", err)
	}
}

func TestOpenDownload(t *testing.T) {
	fake := &fakeShare{
		key:   "abc123",
		title: "Share",
		files: map[string]string{"/a.txt": "hello world"},
	}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	body, err := session.OpenDownload(context.Background(), "abc123", "/a.txt")
	if err != nil {
		t.Fatalf("OpenDownload() error: %v", err)
	}
	defer body.Close()

	buf := make([]byte, 64)
	n, _ := body.Read(buf)
	if string(buf[:n]) != "hello world" {
		t.Errorf("OpenDownload() body = %q, want %q", buf[:n], "hello world")
	}
}

func TestOpenDownloadMissingFile(t *testing.T) {
	fake := &fakeShare{key: "abc123", title: "Share", files: map[string]string{}}
	srv := fake.server()
	defer srv.Close()

	session := newTestSession(t, srv.URL)
	_, err := session.OpenDownload(context.Background(), "abc123", "/gone.txt")
	if !errors.Is(err, ErrTransfer) {
		t.Fatalf("OpenDownload() error = %v, want ErrTransfer", err)
	}
}
