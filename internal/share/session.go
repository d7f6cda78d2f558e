package share

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"thudl/internal/models"
)

// SharePrefix is the fixed public prefix of Tsinghua Cloud share links.
// It is part of the service's protocol and is not configurable.
const SharePrefix = "https://cloud.tsinghua.edu.cn/d/"

const defaultBaseURL = "https://cloud.tsinghua.edu.cn"

const wrongPasswordMarker = "Please enter a correct password"

var (
	csrfTokenRe = regexp.MustCompile(`<input type="hidden" name="csrfmiddlewaretoken" value="(.*?)">`)
	pageTitleRe = regexp.MustCompile(`<meta property="og:title" content="(.*?)" />`)
)

// ExtractShareKey pulls the opaque share key out of a share URL.
func ExtractShareKey(link string) (string, error) {
	if !strings.HasPrefix(link, SharePrefix) {
		return "", fmt.Errorf("%w: must start with %s", ErrInvalidLink, SharePrefix)
	}
	key := strings.ReplaceAll(link[len(SharePrefix):], "/", "")
	if key == "" {
		return "", fmt.Errorf("%w: empty share key", ErrInvalidLink)
	}
	return key, nil
}

// PasswordPrompt supplies a password when the share turns out to be
// password protected.
type PasswordPrompt func() (string, error)

// Session holds the cookie and connection state for one authenticated
// conversation with the share service. It is built for sequential use;
// none of its methods are called concurrently.
type Session struct {
	httpClient     *http.Client
	baseURL        string
	logger         *zap.Logger
	promptPassword PasswordPrompt
}

type Option func(*Session)

// WithBaseURL points the session at a different service root. Tests use
// this to target a local fake server.
func WithBaseURL(u string) Option {
	return func(s *Session) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithPasswordPrompt installs the interactive password source.
func WithPasswordPrompt(p PasswordPrompt) Option {
	return func(s *Session) { s.promptPassword = p }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.httpClient.Timeout = d }
}

func NewSession(logger *zap.Logger, opts ...Option) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	s := &Session{
		httpClient: &http.Client{Jar: jar},
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) pageURL(key string) string {
	return s.baseURL + "/d/" + key + "/"
}

func (s *Session) fetchPage(ctx context.Context, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL(key), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch share page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch share page: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read share page: %w", err)
	}
	return string(body), nil
}

// FetchRootTitle returns the shared folder's display name, taken from the
// og:title marker on the share page. The name becomes the local save
// directory for the download.
func (s *Session) FetchRootTitle(ctx context.Context, key string) (string, error) {
	body, err := s.fetchPage(ctx, key)
	if err != nil {
		return "", err
	}
	m := pageTitleRe.FindStringSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("share %s: %w", key, ErrTitleNotFound)
	}
	s.logger.Info("resolved share title", zap.String("title", m[1]))
	return m[1], nil
}

// Authenticate performs the password challenge when the share page embeds a
// CSRF token. Public shares carry no token and authentication is a no-op.
// On success the session's cookie jar holds the credentials used by every
// later request.
func (s *Session) Authenticate(ctx context.Context, key string) error {
	body, err := s.fetchPage(ctx, key)
	if err != nil {
		return err
	}
	m := csrfTokenRe.FindStringSubmatch(body)
	if m == nil {
		s.logger.Debug("share is public, no password challenge", zap.String("key", key))
		return nil
	}
	if s.promptPassword == nil {
		return fmt.Errorf("share %s: %w", key, ErrAuthRequired)
	}
	password, err := s.promptPassword()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	form := url.Values{
		"csrfmiddlewaretoken": {m[1]},
		"token":               {key},
		"password":            {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pageURL(key), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", s.pageURL(key))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit password: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read password response: %w", err)
	}
	if strings.Contains(string(respBody), wrongPasswordMarker) {
		return fmt.Errorf("share %s: %w", key, ErrWrongPassword)
	}
	s.logger.Info("password accepted", zap.String("key", key))
	return nil
}

type direntListResponse struct {
	DirentList []models.DirEntry `json:"dirent_list"`
}

// ListDir fetches the entries of one remote directory.
func (s *Session) ListDir(ctx context.Context, key, remotePath string) ([]models.DirEntry, error) {
	u := fmt.Sprintf("%s/api/v2.1/share-links/%s/dirents/?path=%s",
		s.baseURL, key, url.QueryEscape(remotePath))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %v", remotePath, ErrListing, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s: %w: unexpected status %s", remotePath, ErrListing, resp.Status)
	}
	var payload direntListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("list %s: %w: decode body: %v", remotePath, ErrListing, err)
	}
	return payload.DirentList, nil
}

// OpenDownload starts a streaming download of one remote file. The caller
// owns the returned body and must close it.
func (s *Session) OpenDownload(ctx context.Context, key, remotePath string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/d/%s/files/?p=%s&dl=1", s.baseURL, key, url.QueryEscape(remotePath))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", remotePath, ErrTransfer, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("open %s: %w: unexpected status %s", remotePath, ErrTransfer, resp.Status)
	}
	return resp.Body, nil
}
