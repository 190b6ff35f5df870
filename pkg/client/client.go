package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenStore supplies the bearer token for authenticated calls. A 401
// response clears the store; re-authentication is the caller's concern.
type TokenStore interface {
	Token() (string, error)
	Clear() error
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Options configures a Client. Zero values get sensible defaults.
type Options struct {
	HTTPClient *http.Client
	Tokens     TokenStore
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     opts.Tokens,
	}
}

// Progress is one byte-level upload progress sample. Percentage reaches
// 100 only when the server has accepted the whole request.
type Progress struct {
	Loaded     int64
	Total      int64
	Percentage int
}

// UploadFile describes the file handed to Upload.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type UploadOptions struct {
	UserID     string
	OnProgress func(Progress)
}

type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	report func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		pct := 0
		if p.total > 0 {
			pct = int(p.loaded * 100 / p.total)
		}
		// Hold back the final percent until the server confirms.
		if pct > 99 {
			pct = 99
		}
		if p.report != nil {
			p.report(Progress{Loaded: p.loaded, Total: p.total, Percentage: pct})
		}
	}
	return n, err
}

// Upload validates the file locally, streams it as multipart form data
// and returns the server's document record. Callers must keep at most
// one upload in flight per flow.
func (c *Client) Upload(ctx context.Context, file UploadFile, opts UploadOptions) (*Document, error) {
	if result := ValidateFile(file.Name, file.Size, file.ContentType); !result.IsValid {
		return nil, &ValidationFailedError{Result: result}
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return nil, fmt.Errorf("copy file body: %w", err)
	}
	if opts.UserID != "" {
		if err := form.WriteField("userId", opts.UserID); err != nil {
			return nil, fmt.Errorf("write userId field: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	body := &progressReader{
		r:      &buf,
		total:  int64(buf.Len()),
		report: opts.OnProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/pdf/upload", body)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.ContentLength = body.total

	var accepted uploadAccepted
	if err := c.do(req, &accepted); err != nil {
		return nil, err
	}
	if opts.OnProgress != nil {
		opts.OnProgress(Progress{Loaded: body.total, Total: body.total, Percentage: 100})
	}
	return &Document{
		ID:         accepted.PdfID,
		FileName:   accepted.FileName,
		Status:     accepted.Status,
		UploadedAt: accepted.UploadedAt,
	}, nil
}

// uploadAccepted is the 201 envelope of the upload endpoint.
type uploadAccepted struct {
	PdfID      string    `json:"pdfId"`
	FileName   string    `json:"fileName"`
	Status     Status    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Status fetches the current processing state of a document.
func (c *Client) Status(ctx context.Context, pdfID string) (*StatusReport, error) {
	var report StatusReport
	if err := c.getJSON(ctx, "/api/v1/pdf/"+url.PathEscape(pdfID)+"/status", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Analysis fetches the final result. Valid only once the document has
// reached COMPLETED; earlier calls get a 409 APIError.
func (c *Client) Analysis(ctx context.Context, pdfID string) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.getJSON(ctx, "/api/v1/pdf/"+url.PathEscape(pdfID)+"/analysis", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Eligibility scores the stored profile of userID against a subscription.
func (c *Client) Eligibility(ctx context.Context, subscriptionID, userID string) (*EligibilityResult, error) {
	path := "/api/v1/eligibility/" + url.PathEscape(subscriptionID) + "?userId=" + url.QueryEscape(userID)
	var result EligibilityResult
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveProfile stores the eligibility profile for profile.UserID,
// replacing any previous one. The server echoes the stored profile.
func (c *Client) SaveProfile(ctx context.Context, profile *UserProfile) (*UserProfile, error) {
	if profile == nil || profile.UserID == "" {
		return nil, fmt.Errorf("saveprofile: userId is required")
	}
	body, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	path := "/api/v1/users/" + url.PathEscape(profile.UserID) + "/profile"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var stored UserProfile
	if err := c.do(req, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Profile fetches the stored eligibility profile for userID.
func (c *Client) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.getJSON(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Report downloads the eligibility report workbook. The second return
// value is the server-suggested file name.
func (c *Client) Report(ctx context.Context, subscriptionID, userID string) ([]byte, string, error) {
	path := "/api/v1/eligibility/" + url.PathEscape(subscriptionID) + "/report?userId=" + url.QueryEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create report request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read report body: %w", err)
	}

	name := "report.xlsx"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}
	return data, name, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil {
			_ = c.tokens.Clear()
		}
		return ErrUnauthorized
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
	}
	if apiErr.Code == "" {
		apiErr.Code = "UNEXPECTED"
		apiErr.Message = resp.Status
	}
	return apiErr
}
