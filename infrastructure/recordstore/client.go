package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fleetcheck/models"
)

// ErrInvalidEmployee is returned when the directory rejects an employee number.
var ErrInvalidEmployee = errors.New("employee number not recognised")

// StatusError is a non-2xx answer from the record store.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("record store %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the record store.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Export formats offered by the record store.
const (
	ExportCSV   = "csv"
	ExportExcel = "excel"
)

// Upload kinds accepted by the reference upload endpoint.
const (
	UploadAssets     = "assets"
	UploadStaff      = "staff"
	UploadChecklists = "checklists"
)

// Download is a streamed file from the record store. Callers close Body.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
}

// ChecklistTemplate is the item list for one template check type.
type ChecklistTemplate struct {
	CheckType string   `json:"check_type"`
	Items     []string `json:"items"`
}

// UploadResult is the record store's answer to a reference upload.
type UploadResult struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

type employeeLoginResponse struct {
	Success  bool            `json:"success"`
	Employee models.Employee `json:"employee"`
}

type checkTypeResponse struct {
	CheckType string `json:"check_type"`
}

// Client maps requests and responses for the record store REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient is used by tests to inject an httptest client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured record store root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListChecklists returns the latest limit records, or all of them when limit is 0.
func (c *Client) ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error) {
	if limit < 0 {
		limit = 0
	}
	var out []models.ChecklistRecord
	if err := c.getJSON(ctx, "/api/checklists?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.ChecklistRecord{}
	}
	return out, nil
}

// CreateChecklist posts a new record. The store assigns id and completed_at;
// when it echoes nothing back the submitted record is returned.
func (c *Client) CreateChecklist(ctx context.Context, record models.ChecklistRecord) (models.ChecklistRecord, error) {
	record.ID = ""
	record.CompletedAt = ""
	if record.ChecklistItems == nil {
		record.ChecklistItems = []models.ChecklistItem{}
	}
	if record.WorkshopPhotos == nil {
		record.WorkshopPhotos = []models.Photo{}
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/checklists", record)
	if err != nil {
		return models.ChecklistRecord{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ChecklistRecord{}, fmt.Errorf("read create response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return record, nil
	}
	var created models.ChecklistRecord
	if err := json.Unmarshal(body, &created); err != nil {
		return models.ChecklistRecord{}, fmt.Errorf("decode create response: %w", err)
	}
	return created, nil
}

// Export opens a CSV or Excel download of every record.
func (c *Client) Export(ctx context.Context, format string) (*Download, error) {
	if format != ExportCSV && format != ExportExcel {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	resp, err := c.do(ctx, http.MethodGet, "/api/checklists/export/"+format, nil)
	if err != nil {
		return nil, err
	}
	fileName := "checklists.csv"
	if format == ExportExcel {
		fileName = "checklists.xlsx"
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		fileName = params["filename"]
	}
	return &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		FileName:    fileName,
	}, nil
}

// EmployeeLogin resolves an employee number against the staff directory.
func (c *Client) EmployeeLogin(ctx context.Context, employeeNumber string) (models.Employee, error) {
	var out employeeLoginResponse
	err := c.postJSON(ctx, "/api/auth/employee-login", map[string]string{"employee_number": employeeNumber}, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusNotFound) {
			return models.Employee{}, ErrInvalidEmployee
		}
		return models.Employee{}, err
	}
	if !out.Success || strings.TrimSpace(out.Employee.EmployeeNumber) == "" {
		return models.Employee{}, ErrInvalidEmployee
	}
	return out.Employee, nil
}

// Staff lists the staff directory.
func (c *Client) Staff(ctx context.Context) ([]models.Staff, error) {
	var out []models.Staff
	if err := c.getJSON(ctx, "/api/staff", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Makes lists machine makes.
func (c *Client) Makes(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "/api/assets/makes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MachineNames lists machine names for a make.
func (c *Client) MachineNames(ctx context.Context, machineMake string) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "/api/assets/names/"+url.PathEscape(machineMake), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckType looks up the template check type registered for a machine.
func (c *Client) CheckType(ctx context.Context, machineMake, name string) (string, error) {
	var out checkTypeResponse
	if err := c.getJSON(ctx, "/api/assets/checktype/"+url.PathEscape(machineMake)+"/"+url.PathEscape(name), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.CheckType), nil
}

// ChecklistTemplate fetches the item list for a template check type.
func (c *Client) ChecklistTemplate(ctx context.Context, checkType string) (ChecklistTemplate, error) {
	var out ChecklistTemplate
	if err := c.getJSON(ctx, "/api/checklist-templates/"+url.PathEscape(checkType), &out); err != nil {
		return ChecklistTemplate{}, err
	}
	return out, nil
}

// UploadReference forwards a reference spreadsheet as multipart form data.
func (c *Client) UploadReference(ctx context.Context, kind, fileName string, content io.Reader) (UploadResult, error) {
	switch kind {
	case UploadAssets, UploadStaff, UploadChecklists:
	default:
		return UploadResult{}, fmt.Errorf("unsupported upload kind %q", kind)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, fmt.Errorf("copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	path := "/api/admin/upload/" + kind
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.send(req, path)
	if err != nil {
		return UploadResult{}, err
	}
	var out UploadResult
	if err := decodeJSON(resp, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

// Health checks the record store health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path)
}

// send returns the response only for 2xx answers; anything else is drained
// into a StatusError.
func (c *Client) send(req *http.Request, path string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("record store %s %s: %w", req.Method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resp.Request.URL.Path, err)
	}
	return nil
}
