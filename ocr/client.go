package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client talks to the external text-extraction service. Extraction is
// best effort: a failure surfaces to the caller and never blocks any
// other flow.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// ExtractText uploads a document and returns the extracted plain text.
func (c *Client) ExtractText(filename string, doc io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("ocr build form: %w", err)
	}
	if _, err := io.Copy(part, doc); err != nil {
		return "", fmt.Errorf("ocr read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ocr build form: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/extract", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", fmt.Errorf("ocr POST /extract: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocr read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ocr HTTP %d: %s", resp.StatusCode, string(data))
	}

	var out extractResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("ocr decode: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ocr extraction failed: %s", out.Error)
	}
	return out.Text, nil
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Reconfigure updates the client's base URL and timeout for hot-reload.
func (c *Client) Reconfigure(baseURL string, timeout time.Duration) {
	c.baseURL = baseURL
	c.httpClient.Timeout = timeout
}
