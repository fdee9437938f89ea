package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"class-panel/api"
	"class-panel/pkg/response"
)

// APIError is a non-2xx reply from the panel.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("panel returned %d", e.Status)
	}
	return fmt.Sprintf("panel returned %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Session(ctx context.Context) (*api.SessionResponse, error) {
	const op = "client.Session"

	var out struct {
		Session api.SessionResponse `json:"session"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/session", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Session, nil
}

func (c *Client) Configure(ctx context.Context, req *api.ConfigureRequest) (*api.SessionResponse, error) {
	const op = "client.Configure"

	var out struct {
		Session api.SessionResponse `json:"session"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/session", req, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Session, nil
}

// Timer posts one of start, pause, advance or reset.
func (c *Client) Timer(ctx context.Context, action string) (*api.SessionResponse, error) {
	const op = "client.Timer"

	var out struct {
		Session api.SessionResponse `json:"session"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/timer/"+url.PathEscape(action), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Session, nil
}

func (c *Client) AddNote(ctx context.Context, kind, text, idempotencyKey string) (*api.LogEntry, error) {
	const op = "client.AddNote"

	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	var out struct {
		Entry api.LogEntry `json:"entry"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/notes", api.NoteRequest{Kind: kind, Text: text}, header, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Entry, nil
}

func (c *Client) SetRoster(ctx context.Context, text string) (*api.RosterResponse, error) {
	const op = "client.SetRoster"

	var out struct {
		Roster api.RosterResponse `json:"roster"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/roster", api.RosterRequest{Text: text}, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Roster, nil
}

func (c *Client) SetPresence(ctx context.Context, name string, present bool) (*api.RosterResponse, error) {
	const op = "client.SetPresence"

	var out struct {
		Roster api.RosterResponse `json:"roster"`
	}
	body := api.PresenceRequest{Present: &present}
	if err := c.doJSON(ctx, http.MethodPut, "/roster/"+url.PathEscape(name), body, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out.Roster, nil
}

func (c *Client) ClearRoster(ctx context.Context) error {
	const op = "client.ClearRoster"

	if err := c.doJSON(ctx, http.MethodDelete, "/roster", nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Export downloads "log" or "roster" in the given format into w and returns
// the file name suggested by the server.
func (c *Client) Export(ctx context.Context, what, format string, w io.Writer) (string, error) {
	const op = "client.Export"

	path := fmt.Sprintf("/%s/export", url.PathEscape(what))
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}

	resp, err := c.send(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return "", nil
	}
	return params["filename"], nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, header http.Header, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, method, path, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body response.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}

// IsCode reports whether err is an APIError carrying the given code.
func IsCode(err error, code response.ErrCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == string(code)
}
