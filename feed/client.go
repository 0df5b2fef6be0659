package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"teamspace/apperrors"
	"teamspace/validation"
)

// Client wraps the collaboration REST namespace. Every call carries the
// bearer token it was constructed with. No call is retried on failure;
// errors surface as typed apperrors values for the caller to present.
type Client struct {
	baseURL string
	token   string
	http    *fasthttp.Client
	timeout time.Duration
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &fasthttp.Client{},
		timeout: 15 * time.Second,
	}
}

// HistoryResponse carries the team id the history was fetched for, so
// the store can reject it if the active team changed underneath.
type HistoryResponse struct {
	TeamID   uint      `json:"team_id"`
	Messages []Message `json:"messages"`
}

// History fetches the ordered message history for a team.
func (c *Client) History(teamID uint) (*HistoryResponse, error) {
	var out HistoryResponse
	if err := c.do(fasthttp.MethodGet, fmt.Sprintf("/api/v1/teams/%d/messages", teamID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type sendRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// SendText posts a text message. An empty message is rejected locally.
func (c *Client) SendText(teamID uint, content string) (*Message, error) {
	return c.send(teamID, "text", content)
}

// SendCallLink posts a call-link message.
func (c *Client) SendCallLink(teamID uint, url string) (*Message, error) {
	return c.send(teamID, "call_link", url)
}

func (c *Client) send(teamID uint, kind, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("message content is required")
	}
	body, err := json.Marshal(sendRequest{Kind: kind, Content: content})
	if err != nil {
		return nil, apperrors.Internal("failed to encode message", err)
	}
	var out Message
	if err := c.do(fasthttp.MethodPost, fmt.Sprintf("/api/v1/teams/%d/messages", teamID), body, "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditText updates the text of an existing message.
func (c *Client) EditText(messageID uint, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("message content is required")
	}
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, apperrors.Internal("failed to encode message", err)
	}
	var out Message
	if err := c.do(fasthttp.MethodPut, fmt.Sprintf("/api/v1/messages/%d", messageID), body, "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete soft-deletes a message; the server replaces it with a tombstone.
func (c *Client) Delete(messageID uint) error {
	return c.do(fasthttp.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", messageID), nil, "", nil)
}

// Upload validates the file locally, then posts it as a new message.
// Validation failures return before any network traffic.
func (c *Client) Upload(teamID uint, filename, contentType string, data []byte) (*Message, error) {
	if err := validation.CheckUpload(filename, contentType, int64(len(data))); err != nil {
		return nil, err
	}
	body, boundary, err := multipartBody(filename, contentType, data)
	if err != nil {
		return nil, err
	}
	var out Message
	if err := c.do(fasthttp.MethodPost, fmt.Sprintf("/api/v1/teams/%d/messages/upload", teamID), body, "multipart/form-data; boundary="+boundary, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Replace swaps the attachment of an existing message in place. Same
// validation as Upload; same no-network-on-failure guarantee.
func (c *Client) Replace(messageID uint, filename, contentType string, data []byte) (*Message, error) {
	if err := validation.CheckUpload(filename, contentType, int64(len(data))); err != nil {
		return nil, err
	}
	body, boundary, err := multipartBody(filename, contentType, data)
	if err != nil {
		return nil, err
	}
	var out Message
	if err := c.do(fasthttp.MethodPut, fmt.Sprintf("/api/v1/messages/%d/attachment", messageID), body, "multipart/form-data; boundary="+boundary, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Files lists the team's non-deleted attachments.
func (c *Client) Files(teamID uint) ([]Attachment, error) {
	var out struct {
		Files []Attachment `json:"files"`
	}
	if err := c.do(fasthttp.MethodGet, fmt.Sprintf("/api/v1/teams/%d/files", teamID), nil, "", &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Download is best-effort: it fetches the attachment bytes directly. On
// failure it returns a network error and the URL so the caller can fall
// back to opening the resource instead of failing outright.
func (c *Client) Download(url string) ([]byte, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+c.token)

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, url, apperrors.Network("download failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, url, apperrors.Network(fmt.Sprintf("download failed with status %d", resp.StatusCode()), nil)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, url, nil
}

func (c *Client) do(method, path string, body []byte, contentType string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if body != nil {
		req.SetBody(body)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return apperrors.Network("request failed", err)
	}

	status := resp.StatusCode()
	if status >= 400 {
		return errorFromResponse(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.Internal("failed to decode response", err)
	}
	return nil
}

func errorFromResponse(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Error
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.Validation("%s", msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Authorization("%s", msg)
	case http.StatusNotFound:
		return &apperrors.Error{Code: apperrors.CodeNotFound, Message: msg}
	case http.StatusConflict:
		return apperrors.Conflict("%s", msg)
	default:
		return apperrors.Internal(msg, nil)
	}
}

func multipartBody(filename, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", validation.NormalizeContentType(filename, contentType))

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", apperrors.Internal("failed to build upload body", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", apperrors.Internal("failed to build upload body", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", apperrors.Internal("failed to build upload body", err)
	}
	return buf.Bytes(), w.Boundary(), nil
}
