package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/utils"
)

const (
	contentTypeJSON = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

// File is an uploaded document.
type File struct {
	Name string
	Data []byte
}

type form struct {
	fields map[string]string
	file   *File
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s%s", strings.TrimRight(c.APIURL, "/"), path)
}

// postForm sends a multipart form and returns the raw response body.
func (c *Client) postForm(ctx context.Context, op, path string, f form) ([]byte, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for key, val := range f.fields {
		field, err := w.CreateFormField(key)
		if err != nil {
			return nil, &career.TransportError{Op: op, Err: err}
		}

		if _, err = io.Copy(field, strings.NewReader(val)); err != nil {
			return nil, &career.TransportError{Op: op, Err: err}
		}
	}

	if f.file != nil {
		part, err := w.CreateFormFile("file", f.file.Name)
		if err != nil {
			return nil, &career.TransportError{Op: op, Err: err}
		}
		if _, err = part.Write(f.file.Data); err != nil {
			return nil, &career.TransportError{Op: op, Err: err}
		}
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), &b)
	if err != nil {
		return nil, &career.TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(op, req)
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any) ([]byte, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &career.TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return nil, &career.TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentTypeJSON)

	return c.do(op, req)
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, &career.TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", contentTypeJSON)

	return c.do(op, req)
}

// do executes the request and returns the decompressed body of a 2xx response.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	requestID := req.Header.Get(requestIDHeader)
	c.logger.Debug("make request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &career.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, &career.TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("got response",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.String("body_preview", utils.TruncateForLog(string(data), c.PreviewLength)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &career.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
		}
	}

	return data, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

// errorDetail extracts the server explanation from an error body. The API
// answers {"detail": "..."} or a list of validation entries with "msg".
func errorDetail(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
		Error  any `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return utils.TruncateForLog(string(data), 200)
	}

	detail := body.Detail
	if detail == nil {
		detail = body.Error
	}

	switch v := detail.(type) {
	case string:
		return v
	case []any:
		msgs := make([]string, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	default:
		return ""
	}
}

// decodeAny decodes a JSON body into generic values for the normalizers.
// A body that is not JSON is returned as a string.
func decodeAny(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(data)
	}
	return v
}

func decodeInto(op string, data []byte, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &career.TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
