// Package yadisk is a minimal Yandex Disk REST API client: upload a local file and
// publish it to obtain a public link.
package yadisk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/context/ctxhttp"
)

const DEFAULT_URL = "https://cloud-api.yandex.net/v1/disk"

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// Error is an error response returned by the Yandex Disk API.
type Error struct {
	Status      int
	Code        string
	Message     string
	Description string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Description
	}

	return fmt.Sprintf("yandex disk: %v %v (%v)", e.Status, e.Code, msg)
}

func NewClient(token string) *Client {
	return &Client{
		BaseURL: DEFAULT_URL,
		Token:   token,
		HTTP:    http.DefaultClient,
	}
}

// Upload copies the local file to remote, replacing an existing file if overwrite is set.
func (c *Client) Upload(ctx context.Context, local, remote string, overwrite bool) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}

	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("path", remote)
	q.Set("overwrite", fmt.Sprintf("%v", overwrite))

	response, err := c.call(ctx, http.MethodGet, "/resources/upload", q)
	if err != nil {
		return err
	}

	href := gjson.GetBytes(response, "href").String()
	method := gjson.GetBytes(response, "method").String()
	if href == "" {
		return fmt.Errorf("yandex disk: missing upload URL for %v", remote)
	}

	if method == "" {
		method = http.MethodPut
	}

	rq, err := http.NewRequest(method, href, f)
	if err != nil {
		return err
	}

	rq.ContentLength = info.Size()

	rs, err := ctxhttp.Do(ctx, c.client(), rq)
	if err != nil {
		return err
	}

	defer rs.Body.Close()

	if rs.StatusCode != http.StatusCreated && rs.StatusCode != http.StatusAccepted && rs.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(rs.Body, 512))
		return decodeError(rs.StatusCode, body)
	}

	return nil
}

// MkdirAll creates dir and any missing parent directories. Directories that already
// exist are not an error.
func (c *Client) MkdirAll(ctx context.Context, dir string) error {
	prefix := ""
	if strings.HasPrefix(dir, "/") {
		prefix = "/"
	}

	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if part == "" {
			continue
		}

		prefix += part
		if strings.HasSuffix(part, ":") {
			prefix += "/"
			continue
		}

		q := url.Values{}
		q.Set("path", prefix)

		if _, err := c.call(ctx, http.MethodPut, "/resources", q); err != nil {
			var e *Error
			if !errors.As(err, &e) || e.Status != http.StatusConflict {
				return err
			}
		}

		prefix += "/"
	}

	return nil
}

// Publish makes remote publicly accessible and returns its public URL.
func (c *Client) Publish(ctx context.Context, remote string) (string, error) {
	q := url.Values{}
	q.Set("path", remote)

	if _, err := c.call(ctx, http.MethodPut, "/resources/publish", q); err != nil {
		return "", err
	}

	q.Set("fields", "public_url")

	response, err := c.call(ctx, http.MethodGet, "/resources", q)
	if err != nil {
		return "", err
	}

	link := gjson.GetBytes(response, "public_url").String()
	if link == "" {
		return "", fmt.Errorf("yandex disk: %v has no public URL", remote)
	}

	return link, nil
}

func (c *Client) call(ctx context.Context, method, path string, q url.Values) ([]byte, error) {
	uri := strings.TrimSuffix(c.baseURL(), "/") + path + "?" + q.Encode()

	rq, err := http.NewRequest(method, uri, nil)
	if err != nil {
		return nil, err
	}

	rq.Header.Set("Authorization", "OAuth "+c.Token)
	rq.Header.Set("Accept", "application/json")

	rs, err := ctxhttp.Do(ctx, c.client(), rq)
	if err != nil {
		return nil, err
	}

	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, err
	}

	if rs.StatusCode < 200 || rs.StatusCode > 299 {
		return nil, decodeError(rs.StatusCode, body)
	}

	return body, nil
}

func decodeError(status int, body []byte) error {
	if !gjson.ValidBytes(body) {
		return &Error{
			Status:  status,
			Message: strings.TrimSpace(string(body)),
		}
	}

	result := gjson.ParseBytes(body)

	return &Error{
		Status:      status,
		Code:        result.Get("error").String(),
		Message:     result.Get("message").String(),
		Description: result.Get("description").String(),
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DEFAULT_URL
	}

	return c.BaseURL
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}

	return c.HTTP
}
