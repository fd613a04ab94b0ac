// Package api has one typed function per storefront endpoint. Every call goes
// through the request gateway, which owns authentication and the
// refresh-and-retry contract.
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/William2207/uteshop/cli/pkg/client"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// Sender is the gateway as seen by the API layer
type Sender interface {
	Send(ctx context.Context, req client.Request) (*resty.Response, error)
}

// Client exposes the storefront endpoints
type Client struct {
	gw Sender
}

// New creates an API client sending through gw
func New(gw Sender) *Client {
	return &Client{gw: gw}
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items      []T
	Pagination models.Pagination
}

// envelope is the API's usual response shape. Older endpoints answer with a
// bare object instead, so every field is optional.
type envelope struct {
	Success    *bool              `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

// listBody is the bare list shape used by the product endpoints.
type listBody[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// result is a decoded successful response
type result struct {
	status     int
	message    string
	body       json.RawMessage
	raw        json.RawMessage
	pagination *models.Pagination
}

func (c *Client) do(ctx context.Context, req client.Request) (*result, error) {
	resp, err := c.gw.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	res := &result{status: resp.StatusCode(), body: body, raw: body}
	if len(body) == 0 || body[0] != '{' {
		return res, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", req.Method, req.Path, err)
	}

	if env.Success != nil && !*env.Success {
		return nil, &clierrors.APIError{StatusCode: res.status, Message: env.Message}
	}

	res.message = env.Message
	res.pagination = env.Pagination
	if len(env.Data) > 0 && string(env.Data) != "null" {
		res.raw = env.Data
	}
	return res, nil
}

// decode unmarshals the response payload into out. When key is set and the
// payload is an object holding key, only that member is decoded.
func (r *result) decode(key string, out interface{}) error {
	raw := r.raw
	if key != "" && len(raw) > 0 && raw[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err == nil {
			if member, ok := fields[key]; ok {
				raw = member
			}
		}
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeEnvelope unmarshals the whole response body into out.
func (r *result) decodeEnvelope(out interface{}) error {
	if len(r.body) == 0 {
		return nil
	}
	return json.Unmarshal(r.body, out)
}

// fetch sends req and decodes its payload as T.
func fetch[T any](ctx context.Context, c *Client, req client.Request, key string) (*T, error) {
	res, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := res.decode(key, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchPage sends req and decodes a list payload. Both a data array with a
// pagination sibling and a bare {items, totalPages} object are accepted.
func fetchPage[T any](ctx context.Context, c *Client, req client.Request, key string) (*Page[T], error) {
	res, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{}
	raw := res.raw
	if len(raw) > 0 && raw[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if member, ok := fields[key]; ok && key != "" {
			raw = member
		}
	}

	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		page.Pagination.Total = len(page.Items)
	} else if len(raw) > 0 && string(raw) != "null" {
		var lb listBody[T]
		if err := json.Unmarshal(raw, &lb); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		page.Items = lb.Items
		page.Pagination = models.Pagination{Page: lb.Page, Limit: lb.Limit, Total: lb.Total, TotalPages: lb.TotalPages}
	}

	if res.pagination != nil {
		page.Pagination = *res.pagination
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// message sends req and returns the server's message.
func (c *Client) message(ctx context.Context, req client.Request) (string, error) {
	res, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	return res.message, nil
}

func get(path string, query url.Values) client.Request {
	return client.Request{Method: http.MethodGet, Path: path, Query: query}
}

func post(path string, body interface{}) client.Request {
	return client.Request{Method: http.MethodPost, Path: path, Body: body}
}

func put(path string, body interface{}) client.Request {
	return client.Request{Method: http.MethodPut, Path: path, Body: body}
}

func del(path string) client.Request {
	return client.Request{Method: http.MethodDelete, Path: path}
}

func pathf(format string, args ...interface{}) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
