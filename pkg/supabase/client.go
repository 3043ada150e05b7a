// Package supabase is a thin client for the Supabase REST (PostgREST),
// Auth (GoTrue) and Storage APIs. Query filters use PostgREST operator
// syntax, e.g. {"user_id": "eq.<uuid>", "order": "timestamp.desc"}.
package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		URL:        baseURL,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// setAuth sets the apikey and Authorization headers. The user token is
// used when present so PostgREST row level security applies; otherwise
// the service key is used.
func (c *Client) setAuth(req *http.Request, userToken string) {
	req.Header.Set("apikey", c.ServiceKey)
	if userToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", userToken))
	} else {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.ServiceKey))
	}
}

// do executes the request and returns the response body, treating any
// 4xx/5xx status as an error.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("supabase error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// restRequest builds a PostgREST request against a table. A nil payload
// produces a request without a body.
func (c *Client) restRequest(method, table string, query map[string]interface{}, payload interface{}, userToken string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s/rest/v1/%s", c.URL, table), body)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = q.Encode()

	c.setAuth(req, userToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	return req, nil
}

// Query executes a query on a Supabase table
func (c *Client) Query(table string, query map[string]interface{}) ([]byte, error) {
	return c.QueryWithToken(table, query, "")
}

// QueryWithToken executes a query with an optional user JWT token for RLS
func (c *Client) QueryWithToken(table string, query map[string]interface{}, userToken string) ([]byte, error) {
	req, err := c.restRequest(http.MethodGet, table, query, nil, userToken)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Insert inserts a record into a Supabase table
func (c *Client) Insert(table string, data interface{}) ([]byte, error) {
	return c.InsertWithToken(table, data, "")
}

// InsertWithToken inserts a record with an optional user JWT token for RLS
func (c *Client) InsertWithToken(table string, data interface{}, userToken string) ([]byte, error) {
	req, err := c.restRequest(http.MethodPost, table, nil, data, userToken)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Update updates a record in a Supabase table by primary key
func (c *Client) Update(table string, id string, data interface{}) ([]byte, error) {
	return c.UpdateWithToken(table, id, data, "")
}

// UpdateWithToken updates a record with an optional user JWT token for RLS
func (c *Client) UpdateWithToken(table string, id string, data interface{}, userToken string) ([]byte, error) {
	query := map[string]interface{}{"id": fmt.Sprintf("eq.%s", id)}
	req, err := c.restRequest(http.MethodPatch, table, query, data, userToken)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// UpdateWhere updates records matching a query
func (c *Client) UpdateWhere(table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	return c.UpdateWhereWithToken(table, query, data, "")
}

// UpdateWhereWithToken updates records matching a query with an optional user JWT token
func (c *Client) UpdateWhereWithToken(table string, query map[string]interface{}, data interface{}, userToken string) ([]byte, error) {
	req, err := c.restRequest(http.MethodPatch, table, query, data, userToken)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Upsert inserts or updates a record in a Supabase table.
// onConflict names the columns used to detect conflicts (e.g. "user_id").
func (c *Client) Upsert(table string, data interface{}, onConflict string) ([]byte, error) {
	return c.UpsertWithToken(table, data, onConflict, "")
}

// UpsertWithToken inserts or updates with an optional user JWT token for RLS
func (c *Client) UpsertWithToken(table string, data interface{}, onConflict string, userToken string) ([]byte, error) {
	query := map[string]interface{}{"on_conflict": onConflict}
	req, err := c.restRequest(http.MethodPost, table, query, data, userToken)
	if err != nil {
		return nil, err
	}
	// resolution=merge-duplicates makes PostgREST update existing rows
	req.Header.Set("Prefer", "return=representation,resolution=merge-duplicates")
	return c.do(req)
}

// Delete deletes a record from a Supabase table by primary key
func (c *Client) Delete(table string, id string) error {
	return c.DeleteWithToken(table, id, "")
}

// DeleteWithToken deletes a record with an optional user JWT token for RLS
func (c *Client) DeleteWithToken(table string, id string, userToken string) error {
	query := map[string]interface{}{"id": fmt.Sprintf("eq.%s", id)}
	req, err := c.restRequest(http.MethodDelete, table, query, nil, userToken)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// DeleteWhere deletes records matching a query
func (c *Client) DeleteWhere(table string, query map[string]interface{}) error {
	return c.DeleteWhereWithToken(table, query, "")
}

// DeleteWhereWithToken deletes records matching a query with an optional user JWT token
func (c *Client) DeleteWhereWithToken(table string, query map[string]interface{}, userToken string) error {
	req, err := c.restRequest(http.MethodDelete, table, query, nil, userToken)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(token string) (*User, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/auth/v1/user", c.URL), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// escapePath escapes each segment of an object path, preserving the
// slashes between segments.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// UploadObject uploads data to a storage bucket and returns the public URL.
func (c *Client) UploadObject(bucket, path string, data []byte, contentType string) (string, error) {
	escaped := escapePath(path)
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.URL, bucket, escaped)

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	c.setAuth(req, "")
	req.Header.Set("Content-Type", contentType)
	// Idempotent re-upload of the same object path
	req.Header.Set("x-upsert", "true")

	if _, err := c.do(req); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.URL, bucket, escaped), nil
}

// DeleteObject removes an object from a storage bucket.
func (c *Client) DeleteObject(bucket, path string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.URL, bucket, escapePath(path))

	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}

	c.setAuth(req, "")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// AdminDeleteUser permanently deletes an auth user. Requires the service key.
func (c *Client) AdminDeleteUser(userID string) error {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.URL, userID)

	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}

	c.setAuth(req, "")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("failed to delete auth user: %w", err)
	}
	return nil
}
