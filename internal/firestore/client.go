package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ErrNotFound is returned when the store has no document under the requested
// key. Any non-success status from the store maps here so callers can probe
// several collections without treating misses as failures.
var ErrNotFound = errors.New("firestore: document not found")

// Value is one typed field of a document, in the store's wire envelope.
// Exactly one member is set per field.
type Value struct {
	StringValue    *string    `json:"stringValue,omitempty"`
	BooleanValue   *bool      `json:"booleanValue,omitempty"`
	IntegerValue   *string    `json:"integerValue,omitempty"`
	DoubleValue    *float64   `json:"doubleValue,omitempty"`
	TimestampValue *time.Time `json:"timestampValue,omitempty"`
}

// Document is a single key-addressed field map read from the store.
type Document struct {
	Name       string           `json:"name"`
	Fields     map[string]Value `json:"fields"`
	CreateTime *time.Time       `json:"createTime,omitempty"`
}

// StringField returns the named field as a string. The second return is
// false when the field is absent or not a string.
func (d *Document) StringField(name string) (string, bool) {
	v, ok := d.Fields[name]
	if !ok || v.StringValue == nil {
		return "", false
	}
	return *v.StringValue, true
}

// BoolField returns the named field as a bool, reporting absence via ok.
func (d *Document) BoolField(name string) (bool, bool) {
	v, ok := d.Fields[name]
	if !ok || v.BooleanValue == nil {
		return false, false
	}
	return *v.BooleanValue, true
}

// TimeField returns the named field as a timestamp, reporting absence via ok.
func (d *Document) TimeField(name string) (*time.Time, bool) {
	v, ok := d.Fields[name]
	if !ok || v.TimestampValue == nil {
		return nil, false
	}
	return v.TimestampValue, true
}

// IntField returns the named field as an int64, reporting absence via ok.
// The store encodes integers as decimal strings.
func (d *Document) IntField(name string) (int64, bool) {
	v, ok := d.Fields[name]
	if !ok || v.IntegerValue == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Client reads documents from the store's REST API. It never writes.
type Client struct {
	baseURL   string
	projectID string
	client    *http.Client
}

// NewClient creates a read-only client for the given project.
func NewClient(baseURL, projectID string) *Client {
	return &Client{
		baseURL:   baseURL,
		projectID: projectID,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) documentURL(collection, key string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s/%s",
		c.baseURL, c.projectID, collection, key)
}

// GetDocument performs an authenticated read of collection/key. A non-success
// status from the store is ErrNotFound; transport and decode failures are
// hard errors.
func (c *Client) GetDocument(ctx context.Context, collection, key, token string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(collection, key), nil)
	if err != nil {
		return nil, fmt.Errorf("firestore: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firestore: request to %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Raw upstream bodies stay server-side; the status is enough to
		// classify the miss.
		io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("firestore: reading response from %s: %w", collection, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("firestore: decoding document from %s: %w", collection, err)
	}

	return &doc, nil
}
