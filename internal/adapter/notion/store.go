// Package notion implements publish.Store over a Notion database. Documents
// are pages; the content fingerprint lives in a rich-text property.
package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jomei/notionapi"

	"decoder/internal/blocks"
	"decoder/internal/publish"
	"decoder/internal/ratelimit"
)

// Notion allows an average of three requests per second per integration.
const (
	requestsPerSecond = 3
	burst             = 3
)

type Store struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	limiter    *ratelimit.Limiter
}

var _ publish.Store = (*Store)(nil)

type Option func(*options)

type options struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// NewStore returns publish.ErrNotConfigured when token or database id is
// missing.
func NewStore(token, databaseID string, opts ...Option) (*Store, error) {
	if token == "" || databaseID == "" {
		return nil, publish.ErrNotConfigured
	}
	o := options{limiter: ratelimit.New(requestsPerSecond, burst)}
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []notionapi.ClientOption
	if o.httpClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(o.httpClient))
	}
	return &Store{
		client:     notionapi.NewClient(notionapi.Token(token), clientOpts...),
		databaseID: notionapi.DatabaseID(databaseID),
		limiter:    o.limiter,
	}, nil
}

func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*publish.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.Database.Query(ctx, s.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: PropFingerprint,
			RichText: &notionapi.TextFilterCondition{Equals: fingerprint},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, s.translate(err, nil)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return pageDocument(&resp.Results[0]), nil
}

func (s *Store) CreateDocument(ctx context.Context, props publish.Properties, children []blocks.Block) (*publish.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	properties := toProperties(props)
	page, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: properties,
		Children:   toBlocks(children),
	})
	if err != nil {
		return nil, s.translate(err, properties)
	}
	slog.InfoContext(ctx, "notion page created", "page_id", page.ID, "url", page.URL)
	return pageDocument(page), nil
}

func (s *Store) UpdateProperties(ctx context.Context, id string, props publish.Properties) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	properties := toProperties(props)
	if _, err := s.client.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{Properties: properties}); err != nil {
		return s.translate(err, properties)
	}
	return nil
}

func (s *Store) AppendBlocks(ctx context.Context, id string, children []blocks.Block) (int, error) {
	if len(children) == 0 {
		return 0, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	nb := toBlocks(children)
	if _, err := s.client.Block.AppendChildren(ctx, notionapi.BlockID(id), &notionapi.AppendBlockChildrenRequest{Children: nb}); err != nil {
		return 0, s.translate(err, nil)
	}
	return len(nb), nil
}

func pageDocument(p *notionapi.Page) *publish.Document {
	return &publish.Document{ID: string(p.ID), URL: p.URL}
}

// translate maps Notion API errors onto the publish error set. payload is
// attached to validation failures.
func (s *Store) translate(err error, payload any) error {
	var apiErr *notionapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("notion: %w", err)
	}

	switch string(apiErr.Code) {
	case "unauthorized", "restricted_resource":
		return fmt.Errorf("notion: %s: %w", apiErr.Message, publish.ErrUnauthorized)
	case "object_not_found":
		return fmt.Errorf("notion: %s: %w", apiErr.Message, publish.ErrNotFound)
	case "validation_error":
		return &publish.ValidationError{Payload: payload, Err: apiErr}
	case "rate_limited":
		s.limiter.Backoff(0)
	}
	return fmt.Errorf("notion: status %d: %w", apiErr.Status, apiErr)
}
