package mailbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"decoder/internal/ratelimit"
)

const (
	user        = "me"
	labelInbox  = "INBOX"
	labelUnread = "UNREAD"
)

var (
	ErrUnauthorized   = errors.New("gmail: unauthorised")
	ErrHistoryExpired = errors.New("gmail: history id expired")
)

// Mailbox is the inbox as the watcher sees it.
type Mailbox interface {
	// Unread lists the ids of unread inbox messages, oldest first.
	Unread(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, id string) ([]byte, error)
	MarkRead(ctx context.Context, id string) error
	// Checkpoint returns the current history position.
	Checkpoint(ctx context.Context) (uint64, error)
	// Changes lists unread inbox messages added after since and the position
	// to resume from.
	Changes(ctx context.Context, since uint64) ([]string, uint64, error)
}

// TokenSource exchanges a stored refresh token for access tokens on demand.
func TokenSource(ctx context.Context, clientID, clientSecret, refreshToken string) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailModifyScope},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

type Gmail struct {
	svc     *gmail.Service
	limiter *ratelimit.Limiter
}

var _ Mailbox = (*Gmail)(nil)

// NewGmail opens a Gmail API session. Pass option.WithTokenSource in
// production.
func NewGmail(ctx context.Context, opts ...option.ClientOption) (*Gmail, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &Gmail{svc: svc, limiter: ratelimit.New(2, 5)}, nil
}

func (g *Gmail) Unread(ctx context.Context) ([]string, error) {
	var ids []string
	err := g.call(ctx, func() error {
		return g.svc.Users.Messages.List(user).LabelIds(labelInbox).Q("is:unread").Context(ctx).
			Pages(ctx, func(r *gmail.ListMessagesResponse) error {
				for _, m := range r.Messages {
					ids = append(ids, m.Id)
				}
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	// the API lists newest first
	slices.Reverse(ids)
	return ids, nil
}

func (g *Gmail) Fetch(ctx context.Context, id string) ([]byte, error) {
	var msg *gmail.Message
	err := g.call(ctx, func() (err error) {
		msg, err = g.svc.Users.Messages.Get(user, id).Format("raw").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(msg.Raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode message %s: %w", id, err)
	}
	return raw, nil
}

func (g *Gmail) MarkRead(ctx context.Context, id string) error {
	return g.call(ctx, func() error {
		_, err := g.svc.Users.Messages.Modify(user, id, &gmail.ModifyMessageRequest{
			RemoveLabelIds: []string{labelUnread},
		}).Context(ctx).Do()
		return err
	})
}

func (g *Gmail) Checkpoint(ctx context.Context) (uint64, error) {
	var profile *gmail.Profile
	err := g.call(ctx, func() (err error) {
		profile, err = g.svc.Users.GetProfile(user).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, err
	}
	return profile.HistoryId, nil
}

func (g *Gmail) Changes(ctx context.Context, since uint64) ([]string, uint64, error) {
	var ids []string
	next := since
	seen := map[string]bool{}
	err := g.call(ctx, func() error {
		return g.svc.Users.History.List(user).StartHistoryId(since).HistoryTypes("messageAdded").LabelId(labelInbox).Context(ctx).
			Pages(ctx, func(r *gmail.ListHistoryResponse) error {
				if r.HistoryId > next {
					next = r.HistoryId
				}
				for _, h := range r.History {
					for _, added := range h.MessagesAdded {
						m := added.Message
						if m == nil || seen[m.Id] || !slices.Contains(m.LabelIds, labelUnread) {
							continue
						}
						seen[m.Id] = true
						ids = append(ids, m.Id)
					}
				}
				return nil
			})
	})
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		// history.list answers 404 once the start id is too old
		return nil, since, fmt.Errorf("%w: %s", ErrHistoryExpired, gerr.Message)
	}
	if err != nil {
		return nil, since, err
	}
	return ids, next, nil
}

// call paces fn and translates Google API errors.
func (g *Gmail) call(ctx context.Context, fn func() error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	err := fn()
	if err == nil {
		return nil
	}
	// a rejected refresh token surfaces from the transport, not the API
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && (rerr.Response == nil || rerr.Response.StatusCode < http.StatusInternalServerError) {
		return fmt.Errorf("%w: token refresh: %w", ErrUnauthorized, rerr)
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
	case http.StatusTooManyRequests:
		g.limiter.Backoff(0)
	}
	return err
}
