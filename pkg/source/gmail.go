// Package source fetches inbound items from the mailbox and from newsletter feeds.
package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/domain"
)

// gmail API quota is per user, keep well below it
const (
	gmailRequestsPerSecond = 2.0
	gmailBurst             = 5
	gmailPageSize          = 100
)

// Gmail fetches messages from a Gmail mailbox
type Gmail struct {
	svc        *gmail.Service
	user       string
	query      string
	lookback   time.Duration
	maxResults int64
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewGmail makes Gmail source authorized with OAuth2 client credentials and a stored token
func NewGmail(ctx context.Context, cfg config.GmailConfig) (*Gmail, error) {
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(credentials, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGmailWithService(svc, cfg), nil
}

// NewGmailWithService makes Gmail source over the given service
func NewGmailWithService(svc *gmail.Service, cfg config.GmailConfig) *Gmail {
	res := &Gmail{
		svc:        svc,
		user:       cfg.User,
		query:      cfg.Query,
		lookback:   cfg.Lookback,
		maxResults: cfg.MaxResults,
		limiter:    rate.NewLimiter(rate.Limit(gmailRequestsPerSecond), gmailBurst),
		now:        time.Now,
	}
	if res.user == "" {
		res.user = "me"
	}
	if res.maxResults <= 0 {
		res.maxResults = gmailPageSize
	}
	return res
}

// Name returns source name for logs
func (g *Gmail) Name() string {
	return "gmail"
}

// Fetch lists messages matching the query within the lookback window and returns them as items.
// Messages failing to load are logged and skipped.
func (g *Gmail) Fetch(ctx context.Context) ([]domain.InboundItem, error) {
	ids, err := g.list(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.InboundItem, 0, len(ids))
	for _, id := range ids {
		if err := g.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("wait for gmail rate limit: %w", err)
		}
		msg, err := g.svc.Users.Messages.Get(g.user, id).Format("full").Context(ctx).Do()
		if err != nil {
			lgr.Printf("[WARN] failed to get gmail message %s, %v", id, err)
			continue
		}
		res = append(res, messageToItem(msg))
	}
	lgr.Printf("[DEBUG] fetched %d gmail messages", len(res))
	return res, nil
}

// list returns ids of matching messages, up to maxResults
func (g *Gmail) list(ctx context.Context) ([]string, error) {
	query := strings.TrimSpace(g.query)
	if g.lookback > 0 {
		query = strings.TrimSpace(fmt.Sprintf("%s after:%d", query, g.now().Add(-g.lookback).Unix()))
	}

	var ids []string
	pageToken := ""
	for int64(len(ids)) < g.maxResults {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for gmail rate limit: %w", err)
		}
		call := g.svc.Users.Messages.List(g.user).Q(query).MaxResults(min(g.maxResults-int64(len(ids)), gmailPageSize))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("list gmail messages: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" || len(resp.Messages) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}

// MessageID returns stable item id of a gmail message
func MessageID(gmailID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("gmail://messages/"+gmailID)).String()
}

// messageToItem converts full-format gmail message to an inbound item
func messageToItem(msg *gmail.Message) domain.InboundItem {
	item := domain.InboundItem{
		ID:         MessageID(msg.Id),
		SourceType: domain.SourceEmail,
		CreatedAt:  time.UnixMilli(msg.InternalDate).UTC(),
	}
	if msg.Payload == nil {
		item.ContentText = msg.Snippet
		return item
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			item.SenderRaw = decodeHeader(h.Value)
		case "subject":
			item.Title = decodeHeader(h.Value)
		case "date":
			if t, err := mail.ParseDate(h.Value); err == nil && msg.InternalDate == 0 {
				item.CreatedAt = t.UTC()
			}
		}
	}
	item.ContentHTML, item.ContentText = parseBody(msg.Payload)
	if item.ContentText == "" && item.ContentHTML == "" {
		item.ContentText = msg.Snippet
	}
	return item
}

// parseBody walks MIME parts and returns the first html and the first plain text bodies.
// Attachments are skipped.
func parseBody(part *gmail.MessagePart) (htmlBody, textBody string) {
	if part == nil {
		return "", ""
	}
	if part.Filename == "" && part.Body != nil && part.Body.Data != "" {
		switch strings.ToLower(part.MimeType) {
		case "text/html":
			htmlBody = decodePart(part)
		case "text/plain":
			textBody = decodePart(part)
		}
	}
	for _, p := range part.Parts {
		h, t := parseBody(p)
		if htmlBody == "" && h != "" {
			htmlBody = h
		}
		if textBody == "" && t != "" {
			textBody = t
		}
	}
	return htmlBody, textBody
}

// decodePart decodes base64url body data and converts it to utf-8 using the part charset
func decodePart(part *gmail.MessagePart) string {
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		if data, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(part.Body.Data, "=")); err != nil {
			lgr.Printf("[WARN] can't decode %s part, %v", part.MimeType, err)
			return ""
		}
	}

	label := ""
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			if _, params, err := mime.ParseMediaType(h.Value); err == nil {
				label = params["charset"]
			}
		}
	}
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "us-ascii") {
		return string(data)
	}

	r, err := charset.NewReaderLabel(label, strings.NewReader(string(data)))
	if err != nil {
		lgr.Printf("[DEBUG] unknown charset %q, using raw bytes", label)
		return string(data)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// decodeHeader decodes RFC 2047 encoded words, gmail usually returns them decoded already
func decodeHeader(value string) string {
	dec := mime.WordDecoder{CharsetReader: charset.NewReaderLabel}
	res, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return res
}

// loadToken reads OAuth2 token stored as JSON
func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("open gmail token: %w", err)
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode gmail token: %w", err)
	}
	return &tok, nil
}
