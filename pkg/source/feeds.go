package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/domain"
)

const feedUserAgent = "mailscope/1.0 (+https://github.com/umputun/mailscope)"

// Feeds fetches newsletter editions published as RSS or Atom feeds
type Feeds struct {
	client *http.Client
	feeds  []config.FeedSource
	now    func() time.Time
}

// NewFeeds makes feed source for the configured feeds
func NewFeeds(feeds []config.FeedSource, timeout time.Duration) *Feeds {
	return &Feeds{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		feeds: feeds,
		now:   time.Now,
	}
}

// Name returns source name for logs
func (f *Feeds) Name() string {
	return "feeds"
}

// Fetch parses all configured feeds. A failing feed is logged and skipped.
func (f *Feeds) Fetch(ctx context.Context) ([]domain.InboundItem, error) {
	var res []domain.InboundItem
	for _, fs := range f.feeds {
		items, err := f.fetchFeed(ctx, fs)
		if err != nil {
			lgr.Printf("[WARN] failed to fetch feed %s, %v", fs.URL, err)
			continue
		}
		res = append(res, items...)
	}
	return res, nil
}

// fetchFeed parses one feed and converts its entries to inbound items
func (f *Feeds) fetchFeed(ctx context.Context, fs config.FeedSource) ([]domain.InboundItem, error) {
	body, err := f.fetch(ctx, fs.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	sender := fs.Sender
	if sender == "" {
		sender = feed.Title
	}

	res := make([]domain.InboundItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		if guid == "" {
			guid = fmt.Sprintf("%s-%s", fs.URL, item.Title)
		}

		html := item.Content
		if html == "" {
			html = item.Description
		}

		created := f.now()
		if item.PublishedParsed != nil {
			created = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			created = *item.UpdatedParsed
		}

		res = append(res, domain.InboundItem{
			ID:          FeedItemID(guid),
			SourceType:  domain.SourceFeed,
			SenderRaw:   sender,
			Title:       item.Title,
			ContentHTML: html,
			CreatedAt:   created.UTC(),
		})
	}
	return res, nil
}

// FeedItemID returns stable item id of a feed entry
func FeedItemID(guid string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("feed://"+guid)).String()
}

// fetch retrieves content from a URL
func (f *Feeds) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
