package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultPageMaxAge is the time a captured page stays fresh: one week.
const DefaultPageMaxAge = 7 * 24 * time.Hour

// PageParams holds the inputs for NewPage. Zero values select the defaults.
type PageParams struct {
	URL       string
	Path      string
	MaxAge    int64 // milliseconds
	Remote    bool
	CreatedAt int64 // epoch milliseconds
}

// Page is a captured document waiting to be processed by the task queue.
// A Page is immutable once constructed; a stale page is superseded by saving
// a new Page for the same URL.
type Page struct {
	url       string
	path      string
	maxAge    int64
	remote    bool
	createdAt int64
}

// NewPage builds a Page from params, filling in a random blob path, the
// default max age and the current time where they are not supplied.
func NewPage(params PageParams) (*Page, error) {
	if params.URL == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPageURL)
	}

	p := &Page{
		url:       params.URL,
		path:      params.Path,
		maxAge:    params.MaxAge,
		remote:    params.Remote,
		createdAt: params.CreatedAt,
	}
	if p.maxAge == 0 {
		p.maxAge = DefaultPageMaxAge.Milliseconds()
	}
	if p.createdAt == 0 {
		p.createdAt = time.Now().UnixMilli()
	}
	if p.path == "" {
		p.path = uuid.New().String()
	}

	return p, nil
}

// URL returns the normalized page URL.
func (p *Page) URL() string { return p.url }

// Path returns the blob token holding the captured content.
func (p *Page) Path() string { return p.path }

// MaxAge returns the time-to-live in milliseconds.
func (p *Page) MaxAge() int64 { return p.maxAge }

// Remote reports whether the page was captured out of process.
func (p *Page) Remote() bool { return p.remote }

// CreatedAt returns the capture time in epoch milliseconds.
func (p *Page) CreatedAt() int64 { return p.createdAt }

// Expiration returns the epoch millisecond at which the page becomes stale.
func (p *Page) Expiration() int64 {
	return p.createdAt + p.maxAge
}

// IsExpired reports whether the page is stale at the given time.
func (p *Page) IsExpired(now time.Time) bool {
	return p.Expiration() <= now.UnixMilli()
}

// pageJSON fixes the serialized field order.
type pageJSON struct {
	URL       string `json:"url"`
	Path      string `json:"path"`
	MaxAge    int64  `json:"maxAge"`
	Remote    bool   `json:"remote"`
	CreatedAt int64  `json:"createdAt"`
}

// MarshalJSON implements json.Marshaler.
func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageJSON{
		URL:       p.url,
		Path:      p.path,
		MaxAge:    p.maxAge,
		Remote:    p.remote,
		CreatedAt: p.createdAt,
	})
}
