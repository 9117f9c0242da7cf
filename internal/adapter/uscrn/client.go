package uscrn

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/uscrn-etl/internal/domain"
)

// Getter fetches the body of a URL. *Fetcher implements it.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// Client addresses the hourly02 archive: one directory page per year and one
// text file per station and year.
type Client struct {
	getter  Getter
	baseURL string
	marker  string
}

// NewClient returns a Client rooted at baseURL. Files are recognized by marker.
func NewClient(getter Getter, baseURL, marker string) *Client {
	if marker == "" {
		marker = domain.DefaultStationMarker
	}
	return &Client{getter: getter, baseURL: strings.TrimRight(baseURL, "/"), marker: marker}
}

// YearURL is the directory listing for a year: {base}/{year}/.
func (c *Client) YearURL(year int) string {
	return c.baseURL + "/" + strconv.Itoa(year) + "/"
}

// StationURL is one station file: {base}/{year}/{file}.
func (c *Client) StationURL(year int, file string) string {
	return c.YearURL(year) + url.PathEscape(file)
}

// ListStationFiles enumerates the station files published for year. Any
// failure wraps domain.ErrEnumeration.
func (c *Client) ListStationFiles(ctx context.Context, year int) ([]string, error) {
	page, err := c.getter.Get(ctx, c.YearURL(year))
	if err != nil {
		return nil, fmt.Errorf("%w: year %d: %w", domain.ErrEnumeration, year, err)
	}
	return domain.ExtractStationFiles(page, c.marker), nil
}

// FetchStation returns the text content of one station file with any markup
// removed.
func (c *Client) FetchStation(ctx context.Context, year int, file string) (string, error) {
	body, err := c.getter.Get(ctx, c.StationURL(year, file))
	if err != nil {
		return "", err
	}
	return domain.PlainText(body), nil
}
