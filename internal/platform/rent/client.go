// Package rent fetches average rents from rent.com trend pages.
package rent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"takehome/internal/domain/tax"
)

const (
	defaultBaseURL = "https://www.rent.com"
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "takehome/1.0 (+rent-trends)"
	nextDataID     = "__NEXT_DATA__"
)

var (
	// ErrUpstreamStatus indicates a non-2xx response from the rent site.
	ErrUpstreamStatus = errors.New("rent: unexpected upstream status")
	// ErrNoPageData indicates the page carried no embedded data script.
	ErrNoPageData = errors.New("rent: page data not found")
	// ErrUnknownState indicates a state code with no rent.com slug.
	ErrUnknownState = errors.New("rent: unknown state")
)

var rentKeys = map[string]tax.Bedrooms{
	"avgStudioRent":       tax.BedroomsStudio,
	"avgOneBedroomRent":   tax.BedroomsOne,
	"avgTwoBedroomRent":   tax.BedroomsTwo,
	"avgThreeBedroomRent": tax.BedroomsThree,
}

// Client scrapes rent.com and implements tax.RentProvider.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ tax.RentProvider = (*Client)(nil)

// TrendsURL builds the rent-trends page address for a city.
func (c *Client) TrendsURL(state tax.Jurisdiction, city string) (string, error) {
	name, ok := tax.StateNames[state]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	slug := strings.ToLower(strings.Join(strings.Fields(city), "-"))
	return fmt.Sprintf("%s/%s/%s-apartments/rent-trends", c.baseURL, strings.ToLower(name), slug), nil
}

// FetchAverageRent downloads the trends page and extracts the per-bedroom averages.
func (c *Client) FetchAverageRent(ctx context.Context, state tax.Jurisdiction, city string) (tax.RentData, error) {
	url, err := c.TrendsURL(state, city)
	if err != nil {
		return tax.RentData{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tax.RentData{}, fmt.Errorf("rent: creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return tax.RentData{}, fmt.Errorf("rent: fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tax.RentData{}, fmt.Errorf("%w: %d from %s", ErrUpstreamStatus, resp.StatusCode, url)
	}

	return ParsePage(io.LimitReader(resp.Body, maxBodySize))
}

// ParsePage extracts rent data from the page's embedded __NEXT_DATA__ JSON.
func ParsePage(r io.Reader) (tax.RentData, error) {
	raw, err := nextData(r)
	if err != nil {
		return tax.RentData{}, err
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return tax.RentData{}, fmt.Errorf("rent: decoding page data: %w", err)
	}

	data := tax.RentData{AvgRent: map[tax.Bedrooms]float64{}}
	for key, bedrooms := range rentKeys {
		if amount, ok := findValue(doc, key).(float64); ok {
			data.AvgRent[bedrooms] = amount
		}
	}
	if name, ok := findValue(doc, "displayName").(string); ok {
		data.Location = name
	}
	return data, nil
}

func nextData(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("rent: parsing html: %w", err)
	}

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && attr(n, "id") == nextDataID {
			found = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if found == nil || found.FirstChild == nil {
		return "", ErrNoPageData
	}
	var sb strings.Builder
	for child := found.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findValue returns the first non-nil value stored under key, searching depth first.
// Object keys are visited in sorted order so the result does not depend on map iteration.
func findValue(node any, key string) any {
	switch v := node.(type) {
	case map[string]any:
		if value, ok := v[key]; ok && value != nil {
			return value
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if result := findValue(v[k], key); result != nil {
				return result
			}
		}
	case []any:
		for _, item := range v {
			if result := findValue(item, key); result != nil {
				return result
			}
		}
	}
	return nil
}
