package market

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// Client fetches market data from Yahoo Finance. Daily history and quotes
// go through the finance-go library; statements and corporate events use
// the public JSON endpoints directly.
type Client struct {
	http  *resty.Client
	cache *CacheManager
	retry *RetryConfig
	now   func() time.Time
}

// Options configures a Client.
type Options struct {
	CacheDir     string
	CacheTTL     time.Duration
	CacheEnabled bool
	Retry        *RetryConfig
	Timeout      time.Duration
	BaseURL      string
}

// NewClient creates a market data client.
func NewClient(opts Options) *Client {
	if opts.Retry == nil {
		opts.Retry = DefaultRetryConfig()
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = yahooBaseURL
	}

	http := resty.New()
	http.SetBaseURL(opts.BaseURL)
	http.SetTimeout(opts.Timeout)
	http.SetHeader("User-Agent", "Mozilla/5.0")

	return &Client{
		http:  http,
		cache: NewCacheManager(filepath.Join(opts.CacheDir, "yahoo"), opts.CacheTTL, opts.CacheEnabled),
		retry: opts.Retry,
		now:   time.Now,
	}
}

func (c *Client) cacheKey(symbol string, period Period, extra string) map[string]interface{} {
	key := map[string]interface{}{
		"symbol": symbol,
		"period": string(period),
	}
	if extra != "" {
		key["extra"] = extra
	}
	return key
}

func apiError(status int, body string) error {
	err := fmt.Errorf("API error %d: %s", status, body)
	// Yahoo answers 404 for symbols it does not know; retrying cannot help.
	if status == 404 || status == 400 {
		return Permanent(err)
	}
	return err
}
