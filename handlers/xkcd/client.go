package xkcd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"discord-modbot/utils"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultBaseURL = "https://xkcd.com"
	explainBaseURL = "https://www.explainxkcd.com/wiki/index.php/"
	requestTimeout = 10 * time.Second
)

var (
	ErrHTTP    = errors.New("xkcd request failed")
	ErrTimeout = errors.New("xkcd request timed out")
)

// Comic is the subset of the xkcd JSON API the bot renders.
type Comic struct {
	Num   int    `json:"num"`
	Title string `json:"safe_title"`
	Image string `json:"img"`
	Alt   string `json:"alt"`
}

func (c *Comic) ComicURL() string {
	return fmt.Sprintf("%s/%d/", DefaultBaseURL, c.Num)
}

func (c *Comic) ExplanationURL() string {
	return fmt.Sprintf("%s%d", explainBaseURL, c.Num)
}

type Client struct {
	baseURL string
	http    *http.Client
	intN    func(n int) int
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithIntN replaces the random source; intN must return a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(c *Client) {
		c.intN = intN
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    utils.NewHTTPClient(requestTimeout),
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Latest(ctx context.Context) (*Comic, error) {
	return c.fetch(ctx, c.baseURL+"/info.0.json")
}

func (c *Client) Get(ctx context.Context, num int) (*Comic, error) {
	if num <= 0 {
		return nil, goerr.Wrap(ErrHTTP, "comic number must be positive", goerr.V("num", num))
	}
	return c.fetch(ctx, fmt.Sprintf("%s/%d/info.0.json", c.baseURL, num))
}

// Random picks a comic between 1 and the latest one.
func (c *Client) Random(ctx context.Context) (*Comic, error) {
	latest, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest.Num <= 1 {
		return latest, nil
	}
	return c.Get(ctx, c.intN(latest.Num)+1)
}

func (c *Client) fetch(ctx context.Context, url string) (*Comic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build xkcd request", goerr.V("url", url))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, goerr.Wrap(errors.Join(ErrTimeout, err), "xkcd request timed out", goerr.V("url", url))
		}
		return nil, goerr.Wrap(errors.Join(ErrHTTP, err), "failed to call xkcd", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.Wrap(ErrHTTP, "unexpected xkcd status",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode))
	}

	var comic Comic
	if err := json.NewDecoder(resp.Body).Decode(&comic); err != nil {
		if isTimeout(err) {
			return nil, goerr.Wrap(errors.Join(ErrTimeout, err), "xkcd response timed out", goerr.V("url", url))
		}
		return nil, goerr.Wrap(errors.Join(ErrHTTP, err), "failed to decode xkcd comic", goerr.V("url", url))
	}
	return &comic, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
