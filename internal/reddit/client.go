// Package reddit is a minimal OAuth client for the slice of the Reddit API
// the bot needs: list the account's recent submissions, search a subreddit,
// submit a link post, and distinguish it as a moderator.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAuthURL = "https://www.reddit.com"
	defaultAPIURL  = "https://oauth.reddit.com"
	httpTimeout    = 30 * time.Second

	// Tokens are refreshed this long before their reported expiry.
	tokenExpiryMargin = time.Minute
)

// Credentials holds the OAuth application secrets and the refresh token of
// the posting account.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	UserAgent    string
}

// Submission is one post as stored on Reddit.
type Submission struct {
	Name      string // fullname, e.g. "t3_abc123"
	Title     string
	URL       string // the submitted link
	Permalink string
	Author    string
}

// Client talks to the Reddit API on behalf of one account.
type Client struct {
	creds     Credentials
	subreddit string
	client    *http.Client
	authURL   string
	apiURL    string

	token    string
	tokenExp time.Time
	username string
}

// New creates a client posting to the given subreddit.
func New(creds Credentials, subreddit string) (*Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, errors.New("reddit: client id, secret, and refresh token are required")
	}
	if strings.TrimSpace(subreddit) == "" {
		return nil, errors.New("reddit: subreddit is required")
	}
	if creds.UserAgent == "" {
		creds.UserAgent = "subherald/1.0"
	}
	return &Client{
		creds:     creds,
		subreddit: subreddit,
		client:    &http.Client{Timeout: httpTimeout},
		authURL:   defaultAuthURL,
		apiURL:    defaultAPIURL,
	}, nil
}

// Subreddit returns the community this client posts to.
func (c *Client) Subreddit() string {
	return c.subreddit
}

// Me returns the username of the authenticated account.
func (c *Client) Me(ctx context.Context) (string, error) {
	if c.username != "" {
		return c.username, nil
	}

	var me struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/api/v1/me", nil, &me); err != nil {
		return "", fmt.Errorf("identify account: %w", err)
	}
	if me.Name == "" {
		return "", errors.New("identify account: empty username")
	}
	c.username = me.Name
	return c.username, nil
}

// Recent returns the account's most recent submissions, newest first.
// Reddit exposes these via direct listing even while its search index lags,
// which is what makes them useful for duplicate checks.
func (c *Client) Recent(ctx context.Context, limit int) ([]Submission, error) {
	user, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(limit))

	var l listing
	if err := c.get(ctx, "/user/"+user+"/submitted", q, &l); err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	return l.submissions(), nil
}

// SearchDomain searches the subreddit's full history for link posts to the
// given domain, restricted to the authenticated account's own posts.
func (c *Client) SearchDomain(ctx context.Context, domain string) ([]Submission, error) {
	user, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", "site:"+domain)
	q.Set("restrict_sr", "1")
	q.Set("sort", "new")
	q.Set("limit", "100")

	var l listing
	if err := c.get(ctx, "/r/"+c.subreddit+"/search", q, &l); err != nil {
		return nil, fmt.Errorf("search %s: %w", domain, err)
	}

	var own []Submission
	for _, s := range l.submissions() {
		if s.Author == user {
			own = append(own, s)
		}
	}
	return own, nil
}

// Submit creates a link post in the subreddit and returns the stored submission.
func (c *Client) Submit(ctx context.Context, title, link string) (Submission, error) {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("kind", "link")
	form.Set("sr", c.subreddit)
	form.Set("title", title)
	form.Set("url", link)

	var resp submitResponse
	if err := c.post(ctx, "/api/submit", form, &resp); err != nil {
		return Submission{}, fmt.Errorf("submit %q: %w", link, err)
	}
	if len(resp.JSON.Errors) > 0 {
		return Submission{}, fmt.Errorf("submit %q: api error %v", link, resp.JSON.Errors[0])
	}
	if resp.JSON.Data.Name == "" {
		return Submission{}, fmt.Errorf("submit %q: no fullname in response", link)
	}

	return Submission{
		Name:      resp.JSON.Data.Name,
		Title:     title,
		URL:       link,
		Permalink: resp.JSON.Data.URL,
	}, nil
}

// Distinguish marks the submission with the green moderator badge, unstickied.
func (c *Client) Distinguish(ctx context.Context, fullname string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("how", "yes")
	form.Set("sticky", "false")
	form.Set("id", fullname)

	if err := c.post(ctx, "/api/distinguish", form, nil); err != nil {
		return fmt.Errorf("distinguish %s: %w", fullname, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	token, err := c.ensureToken(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// ensureToken returns a valid access token, exchanging the refresh token
// when the cached one is missing or close to expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if c.token != "" && nowFunc().Before(c.tokenExp.Add(-tokenExpiryMargin)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.creds.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh token: status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("refresh token: empty access token")
	}

	c.token = tok.AccessToken
	c.tokenExp = nowFunc().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// nowFunc is the clock used for token expiry decisions, overridable in tests.
var nowFunc = time.Now

type listing struct {
	Data struct {
		Children []listingChild `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Data listingPost `json:"data"`
}

type listingPost struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Permalink string `json:"permalink"`
	Author    string `json:"author"`
}

func (l listing) submissions() []Submission {
	subs := make([]Submission, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		p := child.Data
		subs = append(subs, Submission{
			Name:      p.Name,
			Title:     p.Title,
			URL:       p.URL,
			Permalink: p.Permalink,
			Author:    p.Author,
		})
	}
	return subs
}

type submitResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}
