package spotify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/moodtunes/moodtunes-backend/recommender"
	"github.com/moodtunes/moodtunes-backend/utils"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com"

	requestTimeout = 10 * time.Second

	// Refresh slightly before the advertised expiry to avoid racing it.
	tokenExpirySlack = 30 * time.Second
)

// Client is the catalog-search collaborator. It exchanges client
// credentials for a bearer token and queries the track search endpoint.
type Client struct {
	http         *resty.Client
	accountsHTTP *resty.Client
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a Client from SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET.
func New() (*Client, error) {
	id := os.Getenv("SPOTIFY_CLIENT_ID")
	secret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if id == "" || secret == "" {
		return nil, fmt.Errorf("SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variable not set")
	}
	return newClient(defaultAccountsURL, defaultAPIURL, id, secret), nil
}

// NewWithBaseURLs builds a Client against explicit endpoints, used by tests.
func NewWithBaseURLs(accountsURL string, apiURL string, clientID string, clientSecret string) *Client {
	return newClient(accountsURL, apiURL, clientID, clientSecret)
}

func newClient(accountsURL string, apiURL string, clientID string, clientSecret string) *Client {
	return &Client{
		http:         resty.New().SetBaseURL(apiURL).SetTimeout(requestTimeout),
		accountsHTTP: resty.New().SetBaseURL(accountsURL).SetTimeout(requestTimeout),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			ExternalUrls struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
			PreviewURL *string `json:"preview_url"`
		} `json:"items"`
	} `json:"tracks"`
}

// token returns a cached bearer token, performing the client-credentials
// exchange when none is held or the held one is about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var parsed tokenResponse
	resp, err := c.accountsHTTP.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&parsed).
		Post("/api/token")
	if err != nil {
		return "", &utils.CollaboratorUnavailableError{Collaborator: "catalog", Err: err}
	}
	if resp.IsError() || parsed.AccessToken == "" {
		return "", &utils.CollaboratorUnavailableError{
			Collaborator: "catalog",
			Err:          fmt.Errorf("token exchange failed with status %d", resp.StatusCode()),
		}
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenExpirySlack)
	return c.accessToken, nil
}

// SearchTrack queries the catalog for the closest match to "{title}
// {artist}". Absence of a match is a valid response and returns (nil, nil).
func (c *Client) SearchTrack(ctx context.Context, title string, artist string) (*recommender.Track, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     strings.TrimSpace(title + " " + artist),
			"type":  "track",
			"limit": "1",
		}).
		SetResult(&parsed).
		Get("/v1/search")
	if err != nil {
		return nil, &utils.CollaboratorUnavailableError{Collaborator: "catalog", Err: err}
	}
	if resp.IsError() {
		return nil, &utils.CollaboratorUnavailableError{
			Collaborator: "catalog",
			Err:          fmt.Errorf("search failed with status %d", resp.StatusCode()),
		}
	}
	if len(parsed.Tracks.Items) == 0 {
		return nil, nil
	}

	item := parsed.Tracks.Items[0]
	track := &recommender.Track{
		Title:        item.Name,
		ExternalLink: item.ExternalUrls.Spotify,
		PreviewLink:  item.PreviewURL,
	}
	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}
	return track, nil
}
