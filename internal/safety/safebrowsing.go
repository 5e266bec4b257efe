package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultSafeBrowsingURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

	clientID      = "Url-Shorten-Worker"
	clientVersion = "1.0.7"
	maxBodyBytes  = 1 << 20
)

var errOracleStatus = errors.New("unexpected safe browsing status")

var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"POTENTIALLY_HARMFUL_APPLICATION",
	"UNWANTED_SOFTWARE",
}

type sbRequest struct {
	Client     sbClient     `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbThreatInfo struct {
	ThreatTypes      []string  `json:"threatTypes"`
	PlatformTypes    []string  `json:"platformTypes"`
	ThreatEntryTypes []string  `json:"threatEntryTypes"`
	ThreatEntries    []sbEntry `json:"threatEntries"`
}

type sbEntry struct {
	URL string `json:"url"`
}

type sbResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

// SafeBrowsing is an Oracle backed by the Google Safe Browsing v4 Lookup API.
type SafeBrowsing struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

var _ Oracle = (*SafeBrowsing)(nil)

// NewSafeBrowsing creates a client for apiKey. An empty endpoint selects the
// public API; a nil client gets a 5 second timeout.
func NewSafeBrowsing(apiKey, endpoint string, client *http.Client) *SafeBrowsing {
	if endpoint == "" {
		endpoint = DefaultSafeBrowsingURL
	}

	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	return &SafeBrowsing{apiKey: apiKey, endpoint: endpoint, client: client}
}

func (s *SafeBrowsing) Lookup(ctx context.Context, target string) (bool, error) {
	body, err := json.Marshal(sbRequest{
		Client: sbClient{ClientID: clientID, ClientVersion: clientVersion},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbEntry{{URL: target}},
		},
	})
	if err != nil {
		return false, fmt.Errorf("encode lookup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"?key="+url.QueryEscape(s.apiKey), bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build lookup: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: %d", errOracleStatus, resp.StatusCode)
	}

	var out sbResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return false, fmt.Errorf("decode lookup: %w", err)
	}

	return len(out.Matches) > 0, nil
}
