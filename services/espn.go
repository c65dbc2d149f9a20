package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nfl-pickem-go/logging"
)

// ESPNService fetches NFL scoreboard data from ESPN's public API
type ESPNService struct {
	client  *http.Client
	baseURL string
	logger  *logging.Logger
}

// NewESPNService creates a new ESPN service
func NewESPNService() *ESPNService {
	return &ESPNService{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://site.web.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard",
		logger:  logging.WithPrefix("espn"),
	}
}

// FlexInt decodes a score that the upstream API serves inconsistently as
// either a JSON number or a quoted string. Missing and empty values decode
// to nil at the pointer level.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' {
		s := string(data[1 : len(data)-1])
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", s, err)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid score %s: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

// ESPN API response structures

type ESPNResponse struct {
	Events []ESPNEvent `json:"events"`
	Week   ESPNWeek    `json:"week"`
	Season ESPNSeason  `json:"season"`
}

type ESPNWeek struct {
	Number int `json:"number"`
}

type ESPNSeason struct {
	Year int `json:"year"`
	Type int `json:"type"` // 1=preseason, 2=regular, 3=postseason
}

type ESPNEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Name         string            `json:"name,omitempty"`
	ShortName    string            `json:"shortName,omitempty"`
	Competitions []ESPNCompetition `json:"competitions"`
	Status       ESPNStatus        `json:"status"`
}

type ESPNCompetition struct {
	Competitors []ESPNCompetitor `json:"competitors"`
}

type ESPNCompetitor struct {
	HomeAway string       `json:"homeAway"`
	Score    *FlexInt     `json:"score,omitempty"`
	Team     ESPNTeam     `json:"team"`
	Records  []ESPNRecord `json:"records,omitempty"`
}

type ESPNTeam struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
}

type ESPNRecord struct {
	Summary string `json:"summary,omitempty"`
}

type ESPNStatus struct {
	Type         ESPNStatusType `json:"type"`
	DisplayClock string         `json:"displayClock,omitempty"`
	Period       int            `json:"period,omitempty"`
}

type ESPNStatusType struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Detail      string `json:"detail,omitempty"`
	ShortDetail string `json:"shortDetail,omitempty"`
}

// WeekInfo is the current league week metadata from the scoreboard response
type WeekInfo struct {
	Week       int `json:"week"`
	Year       int `json:"year"`
	SeasonType int `json:"seasonType"`
}

// GetCurrentWeek fetches current week/season metadata with a minimal query
func (e *ESPNService) GetCurrentWeek(ctx context.Context) (*WeekInfo, error) {
	resp, err := e.get(ctx, e.baseURL+"?limit=1")
	if err != nil {
		return nil, err
	}

	info := &WeekInfo{
		Week:       resp.Week.Number,
		Year:       resp.Season.Year,
		SeasonType: resp.Season.Type,
	}
	if info.Year == 0 {
		info.Year = time.Now().Year()
	}
	return info, nil
}

// GetWeekEvents fetches all events for a specific week and year. Postseason
// weeks 19-22 pass through unchanged; the upstream API uses the same numbers.
func (e *ESPNService) GetWeekEvents(ctx context.Context, year, week int) ([]ESPNEvent, error) {
	url := fmt.Sprintf("%s?week=%d&year=%d", e.baseURL, week, year)
	resp, err := e.get(ctx, url)
	if err != nil {
		return nil, err
	}

	e.logger.Infof("Fetched %d events for year %d week %d", len(resp.Events), year, week)
	return resp.Events, nil
}

func (e *ESPNService) get(ctx context.Context, url string) (*ESPNResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	e.logger.Debugf("GET %s", url)
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ESPN data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ESPN API returned status %d", resp.StatusCode)
	}

	var espnResp ESPNResponse
	if err := json.NewDecoder(resp.Body).Decode(&espnResp); err != nil {
		return nil, fmt.Errorf("failed to decode ESPN response: %w", err)
	}
	return &espnResp, nil
}

// HealthCheck verifies the upstream API is reachable
func (e *ESPNService) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, e.baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
