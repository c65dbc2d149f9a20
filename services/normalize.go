package services

import (
	"fmt"
	"time"

	"nfl-pickem-go/models"
)

// NormalizeEvent converts one raw upstream event into a canonical Game.
// An error means the single event is malformed (missing competition data or
// ambiguous home/away tagging); callers skip it and continue with the rest
// of the batch.
func NormalizeEvent(event *ESPNEvent, year, week int) (*models.Game, error) {
	if len(event.Competitions) == 0 {
		return nil, fmt.Errorf("event %s: missing competitions", event.ID)
	}

	competitors := event.Competitions[0].Competitors
	if len(competitors) == 0 {
		return nil, fmt.Errorf("event %s: missing competitors", event.ID)
	}

	var home, away *ESPNCompetitor
	for i := range competitors {
		switch competitors[i].HomeAway {
		case "home":
			if home != nil {
				return nil, fmt.Errorf("event %s: multiple home competitors", event.ID)
			}
			home = &competitors[i]
		case "away":
			if away != nil {
				return nil, fmt.Errorf("event %s: multiple away competitors", event.ID)
			}
			away = &competitors[i]
		}
	}
	if home == nil || away == nil {
		return nil, fmt.Errorf("event %s: missing home or away competitor", event.ID)
	}

	date, err := parseEventDate(event.Date)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", event.ID, err)
	}

	game := &models.Game{
		EventID: event.ID,
		Date:    date,
		Week:    week,
		Year:    year,
		Away:    normalizeSide(away),
		Home:    normalizeSide(home),
	}
	game.Status = normalizeStatus(event, game)

	return game, nil
}

func normalizeSide(c *ESPNCompetitor) models.TeamSide {
	side := models.TeamSide{
		ID:   c.Team.ID,
		Name: c.Team.DisplayName,
		Logo: c.Team.Logo,
	}
	if len(c.Records) > 0 {
		side.Record = c.Records[0].Summary
	}
	if c.Score != nil {
		score := int(*c.Score)
		side.Score = &score
	}
	return side
}

// normalizeStatus derives the three-state status and its display strings.
// FINAL iff the upstream completed flag is set; else PRE iff the upstream
// state reads "pre"; everything else is LIVE.
func normalizeStatus(event *ESPNEvent, game *models.Game) models.GameStatus {
	statusType := event.Status.Type

	var state models.GameState
	switch {
	case statusType.Completed:
		state = models.GameStateFinal
	case statusType.State == "pre":
		state = models.GameStatePre
	default:
		state = models.GameStateLive
	}
	status := models.GameStatus{State: state}
	switch state {
	case models.GameStateFinal:
		status.DisplayText = "Final"
		status.Detail = game.ScoreLine()
	case models.GameStateLive:
		status.DisplayText = game.ScoreLine()
		if event.Status.Period > 0 && event.Status.DisplayClock != "" {
			status.Detail = fmt.Sprintf("%s %s", PeriodLabel(event.Status.Period), event.Status.DisplayClock)
		} else if statusType.ShortDetail != "" {
			status.Detail = statusType.ShortDetail
		}
	default:
		status.DisplayText = formatGameTime(game.Date)
	}
	return status
}

// PeriodLabel formats a period number for display: 1st through 4th, then
// "OT" for the first overtime and "OT2", "OT3", ... beyond that.
func PeriodLabel(period int) string {
	switch period {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	case 4:
		return "4th"
	}
	if period == 5 {
		return "OT"
	}
	return fmt.Sprintf("OT%d", period-4)
}

func parseEventDate(raw string) (time.Time, error) {
	// Upstream dates look like "2024-09-08T00:20Z", sometimes with seconds
	for _, layout := range []string{"2006-01-02T15:04Z", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// formatGameTime renders the pre-game start time as a short locale string,
// e.g. "Sun, Sep 8, 1:00 PM"
func formatGameTime(date time.Time) string {
	return date.Format("Mon, Jan 2, 3:04 PM")
}
