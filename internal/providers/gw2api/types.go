package gw2api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// idString accepts ids encoded either as JSON strings or numbers; the v1 API mixes both.
type idString string

func (s *idString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = idString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = idString(n.String())
	return nil
}

type nameEntry struct {
	ID   idString `json:"id"`
	Name string   `json:"name"`
}

type eventsResponse struct {
	Events []eventEntry `json:"events"`
}

type eventEntry struct {
	EventID idString `json:"event_id"`
	WorldID idString `json:"world_id"`
	MapID   idString `json:"map_id"`
	State   string   `json:"state"`
}

type matchesResponse struct {
	Matches []matchEntry `json:"wvw_matches"`
}

type matchEntry struct {
	ID           idString `json:"wvw_match_id"`
	RedWorldID   idString `json:"red_world_id"`
	BlueWorldID  idString `json:"blue_world_id"`
	GreenWorldID idString `json:"green_world_id"`
}

type detailsResponse struct {
	MatchID idString   `json:"match_id"`
	Scores  []int      `json:"scores"`
	Maps    []mapEntry `json:"maps"`
}

type mapEntry struct {
	Type       string           `json:"type"`
	Scores     []int            `json:"scores"`
	Objectives []objectiveEntry `json:"objectives"`
}

type objectiveEntry struct {
	ID         idString `json:"id"`
	Owner      string   `json:"owner"`
	OwnerGuild string   `json:"owner_guild,omitempty"`
}

var errMissingField = errors.New("missing required field")

func (e eventsResponse) validate() error {
	if e.Events == nil {
		return fmt.Errorf("events: %w", errMissingField)
	}
	for i, ev := range e.Events {
		if ev.EventID == "" || ev.WorldID == "" || ev.State == "" {
			return fmt.Errorf("events[%d]: %w", i, errMissingField)
		}
	}
	return nil
}

func (m matchesResponse) validate() error {
	if m.Matches == nil {
		return fmt.Errorf("wvw_matches: %w", errMissingField)
	}
	for i, mt := range m.Matches {
		if mt.ID == "" || mt.RedWorldID == "" || mt.BlueWorldID == "" || mt.GreenWorldID == "" {
			return fmt.Errorf("wvw_matches[%d]: %w", i, errMissingField)
		}
	}
	return nil
}

func (d detailsResponse) validate() error {
	if d.MatchID == "" {
		return fmt.Errorf("match_id: %w", errMissingField)
	}
	if len(d.Scores) != 3 {
		return fmt.Errorf("scores: expected 3 entries, got %d", len(d.Scores))
	}
	for i, m := range d.Maps {
		if m.Type == "" {
			return fmt.Errorf("maps[%d].type: %w", i, errMissingField)
		}
		if len(m.Scores) != 3 {
			return fmt.Errorf("maps[%d].scores: expected 3 entries, got %d", i, len(m.Scores))
		}
		for j, o := range m.Objectives {
			if o.ID == "" {
				return fmt.Errorf("maps[%d].objectives[%d]: %w", i, j, errMissingField)
			}
		}
	}
	return nil
}
