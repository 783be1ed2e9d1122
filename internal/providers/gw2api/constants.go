package gw2api

import "time"

const (
	providerName       = "gw2api"
	defaultBaseURL     = "https://api.guildwars2.com/v1"
	defaultHTTPTimeout = 5 * time.Second
	defaultLanguage    = "en"
	maxErrorBody       = 512
)

const (
	pathWorldNames     = "/world_names.json"
	pathMapNames       = "/map_names.json"
	pathEventNames     = "/event_names.json"
	pathObjectiveNames = "/wvw/objective_names.json"
	pathEvents         = "/events.json"
	pathMatches        = "/wvw/matches.json"
	pathMatchDetails   = "/wvw/match_details.json"
)
