package connpass

import "time"

// Event is one event listing. Optional wire fields are pointers and stay
// nil when the API omits them or sends null.
type Event struct {
	ID               int        `json:"id"                 yaml:"id"`
	Title            string     `json:"title"              yaml:"title"`
	Catch            string     `json:"catch"              yaml:"catch"`
	Description      string     `json:"description"        yaml:"description"`
	URL              string     `json:"url"                yaml:"url"`
	ImageURL         string     `json:"image_url"          yaml:"image_url"`
	HashTag          string     `json:"hash_tag"           yaml:"hash_tag"`
	StartedAt        time.Time  `json:"started_at"         yaml:"started_at"`
	EndedAt          time.Time  `json:"ended_at"           yaml:"ended_at"`
	Limit            *int       `json:"limit"              yaml:"limit"`
	EventType        EventType  `json:"event_type"         yaml:"event_type"`
	OpenStatus       OpenStatus `json:"open_status"        yaml:"open_status"`
	Group            *Group     `json:"group"              yaml:"group"`
	Address          string     `json:"address"            yaml:"address"`
	Place            string     `json:"place"              yaml:"place"`
	Lat              *float64   `json:"lat"                yaml:"lat"`
	Lon              *float64   `json:"lon"                yaml:"lon"`
	OwnerID          int        `json:"owner_id"           yaml:"owner_id"`
	OwnerNickname    string     `json:"owner_nickname"     yaml:"owner_nickname"`
	OwnerDisplayName string     `json:"owner_display_name" yaml:"owner_display_name"`
	Accepted         *int       `json:"accepted"           yaml:"accepted"`
	Waiting          *int       `json:"waiting"            yaml:"waiting"`
	UpdatedAt        time.Time  `json:"updated_at"         yaml:"updated_at"`
	Series           *Series    `json:"series"             yaml:"series"`
}

// Group is the group an event belongs to, as embedded in an Event.
type Group struct {
	ID        int    `json:"id"        yaml:"id"`
	Subdomain string `json:"subdomain" yaml:"subdomain"`
	Title     string `json:"title"     yaml:"title"`
	URL       string `json:"url"       yaml:"url"`
}

// Series is the legacy name of a group, still sent by some listings.
type Series struct {
	ID    int    `json:"id"    yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url"   yaml:"url"`
}

// EventsResponse is one page of events.
type EventsResponse struct {
	ResultsReturned  int     `json:"results_returned"  yaml:"results_returned"`
	ResultsStart     int     `json:"results_start"     yaml:"results_start"`
	ResultsAvailable int     `json:"results_available" yaml:"results_available"`
	Events           []Event `json:"events"            yaml:"events"`
}

var decodeGroup = object(func(f fields) (Group, error) {
	r := &reader{f: f}
	g := Group{
		ID:        req(r, "id", decodeInt),
		Subdomain: req(r, "subdomain", decodeString),
		Title:     req(r, "title", decodeString),
		URL:       req(r, "url", decodeString),
	}
	return g, r.err
})

var decodeSeries = object(func(f fields) (Series, error) {
	r := &reader{f: f}
	s := Series{
		ID:    req(r, "id", decodeInt),
		Title: req(r, "title", decodeString),
		URL:   req(r, "url", decodeString),
	}
	return s, r.err
})

var (
	decodeEventType  = enum(parseEventType)
	decodeOpenStatus = enum(parseOpenStatus)
)

var decodeEvent = object(func(f fields) (Event, error) {
	r := &reader{f: f}
	e := Event{
		ID:               req(r, "id", decodeInt),
		Title:            req(r, "title", decodeString),
		Catch:            req(r, "catch", decodeString),
		Description:      req(r, "description", decodeString),
		URL:              req(r, "url", decodeString),
		ImageURL:         req(r, "image_url", decodeString),
		HashTag:          req(r, "hash_tag", decodeString),
		StartedAt:        req(r, "started_at", decodeTime),
		EndedAt:          req(r, "ended_at", decodeTime),
		Limit:            opt(r, "limit", decodeInt),
		EventType:        req(r, "event_type", decodeEventType),
		OpenStatus:       req(r, "open_status", decodeOpenStatus),
		Group:            opt(r, "group", decodeGroup),
		Address:          req(r, "address", decodeString),
		Place:            req(r, "place", decodeString),
		Lat:              opt(r, "lat", decodeCoordinate),
		Lon:              opt(r, "lon", decodeCoordinate),
		OwnerID:          req(r, "owner_id", decodeInt),
		OwnerNickname:    req(r, "owner_nickname", decodeString),
		OwnerDisplayName: req(r, "owner_display_name", decodeString),
		Accepted:         opt(r, "accepted", decodeInt),
		Waiting:          opt(r, "waiting", decodeInt),
		UpdatedAt:        req(r, "updated_at", decodeTime),
		Series:           opt(r, "series", decodeSeries),
	}
	if r.err != nil {
		return Event{}, r.err
	}
	return e, nil
})

var decodeEventsResponse = object(func(f fields) (EventsResponse, error) {
	r := &reader{f: f}
	resp := EventsResponse{
		ResultsReturned:  req(r, "results_returned", decodeInt),
		ResultsStart:     req(r, "results_start", decodeInt),
		ResultsAvailable: req(r, "results_available", decodeInt),
		Events:           req(r, "events", listOf(decodeEvent)),
	}
	return resp, r.err
})
