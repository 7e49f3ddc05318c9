package connpass

import "time"

// User is an entry of the users resource.
type User struct {
	ID                  int       `json:"id"                    yaml:"id"`
	Nickname            string    `json:"nickname"              yaml:"nickname"`
	DisplayName         string    `json:"display_name"          yaml:"display_name"`
	Description         *string   `json:"description"           yaml:"description"`
	URL                 string    `json:"url"                   yaml:"url"`
	ImageURL            *string   `json:"image_url"             yaml:"image_url"`
	CreatedAt           time.Time `json:"created_at"            yaml:"created_at"`
	AttendedEventCount  *int      `json:"attended_event_count"  yaml:"attended_event_count"`
	OrganizeEventCount  *int      `json:"organize_event_count"  yaml:"organize_event_count"`
	PresenterEventCount *int      `json:"presenter_event_count" yaml:"presenter_event_count"`
	BookmarkEventCount  *int      `json:"bookmark_event_count"  yaml:"bookmark_event_count"`
}

// UsersResponse is one page of users.
type UsersResponse struct {
	ResultsReturned  int    `json:"results_returned"  yaml:"results_returned"`
	ResultsStart     int    `json:"results_start"     yaml:"results_start"`
	ResultsAvailable int    `json:"results_available" yaml:"results_available"`
	Users            []User `json:"users"             yaml:"users"`
}

var decodeUser = object(func(f fields) (User, error) {
	r := &reader{f: f}
	u := User{
		ID:                  req(r, "id", decodeInt),
		Nickname:            req(r, "nickname", decodeString),
		DisplayName:         req(r, "display_name", decodeString),
		Description:         opt(r, "description", decodeString),
		URL:                 req(r, "url", decodeString),
		ImageURL:            opt(r, "image_url", decodeString),
		CreatedAt:           req(r, "created_at", decodeTime),
		AttendedEventCount:  opt(r, "attended_event_count", decodeInt),
		OrganizeEventCount:  opt(r, "organize_event_count", decodeInt),
		PresenterEventCount: opt(r, "presenter_event_count", decodeInt),
		BookmarkEventCount:  opt(r, "bookmark_event_count", decodeInt),
	}
	return u, r.err
})

var decodeUsersResponse = object(func(f fields) (UsersResponse, error) {
	r := &reader{f: f}
	resp := UsersResponse{
		ResultsReturned:  req(r, "results_returned", decodeInt),
		ResultsStart:     req(r, "results_start", decodeInt),
		ResultsAvailable: req(r, "results_available", decodeInt),
		Users:            req(r, "users", listOf(decodeUser)),
	}
	return resp, r.err
})
