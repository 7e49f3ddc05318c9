package connpass

// GroupDetail is an entry of the groups resource.
type GroupDetail struct {
	ID               int     `json:"id"                 yaml:"id"`
	Subdomain        string  `json:"subdomain"          yaml:"subdomain"`
	Title            string  `json:"title"              yaml:"title"`
	SubTitle         *string `json:"sub_title"          yaml:"sub_title"`
	URL              string  `json:"url"                yaml:"url"`
	Description      *string `json:"description"        yaml:"description"`
	OwnerText        *string `json:"owner_text"         yaml:"owner_text"`
	ImageURL         *string `json:"image_url"          yaml:"image_url"`
	WebsiteURL       *string `json:"website_url"        yaml:"website_url"`
	WebsiteName      *string `json:"website_name"       yaml:"website_name"`
	TwitterUsername  *string `json:"twitter_username"   yaml:"twitter_username"`
	FacebookURL      *string `json:"facebook_url"       yaml:"facebook_url"`
	MemberUsersCount *int    `json:"member_users_count" yaml:"member_users_count"`
}

// GroupsResponse is one page of groups.
type GroupsResponse struct {
	ResultsReturned  int           `json:"results_returned"  yaml:"results_returned"`
	ResultsStart     int           `json:"results_start"     yaml:"results_start"`
	ResultsAvailable int           `json:"results_available" yaml:"results_available"`
	Groups           []GroupDetail `json:"groups"            yaml:"groups"`
}

var decodeGroupDetail = object(func(f fields) (GroupDetail, error) {
	r := &reader{f: f}
	g := GroupDetail{
		ID:               req(r, "id", decodeInt),
		Subdomain:        req(r, "subdomain", decodeString),
		Title:            req(r, "title", decodeString),
		SubTitle:         opt(r, "sub_title", decodeString),
		URL:              req(r, "url", decodeString),
		Description:      opt(r, "description", decodeString),
		OwnerText:        opt(r, "owner_text", decodeString),
		ImageURL:         opt(r, "image_url", decodeString),
		WebsiteURL:       opt(r, "website_url", decodeString),
		WebsiteName:      opt(r, "website_name", decodeString),
		TwitterUsername:  opt(r, "twitter_username", decodeString),
		FacebookURL:      opt(r, "facebook_url", decodeString),
		MemberUsersCount: opt(r, "member_users_count", decodeInt),
	}
	return g, r.err
})

var decodeGroupsResponse = object(func(f fields) (GroupsResponse, error) {
	r := &reader{f: f}
	resp := GroupsResponse{
		ResultsReturned:  req(r, "results_returned", decodeInt),
		ResultsStart:     req(r, "results_start", decodeInt),
		ResultsAvailable: req(r, "results_available", decodeInt),
		Groups:           req(r, "groups", listOf(decodeGroupDetail)),
	}
	return resp, r.err
})
