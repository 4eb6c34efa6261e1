package api

// loginRequest is the body of POST /login and POST /set-admin.
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// tokenResponse is the success body of POST /login.
type tokenResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// urlRequest is the body of seed-site routes addressing one url.
type urlRequest struct {
	URL   string   `json:"url" binding:"required"`
	Seeds []string `json:"seeds"`
}

// urlUpdateRequest is the body of POST /update-seed-url.
type urlUpdateRequest struct {
	URL    string `json:"url" binding:"required"`
	OldURL string `json:"old_url" binding:"required"`
}

// seedRequest is the body of routes mutating one suffix of a seed site.
type seedRequest struct {
	URL  string `json:"url" binding:"required"`
	Seed string `json:"seed" binding:"required"`
}

// seedUpdateRequest is the body of POST /update-seed-url-seed.
type seedUpdateRequest struct {
	URL     string `json:"url" binding:"required"`
	OldSeed string `json:"old_seed" binding:"required"`
	NewSeed string `json:"new_seed" binding:"required"`
}

// startCrawlRequest is the body of POST /start-crawl.
type startCrawlRequest struct {
	Regex   []string `json:"regex"`
	MaxIter *int     `json:"max_iter"`
}

// startCrawlResponse is the body returned by POST /start-crawl.
type startCrawlResponse struct {
	Message     string  `json:"message"`
	StreamToken *string `json:"streamToken"`
}

// searchRequest is the body of POST /search.
type searchRequest struct {
	Query string `json:"query" binding:"required"`
}
