package itunes

// Track is one song result from the iTunes Search API.
type Track struct {
	ID          int64
	Name        string
	Artist      string
	Album       string // Collection (album) name
	ReleaseDate string // RFC3339 timestamp as returned by the API
	Genre       string
	Kind        string // "song" for track hits
}

// searchResponse is the raw response from the search endpoint.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

// searchResult is a single raw hit; only the fields we read are mapped.
type searchResult struct {
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	ReleaseDate      string `json:"releaseDate"`
	PrimaryGenreName string `json:"primaryGenreName"`
	Kind             string `json:"kind"`
}
