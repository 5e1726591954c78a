package bracket

type Team struct {
	Meta
	Name        string  `json:"name"`
	Logo        string  `json:"logo"`
	Description string  `json:"description"`
	Coach       string  `json:"coach"`
	HomeVenue   string  `json:"homeVenue"`
	FoundedDate string  `json:"foundedDate"`
	Players     []int64 `json:"players"`
}

type Player struct {
	Meta
	Name         string `json:"name"`
	Age          *int   `json:"age"`
	Position     string `json:"position"`
	JerseyNumber *int   `json:"jerseyNumber"`
	TeamID       *int64 `json:"teamId"`
	Nationality  string `json:"nationality"`
	Email        string `json:"email"`
}
