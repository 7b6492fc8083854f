package models

type Specialty struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Emoji string `json:"emoji"`
}

type Doctor struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	SpecialtyKey   string  `json:"specialty_key"`
	SpecialtyLabel string  `json:"specialty_label"`
	Rating         float64 `json:"rating"`
	About          string  `json:"about,omitempty"`
	Education      string  `json:"education,omitempty"`
	Focus          string  `json:"focus,omitempty"`
	Languages      string  `json:"languages,omitempty"`
	Experience     string  `json:"experience,omitempty"`
	Availability   string  `json:"availability,omitempty"`
}

type Department struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Hint  string `json:"hint"`
	Emoji string `json:"emoji"`
}

type EmergencyContact struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	Phone    string `json:"phone"`
}

type Pharmacy struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
