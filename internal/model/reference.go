package model

// MediaType is a row of the seeded `media_types` lookup table.
type MediaType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// RatingLevel is a row of the seeded `rating_scale` lookup table.
type RatingLevel struct {
	ID          int    `json:"id"`
	Value       int    `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Genre is a row of the seeded `genres` lookup table. Items link to
// genres through the media_genres junction table.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
