package models

// Category is a deal category shown in the consumer app.
type Category struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	Icon      string `json:"icon,omitempty" firestore:"icon,omitempty"`
	Color     string `json:"color,omitempty" firestore:"color,omitempty"`
	Slug      string `json:"slug" firestore:"slug"`
	IsActive  bool   `json:"isActive" firestore:"isActive"`
	SortOrder int    `json:"sortOrder" firestore:"sortOrder"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// City is a supported city.
type City struct {
	Name        string      `json:"name" firestore:"name"`
	Slug        string      `json:"slug" firestore:"slug"`
	IsActive    bool        `json:"isActive" firestore:"isActive"`
	SortOrder   int         `json:"sortOrder" firestore:"sortOrder"`
	Coordinates Coordinates `json:"coordinates" firestore:"coordinates"`
}

// SystemConfig is the read-only reference document at system_config/main.
type SystemConfig struct {
	Categories    []Category `json:"categories" firestore:"categories"`
	Cities        []City     `json:"cities" firestore:"cities"`
	BusinessTypes []string   `json:"businessTypes" firestore:"businessTypes"`
}
