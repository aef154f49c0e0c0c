package models

import "fmt"

// City is one row of the city shortlist that drives the ingestion run.
// Name, CountryCode, Latitude, Longitude, HL and GL are all mandatory;
// the CSV loader aborts the run if any required column is missing.
type City struct {
	GeonameID   string
	Name        string
	CountryCode string
	Latitude    float64
	Longitude   float64
	Timezone    string
	HL          string // interface language hint, e.g. "en", "pt"
	GL          string // region hint, e.g. "us", "br"
}

// Location renders the "City, CC" form the search API expects.
func (c City) Location() string {
	return fmt.Sprintf("%s, %s", c.Name, c.CountryCode)
}
