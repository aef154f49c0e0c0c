package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dancepulse/dancepulse/internal/models"
)

// requiredCityColumns are the columns every city list must carry. A list
// missing any of them aborts the run; it never silently skips.
var requiredCityColumns = []string{"name", "country_code", "latitude", "longitude", "hl", "gl"}

// LoadCities reads the city shortlist from a CSV file.
func LoadCities(path string) ([]models.City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening city list: %w", err)
	}
	defer f.Close()

	cities, err := ReadCities(f)
	if err != nil {
		return nil, fmt.Errorf("reading city list %s: %w", path, err)
	}
	return cities, nil
}

// ReadCities parses the city list from CSV. The first row is the header;
// column order is free but the required columns must all be present.
func ReadCities(r io.Reader) ([]models.City, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredCityColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var cities []models.City
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		city := models.City{
			GeonameID:   field(row, "geonameid"),
			Name:        field(row, "name"),
			CountryCode: field(row, "country_code"),
			Timezone:    field(row, "timezone"),
			HL:          field(row, "hl"),
			GL:          field(row, "gl"),
		}
		for _, required := range []string{"name", "country_code", "hl", "gl"} {
			if field(row, required) == "" {
				return nil, fmt.Errorf("line %d: empty required column %q", line, required)
			}
		}

		city.Latitude, err = strconv.ParseFloat(field(row, "latitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad latitude %q", line, field(row, "latitude"))
		}
		city.Longitude, err = strconv.ParseFloat(field(row, "longitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad longitude %q", line, field(row, "longitude"))
		}
		cities = append(cities, city)
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("city list is empty")
	}
	return cities, nil
}
