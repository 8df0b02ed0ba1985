// Package calendar loads race calendars from CSV. It is the boundary
// adapter between external calendar data and the domain model; the models
// downstream only ever see validated RaceEvent values.
package calendar

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"fleetops/internal/model"
)

// Required CSV columns, matched case-insensitively by header name.
var requiredColumns = []string{
	"round", "race_name", "circuit_name", "city", "country",
	"race_date", "latitude", "longitude",
}

// EuropeanCountries is the default country filter for European-season runs.
var EuropeanCountries = []string{
	"Austria", "Azerbaijan", "Belgium", "France", "Germany", "Hungary",
	"Italy", "Monaco", "Netherlands", "Spain", "United Kingdom", "Russia",
	"Turkey",
}

// LoadFile reads a season calendar CSV from disk.
func LoadFile(path string, seasonYear int) ([]model.RaceEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Load(f, seasonYear)
}

// Load parses a calendar CSV and returns its races sorted by round.
// Coordinates outside their legal ranges fail the load.
func Load(r io.Reader, seasonYear int) ([]model.RaceEvent, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("calendar: read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("calendar: missing column %q", want)
		}
	}

	var races []model.RaceEvent
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("calendar: line %d: %w", line+1, err)
		}
		line++

		round, err := strconv.Atoi(strings.TrimSpace(rec[col["round"]]))
		if err != nil {
			return nil, fmt.Errorf("calendar: line %d: bad round: %w", line, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[col["latitude"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("calendar: line %d: bad latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[col["longitude"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("calendar: line %d: bad longitude: %w", line, err)
		}
		loc := model.Coordinate{Lat: lat, Lon: lon}
		if !loc.Valid() {
			return nil, fmt.Errorf("calendar: line %d: coordinate out of range (%g, %g)", line, lat, lon)
		}

		circuitName := strings.TrimSpace(rec[col["circuit_name"]])
		races = append(races, model.RaceEvent{
			Season: seasonYear,
			Round:  round,
			Name:   strings.TrimSpace(rec[col["race_name"]]),
			Circuit: model.Circuit{
				ID:       slug(circuitName),
				Name:     circuitName,
				City:     strings.TrimSpace(rec[col["city"]]),
				Country:  strings.TrimSpace(rec[col["country"]]),
				Location: loc,
			},
			Date: strings.TrimSpace(rec[col["race_date"]]),
		})
	}

	sort.SliceStable(races, func(a, b int) bool { return races[a].Round < races[b].Round })
	return races, nil
}

// FilterCountries keeps only races held in the listed countries, preserving
// order. A nil list means EuropeanCountries.
func FilterCountries(races []model.RaceEvent, countries []string) []model.RaceEvent {
	if countries == nil {
		countries = EuropeanCountries
	}
	allowed := make(map[string]bool, len(countries))
	for _, c := range countries {
		allowed[strings.ToLower(c)] = true
	}
	out := make([]model.RaceEvent, 0, len(races))
	for _, r := range races {
		if allowed[strings.ToLower(r.Circuit.Country)] {
			out = append(out, r)
		}
	}
	return out
}

func slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
