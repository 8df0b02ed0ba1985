package calendar

import (
	"strings"
	"testing"
)

const sampleCSV = `round,race_name,circuit_name,city,country,race_date,latitude,longitude
2,Spanish GP,Circuit de Barcelona-Catalunya,Barcelona,Spain,2025-06-01,41.5700,2.2611
1,Monaco GP,Circuit de Monaco,Monte Carlo,Monaco,2025-05-25,43.7347,7.4206
3,Canadian GP,Circuit Gilles Villeneuve,Montreal,Canada,2025-06-15,45.5000,-73.5228
`

func TestLoadSortsByRound(t *testing.T) {
	races, err := Load(strings.NewReader(sampleCSV), 2025)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(races) != 3 {
		t.Fatalf("races: got %d, want 3", len(races))
	}
	for i, want := range []string{"Monaco GP", "Spanish GP", "Canadian GP"} {
		if races[i].Name != want {
			t.Fatalf("race %d: got %q, want %q", i, races[i].Name, want)
		}
	}
	if races[0].Season != 2025 || races[0].Round != 1 {
		t.Fatalf("race 0: %+v", races[0])
	}
	if races[0].Circuit.ID != "circuit-de-monaco" {
		t.Fatalf("circuit id: %q", races[0].Circuit.ID)
	}
	if races[2].Circuit.Location.Lon != -73.5228 {
		t.Fatalf("longitude: %g", races[2].Circuit.Location.Lon)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	csv := "round,race_name,city,country,race_date,latitude,longitude\n1,X,Y,Z,2025-01-01,1,2\n"
	if _, err := Load(strings.NewReader(csv), 2025); err == nil {
		t.Fatal("expected error for missing circuit_name column")
	}
}

func TestLoadRejectsBadCoordinates(t *testing.T) {
	csv := `round,race_name,circuit_name,city,country,race_date,latitude,longitude
1,Broken GP,Nowhere,X,Y,2025-01-01,95.0,2.0
`
	if _, err := Load(strings.NewReader(csv), 2025); err == nil {
		t.Fatal("expected error for latitude out of range")
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	csv := `round,race_name,circuit_name,city,country,race_date,latitude,longitude
one,Broken GP,Nowhere,X,Y,2025-01-01,1.0,2.0
`
	if _, err := Load(strings.NewReader(csv), 2025); err == nil {
		t.Fatal("expected error for non-numeric round")
	}
}

func TestFilterCountries(t *testing.T) {
	races, err := Load(strings.NewReader(sampleCSV), 2025)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	european := FilterCountries(races, nil)
	if len(european) != 2 {
		t.Fatalf("european races: got %d, want 2", len(european))
	}
	for _, r := range european {
		if r.Circuit.Country == "Canada" {
			t.Fatalf("Canada should be filtered out")
		}
	}
	only := FilterCountries(races, []string{"canada"})
	if len(only) != 1 || only[0].Circuit.Country != "Canada" {
		t.Fatalf("explicit filter: %+v", only)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Circuit de Monaco":        "circuit-de-monaco",
		"  Red Bull Ring  ":        "red-bull-ring",
		"Autodromo Nazionale di Monza": "autodromo-nazionale-di-monza",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Errorf("slug(%q): got %q, want %q", in, got, want)
		}
	}
}
