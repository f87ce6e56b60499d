package alerts_test

import (
	"encoding/json"
	"strings"
	"testing"

	"lmia/compare-service/internal/alerts"
)

// ── Title normalisation ────────────────────────────────────────────────────

func TestBuilder_TitlesDeduplicatedInOrder(t *testing.T) {
	b := alerts.NewBuilder(nil)
	b.SetJobTitles([]string{"Chef", "", "Cook", "Chef", "Baker", "Cook"})

	c := b.Build()
	want := []string{"Chef", "Cook", "Baker"}
	if len(c.Titles) != len(want) {
		t.Fatalf("titles = %v, want %v", c.Titles, want)
	}
	for i := range want {
		if c.Titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, c.Titles[i], want[i])
		}
	}
}

func TestBuilder_SingleTitle(t *testing.T) {
	b := alerts.NewBuilder(nil)
	b.SetJobTitle("Chef")

	c := b.Build()
	if len(c.Titles) != 1 || c.Titles[0] != "Chef" {
		t.Errorf("titles = %v, want [Chef]", c.Titles)
	}
}

// ── Location precedence ────────────────────────────────────────────────────

// Cities win over provinces, which win over the raw fallback.
func TestBuilder_CitiesWinOverProvinces(t *testing.T) {
	b := alerts.NewBuilder(nil)
	b.SetCities([]string{"Toronto"})
	b.SetProvinces([]string{"Ontario"})
	b.SetRawLocation("anywhere")

	c := b.Build()
	if c.LocationType != alerts.LocationCities {
		t.Errorf("locationType = %s, want cities", c.LocationType)
	}
	if len(c.Locations) != 1 || c.Locations[0] != "Toronto" {
		t.Errorf("locations = %v, want [Toronto]", c.Locations)
	}
	if c.RawLocation != "" {
		t.Errorf("rawLocation = %q, want empty when cities selected", c.RawLocation)
	}
}

func TestBuilder_ProvincesWinOverRaw(t *testing.T) {
	b := alerts.NewBuilder(nil)
	b.SetProvinces([]string{"Ontario", "Quebec"})
	b.SetRawLocation("anywhere")

	c := b.Build()
	if c.LocationType != alerts.LocationProvinces {
		t.Errorf("locationType = %s, want provinces", c.LocationType)
	}
	if len(c.Locations) != 2 {
		t.Errorf("locations = %v, want both provinces", c.Locations)
	}
}

func TestBuilder_RawFallback(t *testing.T) {
	b := alerts.NewBuilder(nil)
	b.SetRawLocation("Greater Toronto Area")

	c := b.Build()
	if c.LocationType != alerts.LocationRaw {
		t.Errorf("locationType = %s, want raw", c.LocationType)
	}
	if c.RawLocation != "Greater Toronto Area" {
		t.Errorf("rawLocation = %q", c.RawLocation)
	}
	if c.Locations != nil {
		t.Errorf("locations = %v, want nil for raw variant", c.Locations)
	}
}

// ── Tier normalisation ─────────────────────────────────────────────────────

func TestBuilder_TierAllMeansNoFilter(t *testing.T) {
	b := alerts.NewBuilder(nil)
	if err := b.SetTier("all"); err != nil {
		t.Fatalf("SetTier(all): %v", err)
	}

	c := b.Build()
	if c.Tier != nil {
		t.Errorf("tier = %v, want nil for %q", *c.Tier, "all")
	}
}

func TestBuilder_ExplicitTierKept(t *testing.T) {
	b := alerts.NewBuilder(nil)
	if err := b.SetTier("2"); err != nil {
		t.Fatalf("SetTier(2): %v", err)
	}

	c := b.Build()
	if c.Tier == nil || *c.Tier != 2 {
		t.Errorf("tier = %v, want 2", c.Tier)
	}
}

func TestBuilder_InvalidTierRejected(t *testing.T) {
	for _, raw := range []string{"0", "5", "x", "-1"} {
		b := alerts.NewBuilder(nil)
		if err := b.SetTier(raw); err == nil {
			t.Errorf("SetTier(%q) expected error, got nil", raw)
		}
	}
}

// ── Stored JSON shape ──────────────────────────────────────────────────────

// Titles persist under both "q" and "title", for two historical readers.
func TestCriteria_MarshalWritesBothTitleKeys(t *testing.T) {
	b := alerts.NewBuilder(nil)
	b.SetJobTitles([]string{"Chef", "Cook"})
	b.SetCities([]string{"Toronto"})

	raw, err := json.Marshal(b.Build())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if string(m["q"]) != string(m["title"]) {
		t.Errorf("q = %s and title = %s must be identical", m["q"], m["title"])
	}
	if !strings.Contains(string(m["q"]), "Chef") {
		t.Errorf("q = %s, want the titles", m["q"])
	}
}

func TestCriteria_RoundTrip(t *testing.T) {
	tier := 3
	orig := alerts.Criteria{
		Titles:       []string{"Chef"},
		NOCCode:      "63200",
		Tier:         &tier,
		LocationType: alerts.LocationProvinces,
		Locations:    []string{"Ontario"},
		Frequency:    alerts.FrequencyWeekly,
	}

	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got alerts.Criteria
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.NOCCode != orig.NOCCode || got.LocationType != orig.LocationType || got.Frequency != orig.Frequency {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.Tier == nil || *got.Tier != tier {
		t.Errorf("tier = %v, want %d", got.Tier, tier)
	}
	if len(got.Locations) != 1 || got.Locations[0] != "Ontario" {
		t.Errorf("locations = %v", got.Locations)
	}
}

func TestCriteria_RawLocationRoundTrip(t *testing.T) {
	orig := alerts.Criteria{
		Titles:       []string{"Chef"},
		LocationType: alerts.LocationRaw,
		RawLocation:  "Greater Toronto Area",
		Frequency:    alerts.FrequencyDaily,
	}

	raw, _ := json.Marshal(orig)
	var got alerts.Criteria
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RawLocation != orig.RawLocation {
		t.Errorf("rawLocation = %q, want %q", got.RawLocation, orig.RawLocation)
	}
	if got.Locations != nil {
		t.Errorf("locations = %v, want nil", got.Locations)
	}
}

// Records written by the oldest schema carry titles only under "title".
func TestCriteria_UnmarshalLegacyTitleKey(t *testing.T) {
	raw := []byte(`{"title":["Chef"],"location":[],"locationType":"cities","frequency":"daily"}`)

	var got alerts.Criteria
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if len(got.Titles) != 1 || got.Titles[0] != "Chef" {
		t.Errorf("titles = %v, want [Chef]", got.Titles)
	}
}

// ── Frequency ──────────────────────────────────────────────────────────────

func TestParseFrequency(t *testing.T) {
	for _, s := range []string{"daily", "weekly", "instant"} {
		if _, err := alerts.ParseFrequency(s); err != nil {
			t.Errorf("ParseFrequency(%q) unexpected error: %v", s, err)
		}
	}
	for _, s := range []string{"", "hourly", "Daily"} {
		if _, err := alerts.ParseFrequency(s); err == nil {
			t.Errorf("ParseFrequency(%q) expected error, got nil", s)
		}
	}
}
