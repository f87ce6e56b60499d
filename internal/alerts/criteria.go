// Package alerts contains the job-alert business logic: criteria
// normalisation, the debounced NOC→tier resolution, persistence, and the
// digest evaluation used by the scheduler.
package alerts

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Frequency says how often an alert is evaluated.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyInstant Frequency = "instant"
)

// ParseFrequency converts a raw string to a Frequency, returning an error
// for unknown values.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyInstant:
		return f, nil
	}
	return "", fmt.Errorf("unknown alert frequency %q", s)
}

// LocationType tags which variant of the location union a Criteria holds.
type LocationType string

const (
	LocationCities    LocationType = "cities"
	LocationProvinces LocationType = "provinces"
	LocationRaw       LocationType = "raw"
)

// Criteria is a normalised, persistable alert query.
//
// Exactly one location variant is populated at a time: Locations when
// LocationType is cities or provinces, RawLocation when it is raw.
type Criteria struct {
	Titles       []string
	NOCCode      string
	Tier         *int
	LocationType LocationType
	Locations    []string
	RawLocation  string
	Frequency    Frequency
}

// criteriaJSON is the stored wire shape. Titles appear under both "q" and
// "title", two historical schema names that both still have readers.
type criteriaJSON struct {
	Q         []string        `json:"q"`
	Title     []string        `json:"title"`
	NOCCode   string          `json:"nocCode,omitempty"`
	Tier      *int            `json:"tier,omitempty"`
	Location  json.RawMessage `json:"location"`
	LocType   LocationType    `json:"locationType"`
	Frequency Frequency       `json:"frequency"`
}

// MarshalJSON emits the backward-compatible stored shape: the location
// union serialises as a string array for cities/provinces and as a plain
// string for raw.
func (c Criteria) MarshalJSON() ([]byte, error) {
	var loc json.RawMessage
	var err error
	if c.LocationType == LocationRaw {
		loc, err = json.Marshal(c.RawLocation)
	} else {
		locations := c.Locations
		if locations == nil {
			locations = []string{}
		}
		loc, err = json.Marshal(locations)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(criteriaJSON{
		Q:         c.Titles,
		Title:     c.Titles,
		NOCCode:   c.NOCCode,
		Tier:      c.Tier,
		Location:  loc,
		LocType:   c.LocationType,
		Frequency: c.Frequency,
	})
}

// UnmarshalJSON accepts either historical titles key, preferring "q".
func (c *Criteria) UnmarshalJSON(data []byte) error {
	var w criteriaJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Titles = w.Q
	if len(c.Titles) == 0 {
		c.Titles = w.Title
	}
	c.NOCCode = w.NOCCode
	c.Tier = w.Tier
	c.LocationType = w.LocType
	c.Frequency = w.Frequency

	c.Locations = nil
	c.RawLocation = ""
	if len(w.Location) == 0 {
		return nil
	}
	if w.LocType == LocationRaw {
		return json.Unmarshal(w.Location, &c.RawLocation)
	}
	return json.Unmarshal(w.Location, &c.Locations)
}

// ─── Builder ─────────────────────────────────────────────────────────────────

// Builder accumulates heterogeneous form inputs and normalises them into a
// Criteria. It is not safe for concurrent use except through the attached
// TierResolver, which synchronises its own state.
type Builder struct {
	titles      []string
	nocCode     string
	tierChoice  string // raw form value; "" means "use the resolved tier"
	cities      []string
	provinces   []string
	rawLocation string
	frequency   Frequency
	resolver    *TierResolver
}

// NewBuilder returns an empty Builder. resolver may be nil when NOC→tier
// resolution is not wanted.
func NewBuilder(resolver *TierResolver) *Builder {
	return &Builder{frequency: FrequencyDaily, resolver: resolver}
}

// SetJobTitle replaces the titles with a single title.
func (b *Builder) SetJobTitle(title string) {
	b.SetJobTitles([]string{title})
}

// SetJobTitles replaces the titles, dropping empties and duplicates while
// preserving first-seen order.
func (b *Builder) SetJobTitles(titles []string) {
	seen := make(map[string]bool, len(titles))
	b.titles = b.titles[:0]
	for _, t := range titles {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		b.titles = append(b.titles, t)
	}
}

// SetNOCCode records the code and schedules the debounced tier lookup.
func (b *Builder) SetNOCCode(code string) {
	b.nocCode = code
	if b.resolver != nil {
		b.resolver.SetCode(code)
	}
}

// SetTier records an explicit tier choice from the form. The literal "all"
// means no tier filter; an empty string defers to the resolved tier.
func (b *Builder) SetTier(raw string) error {
	if raw == "" || raw == "all" {
		b.tierChoice = raw
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 4 {
		return &ValidationError{Msg: fmt.Sprintf("invalid tier %q", raw)}
	}
	b.tierChoice = raw
	return nil
}

// SetCities replaces the selected cities.
func (b *Builder) SetCities(cities []string) { b.cities = cities }

// SetProvinces replaces the selected provinces.
func (b *Builder) SetProvinces(provinces []string) { b.provinces = provinces }

// SetRawLocation sets the free-text location fallback.
func (b *Builder) SetRawLocation(loc string) { b.rawLocation = loc }

// SetFrequency sets the evaluation frequency.
func (b *Builder) SetFrequency(f Frequency) { b.frequency = f }

// Build normalises the accumulated inputs into a Criteria.
//
// Location precedence: any selected city wins over any selected province,
// which wins over the raw fallback string. Tier: "all" becomes no filter,
// an explicit numeric choice is kept, and otherwise the last tier resolved
// from the NOC code (if any) is used.
func (b *Builder) Build() Criteria {
	c := Criteria{
		Titles:    append([]string(nil), b.titles...),
		NOCCode:   b.nocCode,
		Frequency: b.frequency,
	}

	switch {
	case len(b.cities) > 0:
		c.LocationType = LocationCities
		c.Locations = append([]string(nil), b.cities...)
	case len(b.provinces) > 0:
		c.LocationType = LocationProvinces
		c.Locations = append([]string(nil), b.provinces...)
	default:
		c.LocationType = LocationRaw
		c.RawLocation = b.rawLocation
	}

	switch b.tierChoice {
	case "all":
		// no tier filter
	case "":
		if b.resolver != nil {
			c.Tier = b.resolver.Tier()
		}
	default:
		n, _ := strconv.Atoi(b.tierChoice)
		c.Tier = &n
	}

	return c
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
