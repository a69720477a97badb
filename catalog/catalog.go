// Package catalog loads the plant catalog and sprite manifest consumed by
// the visualization pipeline. The catalog is a YAML document supplied by
// the surrounding application; records are validated at this ingestion
// boundary so the rest of the pipeline works with typed values instead of
// loosely shaped maps.
package catalog

import (
	"fmt"
	"os"

	"garden_backend/bloom"
	"garden_backend/calendar"

	"gopkg.in/yaml.v3"
)

// SpriteSet holds the sprite asset references for one plant, keyed by
// season, plus an optional dormant (foliage-only) variant used when the
// plant is out of bloom.
type SpriteSet struct {
	Spring  string `yaml:"spring"`
	Summer  string `yaml:"summer"`
	Autumn  string `yaml:"autumn"`
	Winter  string `yaml:"winter"`
	Dormant string `yaml:"dormant"`
}

// ForSeason returns the sprite reference for a season, empty when the
// manifest has no entry for it.
func (s SpriteSet) ForSeason(season calendar.Season) string {
	switch season {
	case calendar.SeasonSpring:
		return s.Spring
	case calendar.SeasonSummer:
		return s.Summer
	case calendar.SeasonAutumn:
		return s.Autumn
	case calendar.SeasonWinter:
		return s.Winter
	default:
		return ""
	}
}

// plantEntry is the raw YAML shape of one catalog record. Optional bloom
// bounds stay pointers so absent values never collapse to zero.
type plantEntry struct {
	ID              string    `yaml:"id"`
	CommonName      string    `yaml:"common_name"`
	ScientificName  string    `yaml:"scientific_name"`
	Cultivar        string    `yaml:"cultivar"`
	BloomStartDay   *int      `yaml:"bloom_start_day"`
	BloomEndDay     *int      `yaml:"bloom_end_day"`
	BloomStartMonth *int      `yaml:"bloom_start_month"`
	BloomEndMonth   *int      `yaml:"bloom_end_month"`
	Sprites         SpriteSet `yaml:"sprites"`
}

type catalogFile struct {
	Plants []plantEntry `yaml:"plants"`
}

// Catalog is the validated, immutable plant catalog. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	plants  map[string]bloom.Plant
	sprites map[string]SpriteSet
	order   []string
}

// Load reads and validates a YAML catalog from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: invalid YAML: %w", err)
	}
	if len(file.Plants) == 0 {
		return nil, fmt.Errorf("catalog: no plants defined")
	}

	c := &Catalog{
		plants:  make(map[string]bloom.Plant, len(file.Plants)),
		sprites: make(map[string]SpriteSet, len(file.Plants)),
		order:   make([]string, 0, len(file.Plants)),
	}

	for i, entry := range file.Plants {
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("catalog: plant %d (%q): %w", i, entry.ID, err)
		}
		if _, dup := c.plants[entry.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate plant id %q", entry.ID)
		}

		c.plants[entry.ID] = bloom.Plant{
			ID:              entry.ID,
			CommonName:      entry.CommonName,
			ScientificName:  entry.ScientificName,
			Cultivar:        entry.Cultivar,
			BloomStartDay:   entry.BloomStartDay,
			BloomEndDay:     entry.BloomEndDay,
			BloomStartMonth: entry.BloomStartMonth,
			BloomEndMonth:   entry.BloomEndMonth,
		}
		c.sprites[entry.ID] = entry.Sprites
		c.order = append(c.order, entry.ID)
	}

	return c, nil
}

func validateEntry(entry plantEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("missing id")
	}
	if entry.CommonName == "" && entry.ScientificName == "" {
		return fmt.Errorf("needs a common or scientific name")
	}

	// Day bounds must come in pairs and stay inside the day-of-year domain.
	if (entry.BloomStartDay == nil) != (entry.BloomEndDay == nil) {
		return fmt.Errorf("bloom day bounds must both be set")
	}
	if entry.BloomStartDay != nil {
		if !validDay(*entry.BloomStartDay) || !validDay(*entry.BloomEndDay) {
			return fmt.Errorf("bloom day bounds outside [1, %d]", calendar.DaysInYear)
		}
	}

	if (entry.BloomStartMonth == nil) != (entry.BloomEndMonth == nil) {
		return fmt.Errorf("bloom month bounds must both be set")
	}
	if entry.BloomStartMonth != nil {
		if !validMonth(*entry.BloomStartMonth) || !validMonth(*entry.BloomEndMonth) {
			return fmt.Errorf("bloom month bounds outside [1, 12]")
		}
	}

	if entry.Sprites == (SpriteSet{}) {
		return fmt.Errorf("no sprites defined")
	}
	return nil
}

func validDay(d int) bool   { return d >= 1 && d <= calendar.DaysInYear }
func validMonth(m int) bool { return m >= 1 && m <= 12 }

// Plant looks up a plant record by catalog id.
func (c *Catalog) Plant(id string) (bloom.Plant, bool) {
	p, ok := c.plants[id]
	return p, ok
}

// Plants returns all plant records in catalog order.
func (c *Catalog) Plants() []bloom.Plant {
	out := make([]bloom.Plant, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plants[id])
	}
	return out
}

// SpriteRef resolves the sprite asset reference for a plant in the given
// season. When the plant is out of bloom and the manifest carries a
// dormant variant, that variant is returned instead of the seasonal one.
// The boolean is false when no usable sprite exists.
func (c *Catalog) SpriteRef(id string, season calendar.Season, inBloom bool) (string, bool) {
	set, ok := c.sprites[id]
	if !ok {
		return "", false
	}

	if !inBloom && set.Dormant != "" {
		return set.Dormant, true
	}

	ref := set.ForSeason(season)
	if ref == "" {
		ref = set.Dormant
	}
	return ref, ref != ""
}

// Len returns the number of plants in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}
