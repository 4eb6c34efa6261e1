// Package seeds loads seed-site definitions from YAML or JSON files for
// bulk import.
package seeds

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/domain"
	"github.com/openengine/openengine/internal/frontier"
)

// ErrNoSeeds is returned when the file contains no seed sites.
var ErrNoSeeds = errors.New("no seed sites in file")

// fileEntry is the on-disk shape of one seed site.
type fileEntry struct {
	URL   string   `mapstructure:"url"`
	Seeds []string `mapstructure:"seeds"`
}

// Load reads seed sites from a YAML or JSON file. Every url must carry a
// scheme and a host.
func Load(path string) ([]domain.SeedSite, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read seed file %q: %w", path, err)
	}

	var entries []fileEntry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &entries,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build seed decoder: %w", err)
	}
	if err := decoder.Decode(v.Get("seed_urls")); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %q: %w", path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%q: %w", path, ErrNoSeeds)
	}

	sites := make([]domain.SeedSite, 0, len(entries))
	for _, entry := range entries {
		if !frontier.Valid(entry.URL) {
			return nil, fmt.Errorf("seed url %q: missing scheme or host", entry.URL)
		}
		sites = append(sites, domain.SeedSite{URL: entry.URL, Seeds: entry.Seeds})
	}

	return sites, nil
}

// Store is the subset of the seed repository the importer needs.
type Store interface {
	Add(ctx context.Context, url string, seeds []string) error
}

// Import adds every site from the file to the store, skipping duplicates.
// It returns how many sites were added.
func Import(ctx context.Context, path string, store Store) (int, error) {
	sites, err := Load(path)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, site := range sites {
		if err := store.Add(ctx, site.URL, site.Seeds); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				continue
			}
			return added, fmt.Errorf("failed to import %q: %w", site.URL, err)
		}
		added++
	}

	return added, nil
}
