// Package seed loads the starting services catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
)

// CatalogFile is the layout of the catalog seed file.
type CatalogFile struct {
	Services []CatalogEntry `yaml:"services"`
}

// CatalogEntry is one service in the seed file. Rate is read as text so
// amounts like 0.10 keep their exact value.
type CatalogEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Rate        string `yaml:"rate"`
	Unit        string `yaml:"unit"`
	Inactive    bool   `yaml:"inactive"`
}

// ParseCatalog decodes a seed file.
func ParseCatalog(data []byte) ([]entity.CatalogItem, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	items := make([]entity.CatalogItem, 0, len(file.Services))
	for i, e := range file.Services {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog: service %d has no name", i+1)
		}
		rate := decimal.Zero
		if strings.TrimSpace(e.Rate) != "" {
			r, err := decimal.NewFromString(strings.TrimSpace(e.Rate))
			if err != nil {
				return nil, fmt.Errorf("catalog: service %q: invalid rate %q", name, e.Rate)
			}
			rate = r
		}
		items = append(items, entity.CatalogItem{
			Name:        name,
			Description: strings.TrimSpace(e.Description),
			Rate:        rate,
			Unit:        strings.TrimSpace(e.Unit),
			Active:      !e.Inactive,
		})
	}
	return items, nil
}

// LoadCatalogFile reads and parses the seed file at path. A missing file
// yields no items and no error.
func LoadCatalogFile(path string) ([]entity.CatalogItem, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return ParseCatalog(data)
}

// SeedCatalog creates the items whose names are not in the catalog yet and
// returns how many were created.
func SeedCatalog(ctx context.Context, repo domainRepo.CatalogRepository, items []entity.CatalogItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[strings.ToLower(s.Name)] = true
	}

	created := 0
	for i := range items {
		key := strings.ToLower(items[i].Name)
		if known[key] {
			continue
		}
		item := items[i]
		if _, err := repo.Create(ctx, &item); err != nil {
			return created, err
		}
		known[key] = true
		created++
	}

	if created > 0 {
		log.Printf("Seeded %d catalog services", created)
	}
	return created, nil
}
