package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
}

type SeedCategory struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	ImageURL    string        `yaml:"imageUrl"`
	Parent      string        `yaml:"parent"`
	Products    []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	ImageURL    string `yaml:"imageUrl"`
	Brand       string `yaml:"brand"`
	Stock       int    `yaml:"stock"`
	Available   *bool  `yaml:"available"`
}

type SeedReport struct {
	CategoriesCreated int
	ProductsCreated   int
	Skipped           int
}

func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

func ParseSeed(r io.Reader) (*SeedFile, error) {
	var out SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	for i, c := range out.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("seed category %d: name required", i)
		}
		for j, p := range c.Products {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("seed category %q product %d: name required", c.Name, j)
			}
			price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
			if err != nil || price.IsNegative() {
				return nil, fmt.Errorf("seed product %q: invalid price %q", p.Name, p.Price)
			}
		}
	}
	return &out, nil
}

// Seed creates missing categories and products by name. Existing rows are left as they are,
// so running it twice is safe.
func (u Usecases) Seed(ctx context.Context, file *SeedFile) (SeedReport, error) {
	var report SeedReport
	if file == nil {
		return report, nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids := make(map[string]uuid.UUID, len(file.Categories))

	// parents first so children can reference them regardless of file order
	ordered := make([]SeedCategory, 0, len(file.Categories))
	for _, c := range file.Categories {
		if strings.TrimSpace(c.Parent) == "" {
			ordered = append(ordered, c)
		}
	}
	for _, c := range file.Categories {
		if strings.TrimSpace(c.Parent) != "" {
			ordered = append(ordered, c)
		}
	}

	for _, sc := range ordered {
		cat := &types.Category{
			Name:        strings.TrimSpace(sc.Name),
			Description: strings.TrimSpace(sc.Description),
			ImageURL:    strings.TrimSpace(sc.ImageURL),
		}
		if parent := strings.TrimSpace(sc.Parent); parent != "" {
			pid, ok := ids[parent]
			if !ok {
				existing, err := u.deps.Categories.GetByName(dbc, parent)
				if err != nil {
					return report, err
				}
				if existing == nil {
					return report, fmt.Errorf("seed category %q: unknown parent %q", sc.Name, parent)
				}
				pid = existing.ID
			}
			cat.ParentID = &pid
		}
		row, created, err := u.deps.Categories.EnsureByName(dbc, cat)
		if err != nil {
			return report, fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
		ids[row.Name] = row.ID
		if created {
			report.CategoriesCreated++
		} else {
			report.Skipped++
		}

		for _, sp := range sc.Products {
			available := true
			if sp.Available != nil {
				available = *sp.Available
			}
			categoryID := row.ID
			p := &types.Product{
				Name:          strings.TrimSpace(sp.Name),
				Description:   strings.TrimSpace(sp.Description),
				Price:         decimal.RequireFromString(strings.TrimSpace(sp.Price)).Round(2),
				ImageURL:      strings.TrimSpace(sp.ImageURL),
				Brand:         strings.TrimSpace(sp.Brand),
				CategoryID:    &categoryID,
				IsAvailable:   available,
				StockQuantity: sp.Stock,
			}
			_, created, err := u.deps.Products.EnsureByName(dbc, p)
			if err != nil {
				return report, fmt.Errorf("seed product %q: %w", sp.Name, err)
			}
			if created {
				report.ProductsCreated++
			} else {
				report.Skipped++
			}
		}
	}
	u.deps.Log.Info("catalog seeded", "categories_created", report.CategoriesCreated, "products_created", report.ProductsCreated, "skipped", report.Skipped)
	return report, nil
}
