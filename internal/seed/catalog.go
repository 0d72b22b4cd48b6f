// Package seed loads the showcase catalog from YAML into the database.
package seed

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// Catalog is the document layout of a seed file.
type Catalog struct {
	Admin     *AdminSeed     `yaml:"admin"`
	Services  []ServiceSeed  `yaml:"services"`
	Packs     []PackSeed     `yaml:"packs"`
	Projects  []ProjectSeed  `yaml:"projects"`
	Discounts []DiscountSeed `yaml:"discounts"`
}

type AdminSeed struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

type ServiceSeed struct {
	Title           string   `yaml:"title"`
	Slug            string   `yaml:"slug"`
	Description     string   `yaml:"description"`
	LongDescription string   `yaml:"long_description"`
	Icon            string   `yaml:"icon"`
	PriceMin        *float64 `yaml:"price_min"`
	PriceMax        *float64 `yaml:"price_max"`
	Features        []string `yaml:"features"`
	SortOrder       int      `yaml:"sort_order"`
	Inactive        bool     `yaml:"inactive"`
}

type PackSeed struct {
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Price       float64  `yaml:"price"`
	Features    []string `yaml:"features"`
	Highlighted bool     `yaml:"highlighted"`
	Badge       string   `yaml:"badge"`
	IsYearly    bool     `yaml:"is_yearly"`
	SortOrder   int      `yaml:"sort_order"`
	Inactive    bool     `yaml:"inactive"`
}

type ProjectSeed struct {
	Title        string   `yaml:"title"`
	Slug         string   `yaml:"slug"`
	Client       string   `yaml:"client"`
	Description  string   `yaml:"description"`
	Category     string   `yaml:"category"`
	Technologies []string `yaml:"technologies"`
	ImageURL     string   `yaml:"image_url"`
	Link         string   `yaml:"link"`
	Featured     bool     `yaml:"featured"`
	SortOrder    int      `yaml:"sort_order"`
	Inactive     bool     `yaml:"inactive"`
}

// DiscountSeed windows are relative to the seeding time.
type DiscountSeed struct {
	Code        string             `yaml:"code"`
	Description string             `yaml:"description"`
	Type        enums.DiscountType `yaml:"type"`
	Value       float64            `yaml:"value"`
	MinAmount   float64            `yaml:"min_amount"`
	MaxUsage    *int               `yaml:"max_usage"`
	ValidDays   int                `yaml:"valid_days"`
	Services    []string           `yaml:"services"`
	Packs       []string           `yaml:"packs"`
	Inactive    bool               `yaml:"inactive"`
}

// Load decodes a catalog, rejecting unknown keys.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		if err == io.EOF {
			return &cat, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for _, d := range cat.Discounts {
		if d.ValidDays <= 0 {
			return nil, fmt.Errorf("discount %q: valid_days must be positive", d.Code)
		}
		if !d.Type.IsValid() {
			return nil, fmt.Errorf("discount %q: unknown type %q", d.Code, d.Type)
		}
	}
	return &cat, nil
}

// LoadFile reads and decodes the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func optionalMoney(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := money(*v)
	return &d
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
