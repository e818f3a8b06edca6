package mockapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the initial content of a mock server.
type Seed struct {
	Users      []SeedUser     `yaml:"users"`
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
	Sales      []SeedLine     `yaml:"sales"`
	Purchases  []SeedLine     `yaml:"purchases"`
}

// SeedUser is an account that can log in.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Company  string `yaml:"company"`
	Disabled bool   `yaml:"disabled"`
}

// SeedCategory is a category without id; ids follow file order from 1.
type SeedCategory struct {
	Name string `yaml:"name"`
}

// SeedProduct references its category by 1-based position.
type SeedProduct struct {
	Name        string  `yaml:"name"`
	Category    int64   `yaml:"category"`
	SKU         string  `yaml:"sku"`
	Price       float64 `yaml:"price"`
	Qty         int     `yaml:"qty"`
	Description string  `yaml:"desc"`
}

// SeedLine is a sale or purchase.
type SeedLine struct {
	Item  string  `yaml:"item"`
	Qty   int     `yaml:"qty"`
	Price float64 `yaml:"price"`
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// DefaultSeed is used when no seed file is given.
func DefaultSeed() Seed {
	return Seed{
		Users: []SeedUser{
			{Username: "admin", Password: "admin", Role: RoleAdmin},
			{Username: "acme", Password: "acme", Role: RoleCompany, Company: "Acme Supplies"},
			{Username: "hooli", Password: "hooli", Role: RoleCompany, Company: "Hooli", Disabled: true},
		},
		Categories: []SeedCategory{{Name: "Fasteners"}, {Name: "Tools"}},
		Products: []SeedProduct{
			{Name: "Hex bolt M8", Category: 1, SKU: "FB-M8", Price: 0.35, Qty: 400, Description: "zinc plated"},
			{Name: "Claw hammer", Category: 2, SKU: "TL-HAM", Price: 14.5, Qty: 4},
		},
		Sales:     []SeedLine{{Item: "Hex bolt M8", Qty: 40, Price: 0.5}},
		Purchases: []SeedLine{{Item: "Hex bolt M8", Qty: 500, Price: 0.2}},
	}
}
