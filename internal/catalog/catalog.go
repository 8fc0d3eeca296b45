// Package catalog holds the immutable template sets the procedural
// generators draw from. Catalogs are loaded once (compiled-in defaults
// or a YAML file) and never mutated afterwards.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Curve names a time-of-day weighting profile. Curves are a closed set
// so templates stay serializable and the catalog stays immutable.
type Curve string

const (
	CurveFlat     Curve = "flat"     // constant 1.0
	CurveWork     Curve = "work"     // peaks during work hours
	CurveMorning  Curve = "morning"  // peaks early
	CurveEvening  Curve = "evening"  // peaks late
	CurveOffHours Curve = "offhours" // inverse of work
)

// Factor evaluates the curve at a minute of day [0, 1440).
func (c Curve) Factor(minute int) float64 {
	h := float64(minute) / 60.0
	switch c {
	case CurveWork:
		if h >= 9 && h < 18 {
			return 1.5
		}
		return 0.4
	case CurveMorning:
		if h >= 6 && h < 11 {
			return 1.8
		}
		return 0.6
	case CurveEvening:
		if h >= 17 && h < 23 {
			return 1.6
		}
		return 0.5
	case CurveOffHours:
		if h < 7 || h >= 20 {
			return 1.4
		}
		return 0.7
	default:
		return 1.0
	}
}

// LineItem is one product position on a template or order.
type LineItem struct {
	SKU      string  `yaml:"sku" json:"sku"`
	Name     string  `yaml:"name" json:"name"`
	Quantity int     `yaml:"quantity" json:"quantity"`
	Price    float64 `yaml:"price" json:"price"`
}

// MessageTemplate describes one inbound message the generator can spawn.
type MessageTemplate struct {
	ID            string   `yaml:"id"`
	Type          string   `yaml:"type"` // email, call, notification, spam
	Weight        float64  `yaml:"weight"`
	Subject       string   `yaml:"subject"`
	Author        string   `yaml:"author"`
	Priority      int      `yaml:"priority"`
	Body          string   `yaml:"body"`
	Actions       []string `yaml:"actions"`
	Tags          []string `yaml:"tags"`
	LineItems     []LineItem `yaml:"line_items,omitempty"`
	TimeOfDay     Curve    `yaml:"time_of_day"`
	WeekendFactor float64  `yaml:"weekend_factor"`
}

// OrderTemplate describes one customer order shape.
type OrderTemplate struct {
	ID            string     `yaml:"id"`
	Weight        float64    `yaml:"weight"`
	Customer      string     `yaml:"customer"`
	LineItems     []LineItem `yaml:"line_items"`
	TimeOfDay     Curve      `yaml:"time_of_day"`
	WeekendFactor float64    `yaml:"weekend_factor"`
}

// Product is a sellable catalog entry referenced by order line items.
type Product struct {
	SKU      string  `yaml:"sku"`
	Name     string  `yaml:"name"`
	Price    float64 `yaml:"price"`
	Sellable bool    `yaml:"sellable"`
}

// Catalog bundles all template sets.
type Catalog struct {
	Messages []MessageTemplate `yaml:"messages"`
	Orders   []OrderTemplate   `yaml:"orders"`
	Products []Product         `yaml:"products"`
}

// SellableProducts returns the products currently offered for sale.
func (c *Catalog) SellableProducts() []Product {
	var out []Product
	for _, p := range c.Products {
		if p.Sellable {
			out = append(out, p)
		}
	}
	return out
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// Default returns the compiled-in catalog used when no file is given.
func Default() *Catalog {
	return &Catalog{
		Messages: []MessageTemplate{
			{
				ID: "msg-customer-inquiry", Type: "email", Weight: 10,
				Subject: "Question about your services", Author: "prospect",
				Priority: 2, Body: "Hi, I found your site and have a few questions.",
				Actions: []string{"read", "archive", "delete"},
				Tags:    []string{"sales"}, TimeOfDay: CurveWork, WeekendFactor: 0.3,
			},
			{
				ID: "msg-invoice-reminder", Type: "email", Weight: 4,
				Subject: "Invoice due", Author: "accounting bot",
				Priority: 3, Body: "A supplier invoice is due this week.",
				Actions: []string{"read", "archive"},
				Tags:    []string{"finance"}, TimeOfDay: CurveMorning, WeekendFactor: 0.1,
			},
			{
				ID: "msg-support-call", Type: "call", Weight: 6,
				Subject: "Customer needs help", Author: "existing customer",
				Priority: 4, Body: "The last delivery is missing a part.",
				Actions: []string{"read", "archive", "delete"},
				Tags:    []string{"support"}, TimeOfDay: CurveWork, WeekendFactor: 0.2,
			},
			{
				ID: "msg-newsletter", Type: "notification", Weight: 3,
				Subject: "Industry digest", Author: "trade journal",
				Priority: 1, Body: "This week in the industry.",
				Actions: []string{"read", "archive", "delete", "spam"},
				Tags:    []string{"news"}, TimeOfDay: CurveEvening, WeekendFactor: 1.2,
			},
			{
				ID: "msg-spam-offer", Type: "spam", Weight: 2,
				Subject: "You have won", Author: "unknown",
				Priority: 1, Body: "Claim your prize now.",
				Actions: []string{"spam", "delete"},
				Tags:    []string{"junk"}, TimeOfDay: CurveOffHours, WeekendFactor: 1.5,
			},
		},
		Orders: []OrderTemplate{
			{
				ID: "ord-single-unit", Weight: 10, Customer: "walk-in customer",
				LineItems: []LineItem{{SKU: "widget-basic", Quantity: 1}},
				TimeOfDay: CurveWork, WeekendFactor: 0.4,
			},
			{
				ID: "ord-small-batch", Weight: 5, Customer: "repeat customer",
				LineItems: []LineItem{{SKU: "widget-basic", Quantity: 3}, {SKU: "widget-pro", Quantity: 1}},
				TimeOfDay: CurveWork, WeekendFactor: 0.3,
			},
			{
				ID: "ord-bulk", Weight: 1, Customer: "wholesale partner",
				LineItems: []LineItem{{SKU: "widget-pro", Quantity: 10}},
				TimeOfDay: CurveMorning, WeekendFactor: 0.1,
			},
		},
		Products: []Product{
			{SKU: "widget-basic", Name: "Basic Widget", Price: 19.90, Sellable: true},
			{SKU: "widget-pro", Name: "Pro Widget", Price: 49.90, Sellable: true},
			{SKU: "widget-legacy", Name: "Legacy Widget", Price: 9.90, Sellable: false},
		},
	}
}
