// Package settings defines the tunable surface of the simulation.
// A Settings value is read-only during a tick; changes go through a
// whole-struct Patch applied by the scheduler between ticks.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the complete tunable configuration. Probabilities are
// per simulated day unless noted; delays are simulated days.
type Settings struct {
	Seed uint32 `yaml:"seed" json:"seed"`

	// Message generation.
	MessagesPerDay     float64 `yaml:"messages_per_day" json:"messages_per_day"`
	MinMessageGapMin   int     `yaml:"min_message_gap_min" json:"min_message_gap_min"`
	MaxMessagesPerTick int     `yaml:"max_messages_per_tick" json:"max_messages_per_tick"`
	InboxCap           int     `yaml:"inbox_cap" json:"inbox_cap"`

	// Order generation.
	OrdersPerDay     float64 `yaml:"orders_per_day" json:"orders_per_day"`
	MinOrderGapMin   int     `yaml:"min_order_gap_min" json:"min_order_gap_min"`
	MaxOrdersPerTick int     `yaml:"max_orders_per_tick" json:"max_orders_per_tick"`

	// Payments.
	PaymentDelayDays     float64 `yaml:"payment_delay_days" json:"payment_delay_days"`
	PaymentJitterDays    float64 `yaml:"payment_jitter_days" json:"payment_jitter_days"`
	PaymentSuccessChance float64 `yaml:"payment_success_chance" json:"payment_success_chance"`

	// Skill checks.
	DicePreset string `yaml:"dice_preset" json:"dice_preset"` // standard, cinematic, hardcore
}

// Default returns the standard configuration.
func Default() Settings {
	return Settings{
		Seed:                 1337,
		MessagesPerDay:       12,
		MinMessageGapMin:     20,
		MaxMessagesPerTick:   3,
		InboxCap:             50,
		OrdersPerDay:         6,
		MinOrderGapMin:       45,
		MaxOrdersPerTick:     2,
		PaymentDelayDays:     3,
		PaymentJitterDays:    1,
		PaymentSuccessChance: 0.92,
		DicePreset:           "standard",
	}
}

// LoadFile reads settings from YAML, starting from defaults so partial
// files are valid.
func LoadFile(path string) (Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// Patch is a whole-struct update where only non-nil fields overwrite.
// This replaces ad-hoc partial merges: presence is explicit.
type Patch struct {
	MessagesPerDay       *float64
	MinMessageGapMin     *int
	MaxMessagesPerTick   *int
	InboxCap             *int
	OrdersPerDay         *float64
	MinOrderGapMin       *int
	MaxOrdersPerTick     *int
	PaymentDelayDays     *float64
	PaymentJitterDays    *float64
	PaymentSuccessChance *float64
	DicePreset           *string
}

// Apply returns a copy of s with every present patch field overwritten.
func (s Settings) Apply(p Patch) Settings {
	if p.MessagesPerDay != nil {
		s.MessagesPerDay = *p.MessagesPerDay
	}
	if p.MinMessageGapMin != nil {
		s.MinMessageGapMin = *p.MinMessageGapMin
	}
	if p.MaxMessagesPerTick != nil {
		s.MaxMessagesPerTick = *p.MaxMessagesPerTick
	}
	if p.InboxCap != nil {
		s.InboxCap = *p.InboxCap
	}
	if p.OrdersPerDay != nil {
		s.OrdersPerDay = *p.OrdersPerDay
	}
	if p.MinOrderGapMin != nil {
		s.MinOrderGapMin = *p.MinOrderGapMin
	}
	if p.MaxOrdersPerTick != nil {
		s.MaxOrdersPerTick = *p.MaxOrdersPerTick
	}
	if p.PaymentDelayDays != nil {
		s.PaymentDelayDays = *p.PaymentDelayDays
	}
	if p.PaymentJitterDays != nil {
		s.PaymentJitterDays = *p.PaymentJitterDays
	}
	if p.PaymentSuccessChance != nil {
		s.PaymentSuccessChance = *p.PaymentSuccessChance
	}
	if p.DicePreset != nil {
		s.DicePreset = *p.DicePreset
	}
	return s
}
