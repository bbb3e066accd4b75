package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/port"
)

// Preferences holds the presentation-only language and currency choice.
type Preferences struct {
	store      port.KeyValueStore
	languages  []string
	currencies []string
}

func NewPreferences(
	store port.KeyValueStore, languages, currencies []string,
) *Preferences {
	return &Preferences{store, languages, currencies}
}

// Language returns the persisted language, ok is false when none is set.
func (p *Preferences) Language(ctx context.Context) (string, bool, error) {
	return p.get(ctx, port.KeyLanguage, p.languages)
}

func (p *Preferences) Currency(ctx context.Context) (string, bool, error) {
	return p.get(ctx, port.KeyCurrency, p.currencies)
}

func (p *Preferences) SetLanguage(ctx context.Context, lang string) error {
	return p.set(ctx, port.KeyLanguage, lang, p.languages)
}

func (p *Preferences) SetCurrency(ctx context.Context, currency string) error {
	return p.set(ctx, port.KeyCurrency, currency, p.currencies)
}

func (p *Preferences) get(
	ctx context.Context, key string, allowed []string,
) (string, bool, error) {
	const op = "Preferences.get"

	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}
	var v string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		v = raw
	}
	if !slices.Contains(allowed, v) {
		return "", false, nil
	}
	return v, true, nil
}

func (p *Preferences) set(
	ctx context.Context, key, value string, allowed []string,
) error {
	const op = "Preferences.set"

	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%s: %w: %s=%q", op, domain.ErrUnsupportedPreference, key, value)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.store.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
