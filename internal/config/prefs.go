package config

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	AppName        = "sonicwave"
	AppVersion     = "1.0.0"
	AppDescription = "AI-powered web radio for your terminal"
)

// Storage keys. They mirror the historical browser-storage names so a state
// file survives across versions.
const (
	KeyTheme         = "sonicwave_theme"
	KeyVolume        = "sonicwave_volume"
	KeyFavorites     = "sonicwave_favs"
	KeyCookieConsent = "sonicwave_cookie_consent"
)

const (
	// DefaultVolume is used when no volume has been persisted yet.
	DefaultVolume = 0.8

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ClampVolume keeps a volume within [0, 1].
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Prefs exposes typed access to the persisted user preferences over an
// injected Store. Absent keys fall back to documented defaults: dark theme,
// volume 0.8, no consent.
type Prefs struct {
	store Store
}

// NewPrefs creates a Prefs view over the given store.
func NewPrefs(store Store) *Prefs {
	return &Prefs{store: store}
}

// Theme returns the persisted UI theme, dark by default.
func (p *Prefs) Theme() string {
	if v, ok := p.store.Get(KeyTheme); ok && v == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// SetTheme persists the theme flag.
func (p *Prefs) SetTheme(theme string) {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	if err := p.store.Set(KeyTheme, theme); err != nil {
		log.Warn().Err(err).Msg("Failed to persist theme")
	}
}

// ToggleTheme flips between dark and light and returns the new value.
func (p *Prefs) ToggleTheme() string {
	next := ThemeDark
	if p.Theme() == ThemeDark {
		next = ThemeLight
	}
	p.SetTheme(next)
	return next
}

// Volume returns the persisted volume in [0, 1], 0.8 by default. A corrupt
// stored value also falls back to the default.
func (p *Prefs) Volume() float64 {
	raw, ok := p.store.Get(KeyVolume)
	if !ok {
		return DefaultVolume
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("value", raw).Msg("Corrupt persisted volume, using default")
		return DefaultVolume
	}
	return ClampVolume(v)
}

// SetVolume clamps and persists the volume synchronously.
func (p *Prefs) SetVolume(v float64) {
	v = ClampVolume(v)
	if err := p.store.Set(KeyVolume, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		log.Warn().Err(err).Msg("Failed to persist volume")
	}
}

// CookieConsent reports whether the one-time consent flag has been set.
func (p *Prefs) CookieConsent() bool {
	v, ok := p.store.Get(KeyCookieConsent)
	return ok && v == "true"
}

// SetCookieConsent records the one-time consent flag.
func (p *Prefs) SetCookieConsent() {
	if err := p.store.Set(KeyCookieConsent, "true"); err != nil {
		log.Warn().Err(err).Msg("Failed to persist cookie consent")
	}
}
