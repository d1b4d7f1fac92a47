package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sonicwave-radio/sonicwave/internal/station"
)

func TestClampVolume(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}

	for _, tt := range tests {
		if got := ClampVolume(tt.in); got != tt.want {
			t.Errorf("ClampVolume(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrefsDefaults(t *testing.T) {
	p := NewPrefs(NewMemStore())

	if got := p.Theme(); got != ThemeDark {
		t.Errorf("Theme() = %q, want dark default", got)
	}
	if got := p.Volume(); got != DefaultVolume {
		t.Errorf("Volume() = %v, want %v", got, DefaultVolume)
	}
	if p.CookieConsent() {
		t.Error("CookieConsent() = true, want false by default")
	}
}

func TestPrefsVolumeClampPersisted(t *testing.T) {
	store := NewMemStore()
	p := NewPrefs(store)

	p.SetVolume(-0.5)
	if got := p.Volume(); got != 0 {
		t.Errorf("Volume() after SetVolume(-0.5) = %v, want 0", got)
	}

	p.SetVolume(1.5)
	if got := p.Volume(); got != 1 {
		t.Errorf("Volume() after SetVolume(1.5) = %v, want 1", got)
	}

	if raw, ok := store.Get(KeyVolume); !ok || raw != "1" {
		t.Errorf("persisted volume = %q, want clamped value stored", raw)
	}
}

func TestPrefsCorruptVolume(t *testing.T) {
	store := NewMemStore()
	_ = store.Set(KeyVolume, "not a number")

	p := NewPrefs(store)
	if got := p.Volume(); got != DefaultVolume {
		t.Errorf("Volume() with corrupt value = %v, want default", got)
	}
}

func TestPrefsToggleTheme(t *testing.T) {
	p := NewPrefs(NewMemStore())

	if got := p.ToggleTheme(); got != ThemeLight {
		t.Errorf("first ToggleTheme() = %q, want light", got)
	}
	if got := p.ToggleTheme(); got != ThemeDark {
		t.Errorf("second ToggleTheme() = %q, want dark", got)
	}
}

func TestPrefsCookieConsent(t *testing.T) {
	p := NewPrefs(NewMemStore())
	p.SetCookieConsent()
	if !p.CookieConsent() {
		t.Error("CookieConsent() = false after SetCookieConsent()")
	}
}

func TestStoreSubscribe(t *testing.T) {
	store := NewMemStore()
	var keys []string
	store.Subscribe(func(key string) { keys = append(keys, key) })

	p := NewPrefs(store)
	p.SetVolume(0.4)
	p.SetTheme(ThemeLight)

	if len(keys) != 2 || keys[0] != KeyVolume || keys[1] != KeyTheme {
		t.Errorf("subscriber saw %v", keys)
	}
}

func sampleStation(uuid, name string) station.Station {
	return station.Station{
		UUID: uuid,
		Name: name,
		URL:  "https://example.com/" + uuid,
	}
}

func TestFavoritesToggleIdempotent(t *testing.T) {
	store := NewMemStore()
	favs := NewFavorites(store)

	a := sampleStation("a", "Alpha FM")
	b := sampleStation("b", "Beta FM")

	favs.Toggle(a)
	favs.Toggle(b)
	if favs.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", favs.Count())
	}

	// Double-toggle restores the original set
	favs.Toggle(b)
	favs.Toggle(b)
	if favs.Count() != 2 || !favs.IsFavorite("b") {
		t.Errorf("double toggle changed the set: count=%d", favs.Count())
	}

	favs.Toggle(a)
	if favs.IsFavorite("a") {
		t.Error("IsFavorite(a) = true after removal")
	}
	if !favs.IsFavorite("b") {
		t.Error("IsFavorite(b) = false, removal of a should not touch b")
	}
}

func TestFavoritesInsertionOrderAndReload(t *testing.T) {
	store := NewMemStore()
	favs := NewFavorites(store)

	favs.Toggle(sampleStation("first", "First"))
	favs.Toggle(sampleStation("second", "Second"))
	favs.Toggle(sampleStation("third", "Third"))

	// A fresh Favorites over the same store sees the persisted list
	reloaded := NewFavorites(store)
	all := reloaded.All()
	if len(all) != 3 {
		t.Fatalf("reloaded count = %d, want 3", len(all))
	}
	for i, want := range []string{"first", "second", "third"} {
		if all[i].UUID != want {
			t.Errorf("all[%d].UUID = %q, want %q (insertion order)", i, all[i].UUID, want)
		}
	}
}

func TestFavoritesCorruptState(t *testing.T) {
	store := NewMemStore()
	_ = store.Set(KeyFavorites, "{broken json")

	favs := NewFavorites(store)
	if favs.Count() != 0 {
		t.Errorf("Count() = %d, want 0 for corrupt state", favs.Count())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := fs.Set("sonicwave_theme", "light"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := fs.Set("sonicwave_volume", "0.3"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Reload from disk
	fs2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() reload error = %v", err)
	}
	if v, ok := fs2.Get("sonicwave_theme"); !ok || v != "light" {
		t.Errorf("Get(theme) = %q, %v", v, ok)
	}
	if v, ok := fs2.Get("sonicwave_volume"); !ok || v != "0.3" {
		t.Errorf("Get(volume) = %q, %v", v, ok)
	}

	// No leftover temp files from atomic saves
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("state dir has %d entries, want only the state file", len(entries))
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "state.yml")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v for missing file", err)
	}
	if _, ok := fs.Get("anything"); ok {
		t.Error("Get() = true on empty store")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Error("NewFileStore() should fail on corrupt YAML")
	}
}
