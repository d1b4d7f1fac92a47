// Package ui implements the terminal front-end: station browsing, search,
// AI recommendations, favorites and the player footer.
package ui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/config"
	"github.com/sonicwave-radio/sonicwave/internal/player"
	"github.com/sonicwave-radio/sonicwave/internal/radiobrowser"
	"github.com/sonicwave-radio/sonicwave/internal/recommend"
	"github.com/sonicwave-radio/sonicwave/internal/station"
	"github.com/sonicwave-radio/sonicwave/internal/visualizer"
)

const (
	visualizerBars   = 24
	visualizerHeight = 8
	searchTimeout    = 30 * time.Second
	homeLimit        = 28
)

// Directory is the station search dependency of the UI.
type Directory interface {
	Search(ctx context.Context, filters radiobrowser.Filters) ([]station.Station, error)
	TopStations(ctx context.Context, limit int) ([]station.Station, error)
}

// Recommender is the AI recommendation dependency of the UI.
type Recommender interface {
	Recommend(ctx context.Context, prompt string, history []recommend.Message) *recommend.Recommendation
}

// UI owns the tview application. It observes playback through the engine's
// state subscription and only ever drives it through the engine's public
// operations.
type UI struct {
	app         *tview.Application
	engine      *player.Engine
	directory   Directory
	recommender Recommender
	favorites   *config.Favorites
	prefs       *config.Prefs
	analyzer    visualizer.Analyzer

	table  *tview.Table
	footer *tview.TextView
	input  *tview.InputField
	layout *tview.Flex

	mu        sync.Mutex
	stations  []station.Station
	favView   bool
	banner    string
	reasoning string
	history   []recommend.Message
	frame     []int

	// Monotonic guard: a search result only applies if no newer search
	// has been issued since it started.
	searchSeq atomic.Uint64

	visLoop *visualizer.Loop
}

// NewUI wires the terminal front-end.
func NewUI(engine *player.Engine, dir Directory, rec Recommender, favs *config.Favorites, prefs *config.Prefs, analyzer visualizer.Analyzer) *UI {
	u := &UI{
		app:         tview.NewApplication(),
		engine:      engine,
		directory:   dir,
		recommender: rec,
		favorites:   favs,
		prefs:       prefs,
		analyzer:    analyzer,
	}

	u.table = tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	u.footer = tview.NewTextView().SetDynamicColors(true)
	u.input = tview.NewInputField().SetLabel(" Search: ")

	u.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(u.table, 0, 1, true).
		AddItem(u.input, 1, 0, false).
		AddItem(u.footer, 3, 0, false)

	u.applyTheme(prefs.Theme())
	u.bindKeys()

	u.table.SetSelectedFunc(func(row, _ int) {
		u.selectRow(row)
	})

	engine.Subscribe(func(player.State) {
		u.app.QueueUpdateDraw(u.redrawFooter)
	})

	u.visLoop = visualizer.NewLoop(analyzer, func() bool {
		return engine.State().IsPlaying
	}, visualizerBars, visualizerHeight, func(frame []int) {
		u.mu.Lock()
		u.frame = frame
		u.mu.Unlock()
		u.app.QueueUpdateDraw(u.redrawFooter)
	})

	return u
}

// Run loads the home view and blocks until the application exits.
func (u *UI) Run() error {
	u.visLoop.Start()
	defer u.visLoop.Stop()

	go u.loadTop()

	u.renderTable()
	u.redrawFooter()
	return u.app.SetRoot(u.layout, true).SetFocus(u.table).Run()
}

// Shutdown stops the application from another goroutine.
func (u *UI) Shutdown() {
	u.app.Stop()
}

func (u *UI) bindKeys() {
	u.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if u.app.GetFocus() == u.input {
			if ev.Key() == tcell.KeyEscape {
				u.app.SetFocus(u.table)
				return nil
			}
			return ev
		}

		switch ev.Rune() {
		case 'q':
			u.app.Stop()
			return nil
		case ' ':
			u.engine.TogglePlayPause()
			return nil
		case 'n':
			u.engine.Skip(1)
			return nil
		case 'p':
			u.engine.Skip(-1)
			return nil
		case 'f':
			u.toggleFavorite()
			return nil
		case 'v':
			u.toggleView()
			return nil
		case '+', '=':
			u.engine.SetVolume(u.engine.Volume() + 0.05)
			return nil
		case '-':
			u.engine.SetVolume(u.engine.Volume() - 0.05)
			return nil
		case 't':
			u.applyTheme(u.prefs.ToggleTheme())
			return nil
		case '/':
			u.startSearch()
			return nil
		case 'a':
			u.startAIPrompt()
			return nil
		}
		return ev
	})
}

func (u *UI) applyTheme(theme string) {
	bg := tcell.NewHexColor(0x1a1b25)
	fg := tcell.NewHexColor(0xa3aacb)
	if theme == config.ThemeLight {
		bg = tcell.NewHexColor(0xf4f4f8)
		fg = tcell.NewHexColor(0x2a2d3a)
	}
	u.table.SetBackgroundColor(bg)
	u.footer.SetBackgroundColor(bg)
	u.input.SetFieldBackgroundColor(bg)
	u.footer.SetTextColor(fg)
}

func (u *UI) startSearch() {
	u.input.SetLabel(" Search: ").SetText("")
	u.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			u.app.SetFocus(u.table)
			return
		}
		query := u.input.GetText()
		u.app.SetFocus(u.table)
		if query == "" {
			return
		}
		go u.search(radiobrowser.Filters{Name: query, Limit: homeLimit})
	})
	u.app.SetFocus(u.input)
}

func (u *UI) startAIPrompt() {
	u.input.SetLabel(" AI DJ: ").SetText("")
	u.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			u.app.SetFocus(u.table)
			return
		}
		prompt := u.input.GetText()
		u.app.SetFocus(u.table)
		if prompt == "" {
			return
		}
		go u.askAI(prompt)
	})
	u.app.SetFocus(u.input)
}

func (u *UI) loadTop() {
	seq := u.searchSeq.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	stations, err := u.directory.TopStations(ctx, homeLimit)
	u.applyResults(seq, stations, err)
}

// search runs a directory query off the UI goroutine. On failure the
// previous result set stays visible; only the banner changes.
func (u *UI) search(filters radiobrowser.Filters) {
	seq := u.searchSeq.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	stations, err := u.directory.Search(ctx, filters)
	u.applyResults(seq, stations, err)
}

func (u *UI) applyResults(seq uint64, stations []station.Station, err error) {
	if seq != u.searchSeq.Load() {
		log.Debug().Msg("Dropping stale search response")
		return
	}

	u.mu.Lock()
	if err != nil {
		u.banner = fmt.Sprintf("Search failed: %v", err)
	} else {
		u.banner = ""
		u.favView = false
		u.stations = stations
		u.engine.SetQueue(stations)
	}
	u.mu.Unlock()

	u.app.QueueUpdateDraw(func() {
		u.renderTable()
		u.redrawFooter()
	})
}

func (u *UI) askAI(prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	u.mu.Lock()
	history := make([]recommend.Message, len(u.history))
	copy(history, u.history)
	u.mu.Unlock()

	rec := u.recommender.Recommend(ctx, prompt, history)

	u.mu.Lock()
	u.reasoning = rec.Reasoning
	u.history = append(u.history,
		recommend.Message{Role: "user", Content: prompt},
		recommend.Message{Role: "model", Content: rec.Reasoning},
	)
	u.mu.Unlock()

	query := rec.SearchQuery
	if query.Limit <= 0 {
		query.Limit = homeLimit
	}
	u.search(query)
}

func (u *UI) toggleView() {
	u.mu.Lock()
	u.favView = !u.favView
	if u.favView {
		u.stations = u.favorites.All()
		u.engine.SetQueue(u.stations)
	}
	fav := u.favView
	u.mu.Unlock()

	if !fav {
		go u.loadTop()
		return
	}
	u.renderTable()
	u.redrawFooter()
}

func (u *UI) toggleFavorite() {
	row, _ := u.table.GetSelection()
	u.mu.Lock()
	idx := row - 1 // Header row
	if idx < 0 || idx >= len(u.stations) {
		u.mu.Unlock()
		return
	}
	s := u.stations[idx]
	u.mu.Unlock()

	u.favorites.Toggle(s)
	u.renderTable()
}

func (u *UI) selectRow(row int) {
	u.mu.Lock()
	idx := row - 1
	if idx < 0 || idx >= len(u.stations) {
		u.mu.Unlock()
		return
	}
	s := u.stations[idx]
	u.mu.Unlock()

	u.engine.SelectStation(s)
}

func (u *UI) renderTable() {
	u.mu.Lock()
	stations := u.stations
	fav := u.favView
	u.mu.Unlock()

	u.table.Clear()

	title := "Top Stations"
	if fav {
		title = "Favorites"
	}
	headers := []string{title, "Country", "Tags", "Codec", "Clicks", ""}
	for col, h := range headers {
		u.table.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}

	for i, s := range stations {
		mark := " "
		if u.favorites.IsFavorite(s.UUID) {
			mark = "♥"
		}
		u.table.SetCell(i+1, 0, tview.NewTableCell(s.Name).SetExpansion(2))
		u.table.SetCell(i+1, 1, tview.NewTableCell(s.Country))
		u.table.SetCell(i+1, 2, tview.NewTableCell(tagSummary(s, 3)))
		u.table.SetCell(i+1, 3, tview.NewTableCell(codecLabel(s)))
		u.table.SetCell(i+1, 4, tview.NewTableCell(fmt.Sprintf("%d", s.ClickCount)))
		u.table.SetCell(i+1, 5, tview.NewTableCell(mark))
	}
}

func (u *UI) redrawFooter() {
	st := u.engine.State()

	u.mu.Lock()
	frame := u.frame
	banner := u.banner
	reasoning := u.reasoning
	u.mu.Unlock()

	u.footer.SetText(footerText(st, frame, banner, reasoning))
}
