package ui

import (
	"fmt"
	"strings"

	"github.com/sonicwave-radio/sonicwave/internal/player"
	"github.com/sonicwave-radio/sonicwave/internal/station"
)

var barRunes = []rune(" ▁▂▃▄▅▆▇█")

// barString renders one visualizer frame as a row of block runes. Heights
// are scaled so that maxHeight maps to the tallest rune.
func barString(frame []int, maxHeight int) string {
	if maxHeight <= 0 {
		return ""
	}
	var b strings.Builder
	for _, h := range frame {
		if h < 0 {
			h = 0
		}
		idx := h * (len(barRunes) - 1) / maxHeight
		if idx >= len(barRunes) {
			idx = len(barRunes) - 1
		}
		b.WriteRune(barRunes[idx])
	}
	return b.String()
}

// volumeGauge renders the volume as a ten-slot gauge, e.g. "▐██████░░░░▌".
func volumeGauge(volume float64) string {
	const slots = 10
	filled := int(volume*slots + 0.5)
	if filled > slots {
		filled = slots
	}
	if filled < 0 {
		filled = 0
	}
	return "▐" + strings.Repeat("█", filled) + strings.Repeat("░", slots-filled) + "▌"
}

func statusLabel(st player.State) string {
	switch {
	case st.IsLoading:
		return "Tuning in"
	case st.IsPlaying:
		return "On air"
	case st.Status == player.StatusPaused:
		return "Paused"
	case st.Status == player.StatusError:
		return "Error"
	default:
		return "Stopped"
	}
}

// footerText assembles the three-line player footer: now playing, the
// visualizer row, and the banner or AI reasoning line.
func footerText(st player.State, frame []int, banner, reasoning string) string {
	var lines [3]string

	now := "Pick a station and press Enter"
	if st.Station != nil {
		now = fmt.Sprintf("%s · %s", statusLabel(st), st.Station.Name)
		if st.Status == player.StatusError && st.Err != "" {
			now += " · " + st.Err
		}
	}
	lines[0] = fmt.Sprintf(" %s %s %d%%", now, volumeGauge(st.Volume), int(st.Volume*100+0.5))
	lines[1] = " " + barString(frame, visualizerHeight)

	switch {
	case banner != "":
		lines[2] = " " + banner
	case reasoning != "":
		lines[2] = " AI DJ: " + reasoning
	default:
		lines[2] = " [/] search  [a] ask AI  [space] play/pause  [n/p] skip  [f] fav  [v] view  [t] theme  [q] quit"
	}

	return strings.Join(lines[:], "\n")
}

// tagSummary joins at most max tags for the table cell.
func tagSummary(s station.Station, max int) string {
	tags := s.TagList()
	if len(tags) > max {
		tags = tags[:max]
	}
	return strings.Join(tags, ", ")
}

func codecLabel(s station.Station) string {
	if s.Codec == "" {
		return ""
	}
	if s.Bitrate > 0 {
		return fmt.Sprintf("%s %dk", s.Codec, s.Bitrate)
	}
	return s.Codec
}
