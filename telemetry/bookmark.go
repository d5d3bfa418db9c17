package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkDivergenceSpike BookmarkType = "divergence_spike"
	BookmarkDensitySurge    BookmarkType = "density_surge"
	BookmarkDensityLoss     BookmarkType = "density_loss"
	BookmarkSettled         BookmarkType = "settled"
)

// settledSpeed is the max speed below which a window counts as at rest.
const settledSpeed = 1e-3

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Tick        int32        `json:"tick"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentDensityPeak float64 // peak total density since the last loss bookmark
	calmWindows       int     // consecutive windows below settledSpeed
	moved             bool    // flow was above settledSpeed since the last settle
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settle detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Divergence spike: projection residual > 3x rolling average
		if b := bd.checkDivergenceSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Density surge: total density > 1.5x rolling average
		if b := bd.checkDensitySurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Density loss: dropped >30% from recent peak
		if b := bd.checkDensityLoss(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Settled: flow came to rest for 5 windows after moving
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if stats.TotalDensity > bd.recentDensityPeak {
		bd.recentDensityPeak = stats.TotalDensity
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkDivergenceSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DivergenceNorm
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.DivergenceNorm > avg*3.0 {
		return &Bookmark{
			Type:        BookmarkDivergenceSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Divergence %.4f is %.1fx average (%.4f)", stats.DivergenceNorm, stats.DivergenceNorm/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkDensitySurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.TotalDensity
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.TotalDensity > avg*1.5 {
		return &Bookmark{
			Type:        BookmarkDensitySurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Total density %.2f is %.1fx average (%.2f)", stats.TotalDensity, stats.TotalDensity/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkDensityLoss(stats WindowStats) *Bookmark {
	if bd.recentDensityPeak == 0 {
		return nil
	}

	drop := 1.0 - stats.TotalDensity/bd.recentDensityPeak
	if drop > 0.30 {
		oldPeak := bd.recentDensityPeak
		bd.recentDensityPeak = stats.TotalDensity

		return &Bookmark{
			Type:        BookmarkDensityLoss,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Total density fell %.0f%% from peak %.2f to %.2f", drop*100, oldPeak, stats.TotalDensity),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.MaxSpeed >= settledSpeed {
		bd.moved = true
		bd.calmWindows = 0
		return nil
	}
	if !bd.moved {
		return nil
	}

	bd.calmWindows++
	if bd.calmWindows < 5 {
		return nil
	}
	bd.moved = false
	bd.calmWindows = 0

	return &Bookmark{
		Type:        BookmarkSettled,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Flow at rest (max speed %.2g) for 5 windows", stats.MaxSpeed),
	}
}
