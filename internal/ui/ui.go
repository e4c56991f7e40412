// Package ui renders the terminal dashboard: per-channel receive-rate
// bars on top, the rolling message pane below.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// How many messages the pane scrolls back.
const messageBacklog = 200

// Longest rate bar, in cells.
const maxBarWidth = 40

// KeyEvent is a dashboard keystroke the driver loop acts on.
type KeyEvent struct {
	Quit  bool
	Clear bool
}

// Snapshot is the per-tick stats view the dashboard renders.
type Snapshot struct {
	// VCRates is frames per second per virtual channel over the rate
	// window.
	VCRates map[uint8]float64

	Packets  uint64
	Fills    uint64
	Discards uint64
	CRCBad   uint64
	LRITs    uint64
}

// App owns the tview application. The driver loop pushes snapshots and
// messages in; keystrokes come back on the events channel.
type App struct {
	app      *tview.Application
	rates    *tview.TextView
	pane     *tview.TextView
	messages []string
	events   chan<- KeyEvent
}

// New builds the dashboard. Keystrokes are delivered on events; the
// channel should be buffered since the UI never blocks on it.
func New(events chan<- KeyEvent) *App {
	a := &App{
		app:    tview.NewApplication(),
		rates:  tview.NewTextView(),
		pane:   tview.NewTextView(),
		events: events,
	}

	a.rates.SetBorder(true)
	a.rates.SetTitle(" VCDU receive rates (pps) ")
	a.pane.SetBorder(true)
	a.pane.SetTitle(" Messages (c to clear) ")

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.rates, 12, 0, false).
		AddItem(a.pane, 0, 1, false)

	a.app.SetRoot(flex, true)
	a.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		var out KeyEvent
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			out.Quit = true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			out.Quit = true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'c':
			out.Clear = true
		default:
			return ev
		}
		select {
		case a.events <- out:
		default:
		}
		return nil
	})

	return a
}

// Run blocks until Stop. Call from a dedicated goroutine.
func (a *App) Run() error {
	return a.app.Run()
}

// Stop tears the terminal back down.
func (a *App) Stop() {
	a.app.Stop()
}

// Update redraws the rate bars from a fresh snapshot.
func (a *App) Update(s Snapshot) {
	ids := make([]int, 0, len(s.VCRates))
	for id := range s.VCRates {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		rate := s.VCRates[uint8(id)]
		width := int(rate)
		if width > maxBarWidth {
			width = maxBarWidth
		}
		fmt.Fprintf(&b, "VC%02d %-*s %6.1f\n", id, maxBarWidth, strings.Repeat("█", width), rate)
	}
	fmt.Fprintf(&b, "\nframes %d  fill %d  discarded %d  crc-bad %d  files %d",
		s.Packets, s.Fills, s.Discards, s.CRCBad, s.LRITs)

	a.app.QueueUpdateDraw(func() {
		a.rates.SetText(b.String())
	})
}

// AppendMessage adds one line to the message pane.
func (a *App) AppendMessage(line string) {
	a.messages = append(a.messages, line)
	if len(a.messages) > messageBacklog {
		a.messages = a.messages[len(a.messages)-messageBacklog:]
	}
	text := strings.Join(a.messages, "\n")
	a.app.QueueUpdateDraw(func() {
		a.pane.SetText(text)
		a.pane.ScrollToEnd()
	})
}

// ClearMessages empties the message pane.
func (a *App) ClearMessages() {
	a.messages = a.messages[:0]
	a.app.QueueUpdateDraw(func() {
		a.pane.SetText("")
	})
}
