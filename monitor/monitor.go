// Package monitor is an interactive terminal front end for stepping an
// emulator.
package monitor

import (
	"errors"

	"github.com/jroimartin/gocui"

	"github.com/ezrec/uavr/emulator"
	"github.com/ezrec/uavr/translate"
)

var f = translate.From

const (
	VIEW_LISTING   = "listing"
	VIEW_REGISTERS = "registers"
	VIEW_STATUS    = "status"
)

// Monitor steps an emulator under a terminal user interface.
type Monitor struct {
	Emulator *emulator.Emulator // Emulator being monitored.
	Limit    int                // Instructions per run request, if positive.

	done bool
	err  error
}

// NewMonitor creates a monitor for an emulator.
func NewMonitor(emu *emulator.Emulator) (mon *Monitor) {
	mon = &Monitor{
		Emulator: emu,
	}

	return
}

// Run the monitor until the user quits.
func (mon *Monitor) Run() (err error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return
	}
	defer g.Close()

	g.SetManagerFunc(mon.layout)

	bindings := [](struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}){
		{gocui.KeyCtrlC, quit},
		{'q', quit},
		{'s', mon.step},
		{gocui.KeySpace, mon.step},
		{'r', mon.run},
		{'x', mon.reset},
	}

	for _, kb := range bindings {
		err = g.SetKeybinding("", kb.key, gocui.ModNone, kb.handler)
		if err != nil {
			return
		}
	}

	err = g.MainLoop()
	if errors.Is(err, gocui.ErrQuit) {
		err = nil
	}

	return
}

// layout creates the views, and redraws them from the emulator state.
func (mon *Monitor) layout(g *gocui.Gui) (err error) {
	maxX, maxY := g.Size()

	views := [](struct {
		name           string
		title          string
		x0, y0, x1, y1 int
	}){
		{VIEW_LISTING, f("Listing"), 0, 0, maxX*2/3 - 1, maxY - 5},
		{VIEW_REGISTERS, f("Registers"), maxX * 2 / 3, 0, maxX - 1, maxY - 5},
		{VIEW_STATUS, f("Status"), 0, maxY - 4, maxX - 1, maxY - 1},
	}

	for _, view := range views {
		v, err := g.SetView(view.name, view.x0, view.y0, view.x1, view.y1)
		if err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
			v.Title = view.title
		}
		v.Clear()

		switch view.name {
		case VIEW_LISTING:
			_, lines := v.Size()
			err = Listing(v, mon.Emulator, lines)
		case VIEW_REGISTERS:
			err = Registers(v, &mon.Emulator.Registers)
		case VIEW_STATUS:
			err = Status(v, mon.Emulator, mon.done, mon.err)
		}
		if err != nil {
			return err
		}
	}

	return
}

// halted reports if the emulator can no longer be stepped.
func (mon *Monitor) halted() bool {
	return mon.done || mon.err != nil
}

func (mon *Monitor) step(g *gocui.Gui, v *gocui.View) error {
	if !mon.halted() {
		mon.done, mon.err = mon.Emulator.Tick()
	}

	return nil
}

func (mon *Monitor) run(g *gocui.Gui, v *gocui.View) error {
	if !mon.halted() {
		mon.done, mon.err = mon.Emulator.Run(mon.Limit)
	}

	return nil
}

func (mon *Monitor) reset(g *gocui.Gui, v *gocui.View) error {
	mon.done = false
	mon.err = mon.Emulator.Reset()

	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
