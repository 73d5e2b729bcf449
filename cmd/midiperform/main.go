// Command midiperform turns notes from a MIDI controller into keystrokes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/leandrodaf/midiperform/internal/logger"
	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/keydriver"
	"github.com/leandrodaf/midiperform/sdk/mapping"
	"github.com/leandrodaf/midiperform/sdk/midi"
	"github.com/leandrodaf/midiperform/sdk/notes"
)

// mapFiles collects repeated -map flags.
type mapFiles []string

func (m *mapFiles) String() string     { return strings.Join(*m, ",") }
func (m *mapFiles) Set(v string) error { *m = append(*m, v); return nil }

func main() {
	var (
		list      = flag.Bool("list", false, "List available MIDI devices and exit")
		device    = flag.String("device", "", "Connect to the named device (default: first available)")
		monitor   = flag.Bool("monitor", false, "Log decoded note events without sending keys")
		noDefault = flag.Bool("no-default", false, "Do not load the built-in piano/pad layout")
		logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFile   = flag.String("log-file", "", "Write logs to this file instead of stderr")
		settle    = flag.Duration("settle", keydriver.DefaultSettleDelay, "Pause after a modifier change")
		maps      mapFiles
	)
	flag.Var(&maps, "map", "Mapping file: .yaml/.yml sequences or four-field text (repeatable)")
	flag.Parse()

	log, level, err := newLogger(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
		contracts.WithKeyboardConfig(contracts.KeyboardConfig{SettleDelay: *settle}),
	}

	switch {
	case *list:
		err = listDevices(log, opts)
	case *monitor:
		err = runMonitor(log, *device, opts)
	default:
		err = run(log, *device, maps, !*noDefault, opts)
	}
	if err != nil {
		log.Error("midiperform failed", log.Field().Error("error", err))
		os.Exit(1)
	}
}

// newLogger returns a logger already at the requested level and destination,
// so that mapping file diagnostics follow -log-level and -log-file.
func newLogger(levelText, file string) (contracts.Logger, contracts.LogLevel, error) {
	level, err := contracts.ParseLogLevel(levelText)
	if err != nil {
		return nil, level, err
	}
	log := logger.NewZapLogger()
	if file != "" {
		log.SetDestination(contracts.FileLog, file)
	}
	log.SetLevel(level)
	return log, level, nil
}

func listDevices(log contracts.Logger, opts []contracts.Option) error {
	client, err := midi.NewMIDIClient(opts...)
	if err != nil {
		return err
	}
	defer client.Stop()

	devices, err := client.ListDevices()
	if err != nil {
		return err
	}
	fmt.Println("Available MIDI devices:")
	for _, d := range devices {
		fmt.Printf("    %d: %s\n", d.ID, d.Name)
	}
	return nil
}

func loadTable(log contracts.Logger, files []string, defaults bool) (*mapping.Table, error) {
	table := mapping.NewTable()
	// User files come first so their mappings shadow the defaults.
	for _, path := range files {
		var (
			n   int
			err error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			n, err = mapping.LoadYAMLFile(path, table, log)
		default:
			n, err = mapping.ImportFile(path, table, log)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Info("Loaded mappings", log.Field().String("file", path), log.Field().Int("count", n))
	}
	if defaults {
		n := mapping.LoadDefaults(table)
		log.Info("Loaded default layout", log.Field().Int("count", n))
	}
	if table.Len() == 0 {
		return nil, errors.New("no mappings configured")
	}
	return table, nil
}

func run(log contracts.Logger, device string, files []string, defaults bool, opts []contracts.Option) error {
	table, err := loadTable(log, files, defaults)
	if err != nil {
		return err
	}

	performer, err := midi.NewPerformer(table, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := performer.Close(); err != nil {
			log.Warn("Shutdown incomplete", log.Field().Error("error", err))
		}
	}()

	if _, err := performer.Start(device); err != nil {
		return err
	}
	fmt.Println("Performing... Press Ctrl+C to exit.")
	waitForSignal()
	return nil
}

func runMonitor(log contracts.Logger, device string, opts []contracts.Option) error {
	client, err := midi.NewMIDIClient(opts...)
	if err != nil {
		return err
	}
	defer client.Stop()

	devices, err := client.ListDevices()
	if err != nil {
		return err
	}
	id := -1
	for _, d := range devices {
		if device == "" || d.Name == device {
			id = d.ID
			break
		}
	}
	if id < 0 {
		return fmt.Errorf("%w: %q", midi.ErrDeviceNotFound, device)
	}
	if err := client.SelectDevice(id); err != nil {
		return err
	}

	client.StartCapture(func(source string, data []byte) {
		msg, err := notes.Decode(data)
		if err != nil {
			log.Debug("Undecodable MIDI message", log.Field().Error("error", err))
			return
		}
		log.Info("MIDI Event",
			log.Field().String("source", source),
			log.Field().String("kind", msg.Kind.String()),
			log.Field().Int("channel", int(msg.Channel)),
			log.Field().String("note", msg.Note.String()),
			log.Field().Uint8("velocity", msg.Velocity),
		)
	})

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	waitForSignal()
	return nil
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
