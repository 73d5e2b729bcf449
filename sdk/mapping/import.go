package mapping

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/notes"
)

// ErrInvalidChannel is returned when a channel field is not a number in [0,15].
var ErrInvalidChannel = errors.New("invalid MIDI channel")

// ImportFile reads a four-field mapping file and appends its mappings to t.
// See Import for the format.
func ImportFile(path string, t *Table, logger contracts.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()
	return Import(f, t, logger)
}

// Import reads lines of the form
//
//	<note> <channel> <down-char> <up-char>
//
// e.g. "C4 0 t t". Lines with any other number of fields are skipped and
// logged. Blank lines and lines starting with '#' are ignored. A malformed
// note or channel fails the whole import and nothing is added to t.
//
// Returns the number of mappings added.
func Import(r io.Reader, t *Table, logger contracts.Logger) (int, error) {
	var parsed []NoteMapping

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			logger.Warn("Skipping mapping line without exactly 4 fields",
				logger.Field().Int("line", lineNo),
				logger.Field().Int("fields", len(fields)))
			continue
		}

		note, err := notes.ParseNote(fields[0])
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		channel, err := parseChannel(fields[1])
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		down, _ := utf8.DecodeRuneInString(fields[2])
		up, _ := utf8.DecodeRuneInString(fields[3])

		m := New(note, channel, nil)
		m.On = DownSequence(down, nil, nil)
		m.Off = UpSequence(up, nil, nil)
		logger.Debug("Parsed mapping line",
			logger.Field().Int("line", lineNo),
			logger.Field().String("mapping", m.String()))
		parsed = append(parsed, m)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read mapping file: %w", err)
	}

	for _, m := range parsed {
		t.Add(m)
	}
	return len(parsed), nil
}

func parseChannel(s string) (notes.Channel, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || v > 15 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, s)
	}
	return notes.Channel(v), nil
}
