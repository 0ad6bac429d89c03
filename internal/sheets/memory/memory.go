// Package memory keeps written sheet ranges in memory. It backs dry runs of
// the export and the exporter's tests.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"saldo/internal/sheets"
)

type Writer struct {
	mu     sync.Mutex
	ranges map[string][][]any
	clears []string
}

var _ sheets.ValuesWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{ranges: make(map[string][][]any)}
}

// ClearRange forgets every range on the same sheet.
func (w *Writer) ClearRange(_ context.Context, rng string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	sheet := sheetOf(rng)
	for key := range w.ranges {
		if sheetOf(key) == sheet {
			delete(w.ranges, key)
		}
	}
	w.clears = append(w.clears, rng)
	return nil
}

func (w *Writer) WriteRange(_ context.Context, rng string, rows [][]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	copied := make([][]any, len(rows))
	for i, row := range rows {
		copied[i] = append([]any(nil), row...)
	}
	w.ranges[rng] = copied
	return nil
}

// Rows returns what was last written at rng.
func (w *Writer) Rows(rng string) ([][]any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rows, ok := w.ranges[rng]
	return rows, ok
}

// Clears lists cleared ranges in call order.
func (w *Writer) Clears() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.clears...)
}

// Dump prints rng as tab separated lines.
func (w *Writer) Dump(out io.Writer, rng string) error {
	rows, ok := w.Rows(rng)
	if !ok {
		return fmt.Errorf("nothing written at %s", rng)
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintln(out, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func sheetOf(rng string) string {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		return rng[:i]
	}
	return rng
}
