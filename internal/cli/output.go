// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a string without performing I/O.
//   - Write* functions write tables to a writer or to the filesystem.

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agbru/distcalc/internal/matrix"
	"github.com/agbru/distcalc/internal/ui"
)

// DefaultPrecision is the number of decimals written for each cell.
const DefaultPrecision = 6

// OutputConfig holds the result output options.
type OutputConfig struct {
	// OutputFile receives the distance table; empty means the display writer.
	OutputFile string
	// StdErrFile receives the standard-error table when set.
	StdErrFile string
	// Quiet suppresses everything but the tables.
	Quiet bool
	// Precision is the number of decimals per cell (DefaultPrecision if 0).
	Precision int
}

// FormatCell formats one table value. Undefined values print as NaN.
func FormatCell(v float64, precision int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// WriteTable writes a square table as tab-separated values: a header row
// of names, then one row per name.
func WriteTable(w io.Writer, names []string, values [][]float64, precision int) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'

	header := make([]string, 0, len(names)+1)
	header = append(header, "")
	header = append(header, names...)
	if err := tw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(names)+1)
	for i, name := range names {
		row[0] = name
		for j, v := range values[i] {
			row[j+1] = FormatCell(v, precision)
		}
		if err := tw.Write(row); err != nil {
			return err
		}
	}
	tw.Flush()
	return tw.Error()
}

// WriteDistances writes the distance table of m.
func WriteDistances(w io.Writer, m *matrix.Matrix, precision int) error {
	return WriteTable(w, m.Names(), m.Distances(), precision)
}

// WriteStdErrors writes the standard-error table of m.
func WriteStdErrors(w io.Writer, m *matrix.Matrix, precision int) error {
	return WriteTable(w, m.Names(), m.StdErrors(), precision)
}

// WriteToFile creates path, including missing parent directories, and
// passes it to write.
func WriteToFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DisplayMatrixWithConfig writes the distance table to cfg.OutputFile, or
// to out when no file is set, and the standard-error table to
// cfg.StdErrFile when set. Confirmations go to status so that out carries
// nothing but tables.
func DisplayMatrixWithConfig(out, status io.Writer, m *matrix.Matrix, cfg OutputConfig) error {
	if cfg.OutputFile == "" {
		if err := WriteDistances(out, m, cfg.Precision); err != nil {
			return err
		}
	} else {
		err := WriteToFile(cfg.OutputFile, func(w io.Writer) error { return WriteDistances(w, m, cfg.Precision) })
		if err != nil {
			return err
		}
		if !cfg.Quiet {
			fmt.Fprintf(status, "%s✓ Distances saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
		}
	}

	if cfg.StdErrFile != "" {
		err := WriteToFile(cfg.StdErrFile, func(w io.Writer) error { return WriteStdErrors(w, m, cfg.Precision) })
		if err != nil {
			return err
		}
		if !cfg.Quiet {
			fmt.Fprintf(status, "%s✓ Standard errors saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), cfg.StdErrFile, ui.ColorReset())
		}
	}
	return nil
}
