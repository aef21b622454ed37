package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readRoster returns the first column of every CSV record. Blank lines
// come back as empty rows so that row numbers match the file.
func readRoster(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var rows []string
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading roster: %w", err)
		}
		start, _ := cr.FieldPos(0)
		for line+1 < start {
			rows = append(rows, "")
			line++
		}
		rows = append(rows, strings.TrimSpace(rec[0]))
		line = start
	}
}

func (a *App) roster(ctx context.Context, args []string) error {
	fs := newFlagSet("roster")
	file := fs.StringP("file", "f", "", `CSV file with one plate per row, "-" for stdin`)
	actor := fs.Int64("actor", 0, "act as this id (admin tokens only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: roster needs -f FILE", ErrUsage)
	}

	in := a.stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rows, err := readRoster(in)
	if err != nil {
		return err
	}

	resp, err := a.client.SubmitRoster(ctx, *actor, rows)
	if err != nil {
		return err
	}

	if !resp.Applied {
		fmt.Fprintln(a.out, "Roster rejected, nothing applied. Invalid rows:")
		for _, re := range resp.RowErrors {
			fmt.Fprintf(a.out, "  row %d: %q\n", re.Row, re.Value)
		}
		return errors.New("roster rejected")
	}

	fmt.Fprintf(a.out, "Added (%d): %s\n", len(resp.Added), strings.Join(resp.Added, " "))
	fmt.Fprintf(a.out, "Removed (%d): %s\n", len(resp.Removed), strings.Join(resp.Removed, " "))
	return nil
}
