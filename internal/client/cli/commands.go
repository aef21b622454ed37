package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/api"
	"github.com/spf13/pflag"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

// onePlate parses fs and returns its single positional argument.
func onePlate(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s needs exactly one plate", ErrUsage, fs.Name())
	}
	return fs.Arg(0), nil
}

func (a *App) ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) sighting(ctx context.Context, args []string) error {
	fs := newFlagSet("sighting")
	observer := fs.Int64P("observer", "o", 0, "observer id (admin tokens only)")
	plate, err := onePlate(fs, args)
	if err != nil {
		return err
	}

	resp, err := a.client.SubmitSighting(ctx, *observer, plate)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s %s", resp.Plate, resp.Outcome)
	if resp.IsOwn {
		fmt.Fprint(a.out, " (own)")
	}
	if resp.Reactivated {
		fmt.Fprint(a.out, " (reactivated)")
	}
	fmt.Fprintf(a.out, " at %s\n", resp.ObservedAt.Local().Format(time.DateTime))
	return nil
}

func (a *App) archive(ctx context.Context, args []string) error {
	fs := newFlagSet("archive")
	actor := fs.Int64("actor", 0, "act as this id (admin tokens only)")
	plate, err := onePlate(fs, args)
	if err != nil {
		return err
	}

	outcome, err := a.client.ArchivePlate(ctx, *actor, plate)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, outcome)
	return nil
}

func (a *App) report(ctx context.Context, args []string) error {
	fs := newFlagSet("report")
	kind := fs.StringP("kind", "k", api.ReportEndOfDay, "report kind")
	page := fs.IntP("page", "p", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.client.Report(ctx, *kind, *page)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	switch {
	case resp.EndOfDay != nil:
		r := resp.EndOfDay
		fmt.Fprintf(w, "Day\t%s\nToday\t%d\nAll time\t%d\nForeign today\t%d\n", r.Day, r.Today, r.AllTime, r.ForeignToday)
	case resp.Kind == api.ReportActiveObservers:
		for _, id := range resp.Observers {
			fmt.Fprintln(w, id)
		}
	default:
		printRows(w, resp)
		fmt.Fprintf(w, "page %d of %d (%d total)\n", resp.Page, resp.Pages, resp.Total)
	}
	return w.Flush()
}

func printRows(w *tabwriter.Writer, resp *api.ReportResponse) {
	for _, r := range resp.RepeatCounts {
		fmt.Fprintf(w, "%s\t%d\treactivated %d\n", r.Plate, r.Sightings, r.ReactivationCount)
	}
	for _, d := range resp.DailyTotals {
		fmt.Fprintf(w, "%s\t%d\n", d.Day, d.Count)
	}
	for _, u := range resp.UserActivity {
		fmt.Fprintf(w, "%d\t%d\n", u.ObserverID, u.Sightings)
	}
	for _, b := range resp.BulkChanges {
		fmt.Fprintf(w, "%s\tby %d\t+%s\t-%s\n", b.CreatedAt.Local().Format(time.DateTime), b.ActorID,
			strings.Join(b.Added, " "), strings.Join(b.Removed, " "))
	}
}

func (a *App) history(ctx context.Context, args []string) error {
	fs := newFlagSet("history")
	audit := fs.Bool("audit", false, "show ownership and archive changes instead of sightings")
	plate, err := onePlate(fs, args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if *audit {
		entries, err := a.client.AuditHistory(ctx, plate)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\tby %d\n", e.CreatedAt.Local().Format(time.DateTime), e.Action, e.ActorID)
		}
		return w.Flush()
	}

	h, err := a.client.PlateHistory(ctx, plate)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\t%s\treactivated %d\n", h.Plate, h.State, h.ReactivationCount)
	for _, at := range h.Sightings {
		fmt.Fprintf(w, "\t%s\n", at.Local().Format(time.DateTime))
	}
	return w.Flush()
}
