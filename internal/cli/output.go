package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/kroma-labs/connpass-go/connpass"
	"github.com/kroma-labs/connpass-go/internal/config"
)

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()

	case config.OutputTable:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

const timeLayout = "2006-01-02 15:04"

func eventsTable(events []connpass.Event) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSTART\tTITLE\tSEATS\tSTATUS\tPLACE\tURL")
		for _, ev := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				ev.ID,
				formatTime(ev.StartedAt),
				truncate(ev.Title, 40),
				seats(ev.Accepted, ev.Limit),
				ev.OpenStatus,
				truncate(ev.Place, 24),
				ev.URL,
			)
		}
	}
}

func groupsTable(groups []connpass.GroupDetail) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSUBDOMAIN\tTITLE\tMEMBERS\tURL")
		for _, g := range groups {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				g.ID, g.Subdomain, truncate(g.Title, 40), optInt(g.MemberUsersCount), g.URL)
		}
	}
}

func usersTable(users []connpass.User) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNICKNAME\tNAME\tATTENDED\tORGANIZED\tPRESENTED\tURL")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.Nickname, u.DisplayName,
				optInt(u.AttendedEventCount),
				optInt(u.OrganizeEventCount),
				optInt(u.PresenterEventCount),
				u.URL,
			)
		}
	}
}

// summary is the line printed after a table, e.g. "3 of 91 events".
func summary(w io.Writer, returned, available int, noun string) {
	fmt.Fprintf(w, "\n%d of %d %s\n", returned, available, noun)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func seats(accepted, limit *int) string {
	switch {
	case accepted == nil && limit == nil:
		return "-"
	case limit == nil:
		return fmt.Sprintf("%d", *accepted)
	case accepted == nil:
		return fmt.Sprintf("-/%d", *limit)
	default:
		return fmt.Sprintf("%d/%d", *accepted, *limit)
	}
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
