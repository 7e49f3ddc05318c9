package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kroma-labs/connpass-go/connpass"
	"github.com/kroma-labs/connpass-go/internal/config"
)

type eventsFlags struct {
	keyword       []string
	keywordOr     []string
	prefecture    []string
	ym            []string
	ymd           []string
	nickname      []string
	ownerNickname []string
	subdomain     []string
	eventID       []int
	groupID       []int
	start         int
	count         int
	order         string
}

func newEventsCommand(a *app) *cobra.Command {
	var f eventsFlags

	cmd := &cobra.Command{
		Use:   "events [keyword...]",
		Short: "Search events",
		Long: `Search events. Positional arguments are keywords that must all match.
Without any filter the API's default listing is returned.`,
		Example: `  connpass events Go
  connpass events --keyword-or Go --keyword-or Rust --prefecture tokyo --order started_at
  connpass events --ym 202410 --count 100 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query(cmd.Flags(), args)
			if err != nil {
				return err
			}

			resp, err := a.client.GetEvents(cmd.Context(), q)
			if err != nil {
				return err
			}

			if err := render(a.stdout, a.cfg.Output, resp, eventsTable(resp.Events)); err != nil {
				return err
			}
			if a.cfg.Output == config.OutputTable {
				summary(a.stdout, resp.ResultsReturned, resp.ResultsAvailable, "events")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.keyword, "keyword", nil, "keyword that must match, in addition to the arguments (repeatable)")
	flags.StringSliceVar(&f.keywordOr, "keyword-or", nil, "keyword of which at least one must match (repeatable)")
	flags.StringSliceVar(&f.prefecture, "prefecture", nil, "prefecture code such as tokyo or online (repeatable)")
	flags.StringSliceVar(&f.ym, "ym", nil, "month as yyyymm (repeatable)")
	flags.StringSliceVar(&f.ymd, "ymd", nil, "day as yyyymmdd (repeatable)")
	flags.StringSliceVar(&f.nickname, "nickname", nil, "participant nickname (repeatable)")
	flags.StringSliceVar(&f.ownerNickname, "owner-nickname", nil, "organizer nickname (repeatable)")
	flags.StringSliceVar(&f.subdomain, "subdomain", nil, "group subdomain (repeatable)")
	flags.IntSliceVar(&f.eventID, "event-id", nil, "event ID (repeatable)")
	flags.IntSliceVar(&f.groupID, "group-id", nil, "group ID (repeatable)")
	flags.IntVar(&f.start, "start", 1, "1-based index of the first result")
	flags.IntVar(&f.count, "count", 10, fmt.Sprintf("results per page, at most %d", connpass.MaxCount))
	flags.StringVar(&f.order, "order", "", "sort order: updated_at, started_at or created_at")

	return cmd
}

// query builds the search from the flags that were set and the keywords
// in args.
func (f *eventsFlags) query(flags *pflag.FlagSet, args []string) (*connpass.EventsQuery, error) {
	q := &connpass.EventsQuery{
		EventID:       f.eventID,
		KeywordOr:     f.keywordOr,
		YM:            f.ym,
		YMD:           f.ymd,
		Nickname:      f.nickname,
		OwnerNickname: f.ownerNickname,
		GroupID:       f.groupID,
		Subdomain:     f.subdomain,
	}

	for _, arg := range slices.Concat(f.keyword, args) {
		if kw := strings.TrimSpace(arg); kw != "" {
			q.Keyword = append(q.Keyword, kw)
		}
	}

	for _, s := range f.prefecture {
		p, err := connpass.ParsePrefecture(s)
		if err != nil {
			return nil, err
		}
		q.Prefecture = append(q.Prefecture, p)
	}

	if f.order != "" {
		o, err := connpass.ParseEventOrder(f.order)
		if err != nil {
			return nil, err
		}
		q.Order = connpass.Order(o)
	}

	start, count, err := paging(flags, f.start, f.count)
	if err != nil {
		return nil, err
	}
	q.Start, q.Count = start, count

	return q, nil
}

// paging returns start and count for the flags that were set explicitly.
func paging(flags *pflag.FlagSet, start, count int) (*int, *int, error) {
	var s, c *int

	if flags.Changed("start") {
		if start < 1 {
			return nil, nil, fmt.Errorf("--start must be at least 1, got %d", start)
		}
		s = connpass.Int(start)
	}
	if flags.Changed("count") {
		if count < 1 || count > connpass.MaxCount {
			return nil, nil, fmt.Errorf("--count must be between 1 and %d, got %d", connpass.MaxCount, count)
		}
		c = connpass.Int(count)
	}

	return s, c, nil
}
