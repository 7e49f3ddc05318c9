package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kroma-labs/connpass-go/connpass"
)

// Profile is everything the API knows about one user.
type Profile struct {
	User            connpass.User          `json:"user"             yaml:"user"`
	Groups          []connpass.GroupDetail `json:"groups"           yaml:"groups"`
	AttendedEvents  []connpass.Event       `json:"attended_events"  yaml:"attended_events"`
	PresenterEvents []connpass.Event       `json:"presenter_events" yaml:"presenter_events"`
}

func newProfileCommand(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:     "profile <nickname>",
		Short:   "Show a user with their groups and events",
		Example: "  connpass profile haru860 --count 20",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nickname := args[0]
			if count < 1 || count > connpass.MaxCount {
				return fmt.Errorf("--count must be between 1 and %d, got %d", connpass.MaxCount, count)
			}
			page := &connpass.PageQuery{Count: connpass.Int(count)}

			var (
				users     *connpass.UsersResponse
				groups    *connpass.GroupsResponse
				attended  *connpass.EventsResponse
				presenter *connpass.EventsResponse
			)

			// The four calls are independent; the first failure cancels the rest.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				users, err = a.client.GetUsers(ctx, &connpass.UsersQuery{Nickname: []string{nickname}})
				return err
			})
			g.Go(func() (err error) {
				groups, err = a.client.GetUserGroups(ctx, nickname, page)
				return err
			})
			g.Go(func() (err error) {
				attended, err = a.client.GetUserAttendedEvents(ctx, nickname, page)
				return err
			})
			g.Go(func() (err error) {
				presenter, err = a.client.GetUserPresenterEvents(ctx, nickname, page)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if len(users.Users) == 0 {
				return fmt.Errorf("user %q not found", nickname)
			}
			p := Profile{
				User:            users.Users[0],
				Groups:          groups.Groups,
				AttendedEvents:  attended.Events,
				PresenterEvents: presenter.Events,
			}

			return render(a.stdout, a.cfg.Output, p, profileTable(p))
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "groups and events to show per section")

	return cmd
}

func profileTable(p Profile) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		u := p.User
		fmt.Fprintf(tw, "Nickname:\t%s\n", u.Nickname)
		fmt.Fprintf(tw, "Name:\t%s\n", u.DisplayName)
		fmt.Fprintf(tw, "URL:\t%s\n", u.URL)
		fmt.Fprintf(tw, "Joined:\t%s\n", formatTime(u.CreatedAt))
		fmt.Fprintf(tw, "Attended:\t%s\n", optInt(u.AttendedEventCount))
		fmt.Fprintf(tw, "Organized:\t%s\n", optInt(u.OrganizeEventCount))
		fmt.Fprintf(tw, "Presented:\t%s\n", optInt(u.PresenterEventCount))

		fmt.Fprintln(tw, "\nGROUPS")
		groupsTable(p.Groups)(tw)

		fmt.Fprintln(tw, "\nATTENDED EVENTS")
		eventsTable(p.AttendedEvents)(tw)

		fmt.Fprintln(tw, "\nPRESENTER EVENTS")
		eventsTable(p.PresenterEvents)(tw)
	}
}
