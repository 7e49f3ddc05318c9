package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroma-labs/connpass-go/connpass"
	"github.com/kroma-labs/connpass-go/internal/config"
)

func newGroupsCommand(a *app) *cobra.Command {
	var (
		start, count int
	)

	cmd := &cobra.Command{
		Use:     "groups [subdomain...]",
		Short:   "List groups",
		Example: "  connpass groups gocon bpstudy",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := paging(cmd.Flags(), start, count)
			if err != nil {
				return err
			}

			resp, err := a.client.GetGroups(cmd.Context(), &connpass.GroupsQuery{
				Start:     s,
				Count:     c,
				Subdomain: args,
			})
			if err != nil {
				return err
			}

			if err := render(a.stdout, a.cfg.Output, resp, groupsTable(resp.Groups)); err != nil {
				return err
			}
			if a.cfg.Output == config.OutputTable {
				summary(a.stdout, resp.ResultsReturned, resp.ResultsAvailable, "groups")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 1, "1-based index of the first result")
	cmd.Flags().IntVar(&count, "count", 10, fmt.Sprintf("results per page, at most %d", connpass.MaxCount))

	return cmd
}

func newUsersCommand(a *app) *cobra.Command {
	var (
		start, count int
	)

	cmd := &cobra.Command{
		Use:     "users [nickname...]",
		Short:   "List users",
		Example: "  connpass users haru860",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := paging(cmd.Flags(), start, count)
			if err != nil {
				return err
			}

			resp, err := a.client.GetUsers(cmd.Context(), &connpass.UsersQuery{
				Start:    s,
				Count:    c,
				Nickname: args,
			})
			if err != nil {
				return err
			}

			if err := render(a.stdout, a.cfg.Output, resp, usersTable(resp.Users)); err != nil {
				return err
			}
			if a.cfg.Output == config.OutputTable {
				summary(a.stdout, resp.ResultsReturned, resp.ResultsAvailable, "users")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 1, "1-based index of the first result")
	cmd.Flags().IntVar(&count, "count", 10, fmt.Sprintf("results per page, at most %d", connpass.MaxCount))

	return cmd
}
