package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"condoctl/cmd/condoctl/ui"
	"condoctl/internal/api"
	"condoctl/internal/authn"
	"condoctl/internal/record"
	"condoctl/internal/staging"
	"condoctl/internal/view"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Work with managers and associations",
}

var dataEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the interactive staged editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, s, err := dataClient(cmd)
		if err != nil {
			return err
		}
		store := staging.NewStore(client)
		engine := staging.NewEngine(store, client, logger)
		program := tea.NewProgram(ui.NewEditor(store, engine, s), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("editor exited: %w", err)
		}
		return nil
	},
}

var managersCmd = &cobra.Command{
	Use:   "managers",
	Short: "List property managers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := dataClient(cmd)
		if err != nil {
			return err
		}
		store := staging.NewStore(client)
		if err := store.Reload(cmd.Context()); err != nil {
			return err
		}
		q := queryFromFlags(cmd, record.FieldName)
		rows := view.Managers(store.Managers(), q)
		if len(rows) == 0 {
			fmt.Println("No managers.")
			return nil
		}
		for _, m := range rows {
			fmt.Printf("%-36s  %-30s  %-30s  %-20s  %s\n", m.ID, m.Name, m.Email, m.Titles, m.Initials)
		}
		return nil
	},
}

var associationsCmd = &cobra.Command{
	Use:   "associations",
	Short: "List associations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := dataClient(cmd)
		if err != nil {
			return err
		}
		store := staging.NewStore(client)
		if err := store.Reload(cmd.Context()); err != nil {
			return err
		}
		q := queryFromFlags(cmd, record.FieldLegalName)
		q.ManagerFilter, _ = cmd.Flags().GetString("manager")
		byID := store.ManagersByID()
		rows := view.Associations(store.Associations(), byID, q)
		if len(rows) == 0 {
			fmt.Println("No associations.")
			return nil
		}
		for _, a := range rows {
			fmt.Printf("%-36s  %-40s  %-25s  %-20s  %s\n",
				a.ID, a.LegalName, a.FilterName, a.Location, a.DisplayManagerName(byID))
		}
		return nil
	},
}

// dataClient builds a client and verifies the session can touch
// managers and associations.
func dataClient(cmd *cobra.Command) (*api.Client, authn.Session, error) {
	client, err := newClient()
	if err != nil {
		return nil, authn.Session{}, err
	}
	s, err := requireSession(cmd.Context(), client)
	if err != nil {
		return nil, authn.Session{}, err
	}
	if !s.CanManageData() {
		return nil, authn.Session{}, fmt.Errorf("role %s cannot manage data", s.Role)
	}
	return client, s, nil
}

func queryFromFlags(cmd *cobra.Command, sortKey record.Field) view.Query {
	search, _ := cmd.Flags().GetString("search")
	q := view.Query{Search: search}
	if sorted, _ := cmd.Flags().GetBool("sort"); sorted {
		q.Sort = view.Sort{Key: sortKey, Dir: view.SortAsc}
	}
	return q
}

func init() {
	for _, c := range []*cobra.Command{managersCmd, associationsCmd} {
		c.Flags().String("search", "", "case-insensitive substring filter")
		c.Flags().Bool("sort", false, "sort ascending by name")
	}
	associationsCmd.Flags().String("manager", "", "show only associations assigned to this manager ID")
	dataCmd.AddCommand(dataEditCmd, managersCmd, associationsCmd)
	rootCmd.AddCommand(dataCmd)
}
