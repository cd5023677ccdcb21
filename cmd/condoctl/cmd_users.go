package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"condoctl/internal/users"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts (admin only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := userService(cmd)
		if err != nil {
			return err
		}
		list, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No users.")
			return nil
		}
		for _, u := range list {
			fmt.Printf("%-36s  %-20s  %s\n", u.ID, u.Username, u.Role)
		}
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		svc, err := userService(cmd)
		if err != nil {
			return err
		}
		password, err := readPassword("Password for new user: ")
		if err != nil {
			return err
		}
		if err := svc.Create(cmd.Context(), args[0], password, role); err != nil {
			return err
		}
		fmt.Printf("Created user %s with role %s\n", args[0], role)
		return nil
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <username> <role>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := adminClient(cmd)
		if err != nil {
			return err
		}
		draft, err := users.NewRoleDraft(cmd.Context(), api)
		if err != nil {
			return err
		}
		target, err := findUser(draft.Users(), args[0])
		if err != nil {
			return err
		}
		if err := draft.Stage(target.ID, args[1]); err != nil {
			return err
		}
		if draft.Pending() == 0 {
			fmt.Printf("%s already has role %s\n", args[0], args[1])
			return nil
		}
		if err := draft.Commit(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Set role of %s to %s\n", args[0], args[1])
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := userService(cmd)
		if err != nil {
			return err
		}
		list, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		target, err := findUser(list, args[0])
		if err != nil {
			return err
		}
		if err := svc.Delete(cmd.Context(), target); err != nil {
			return err
		}
		fmt.Printf("Deleted user %s\n", args[0])
		return nil
	},
}

// adminClient builds a client and verifies the session can manage users.
func adminClient(cmd *cobra.Command) (users.API, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	s, err := requireSession(cmd.Context(), client)
	if err != nil {
		return nil, err
	}
	if !s.CanManageUsers() {
		return nil, fmt.Errorf("role %s cannot manage users", s.Role)
	}
	return client, nil
}

func userService(cmd *cobra.Command) (*users.Service, error) {
	api, err := adminClient(cmd)
	if err != nil {
		return nil, err
	}
	return users.NewService(api), nil
}

func findUser(list []users.User, username string) (users.User, error) {
	for _, u := range list {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, fmt.Errorf("no user named %q", username)
}

func init() {
	usersCreateCmd.Flags().String("role", "user", "role for the new account (user or admin)")
	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersSetRoleCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}
