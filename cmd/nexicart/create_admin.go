package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Amit9DeV/NexiCart-sub001/internal/admin"
)

func (a *app) createAdminCmd() *cobra.Command {
	var in admin.CreateAdminInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first administrator account",
		Long: `Prompts for a name, email and password and inserts an admin user.
Reads MONGODB_URI and MONGODB_DATABASE from the environment or a .env file.
Fails if any account already uses the email.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCreateAdmin(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "admin display name (prompted when empty)")
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email (prompted when empty)")
	return cmd
}

func (a *app) runCreateAdmin(ctx context.Context, in admin.CreateAdminInput) error {
	p := newPrompter(a.stdin, a.stdout)

	var err error
	if in.Name == "" {
		if in.Name, err = p.line("Name [" + admin.DefaultAdminName + "]: "); err != nil {
			return err
		}
	}
	if in.Email == "" {
		if in.Email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	if in.Password, err = p.password("Password: "); err != nil {
		return err
	}

	// Reject bad input before dialing the database.
	if err := in.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	s, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer closeStore(s, a.stderr)

	user, err := admin.CreateAdmin(ctx, s.Users, in)
	switch {
	case errors.Is(err, admin.ErrAdminExists):
		return fmt.Errorf("%w: nothing to do", err)
	case errors.Is(err, admin.ErrUserExists):
		return fmt.Errorf("%w: use a different email or promote the account in the database", err)
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(a.stdout, "Admin user created: %s (%s)\n", user.Email, user.ID.Hex())
	return nil
}
