package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/logger"
)

// operations is what the CLI drives. Commands run without a signed-in
// operator, so the requester of a deletion is empty.
type operations interface {
	SetTherapistStatus(ctx context.Context, therapistID string, status entity.TherapistStatus) (*entity.User, error)
	DeleteUserCascade(ctx context.Context, requesterID, userID string) (int, error)
	Compute(ctx context.Context, userID string) (*usecase.PositivityReport, error)
}

// connector builds operations on first use, so --help never dials out.
type connector func(ctx context.Context) (operations, func(), error)

func main() {
	if err := newRootCommand(connect).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mindctl",
		Short:         "Operator tool for MindHaven administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newTherapistCommand(connect))
	cmd.AddCommand(newUserCommand(connect))
	cmd.AddCommand(newPositivityCommand(connect))
	return cmd
}

func withOperations(cmd *cobra.Command, connect connector, fn func(ctx context.Context, ops operations) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ops, closeFn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, ops)
}

func newTherapistCommand(connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "therapist",
		Short: "Review therapist registrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	for _, status := range []entity.TherapistStatus{entity.TherapistApproved, entity.TherapistDenied} {
		cmd.AddCommand(newTherapistStatusCommand(connect, status))
	}
	return cmd
}

func newTherapistStatusCommand(connect connector, status entity.TherapistStatus) *cobra.Command {
	verb := map[entity.TherapistStatus]string{
		entity.TherapistApproved: "approve",
		entity.TherapistDenied:   "deny",
	}[status]

	return &cobra.Command{
		Use:   verb + " <uid>",
		Short: fmt.Sprintf("Mark a therapist registration as %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOperations(cmd, connect, func(ctx context.Context, ops operations) error {
				user, err := ops.SetTherapistStatus(ctx, args[0], status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Name, user.ID, user.TherapistStatus)
				return nil
			})
		},
	}
}

func newUserCommand(connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newUserDeleteCommand(connect))
	return cmd
}

func newUserDeleteCommand(connect connector) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "delete <uid>",
		Short: "Delete a user and all of their data in one atomic commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirm != usecase.DeleteConfirmation {
				return fmt.Errorf("refusing to delete: pass --confirm %s", usecase.DeleteConfirmation)
			}
			return withOperations(cmd, connect, func(ctx context.Context, ops operations) error {
				deleted, err := ops.DeleteUserCascade(ctx, "", args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d documents\n", deleted)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", "Type DELETE to confirm")
	return cmd
}

func newPositivityCommand(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "positivity <uid>",
		Short: "Compute a user's positivity ratio and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOperations(cmd, connect, func(ctx context.Context, ops operations) error {
				report, err := ops.Compute(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("mindctl: failed to encode output: %v", err)
		return err
	}
	return nil
}
