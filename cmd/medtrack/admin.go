package main

import (
	"fmt"
	"os"
	"time"

	"medication-tracking-service/internal/database"
	"medication-tracking-service/internal/domain/repositories"
	"medication-tracking-service/internal/domain/workflow"
	"medication-tracking-service/internal/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Msg("schema_migrated")
			return nil
		},
	}
}

func dayCmd() *cobra.Command {
	day := &cobra.Command{Use: "day", Short: "Manage the daily process batch"}
	day.AddCommand(&cobra.Command{
		Use:   "open",
		Short: "Open today's batch in the hospital time zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			days := services.NewDailyProcessService(repositories.NewDailyProcessRepository(db), cfg.Timezone, log)
			batch, created, err := days.OpenToday(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			state := "already open"
			if created {
				state = "opened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", batch.Day, state, batch.ID)
			return nil
		},
	})
	return day
}

func qrCmd() *cobra.Command {
	var (
		checkpoint string
		label      string
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a checkpoint QR code and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := workflow.ParseCheckpointType(checkpoint)
			if err != nil {
				return err
			}
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			code, err := services.NewQRRegistryService(repositories.NewQRCodeRepository(db), log).Issue(cmd.Context(), kind, label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", code.ID, code.Type, code.Label)
			return nil
		},
	}
	issue.Flags().StringVar(&checkpoint, "type", "", "checkpoint type, e.g. PHARMACY_DISPATCH")
	issue.Flags().StringVar(&label, "label", "", "printed label")
	_ = issue.MarkFlagRequired("type")

	qr := &cobra.Command{Use: "qr", Short: "Manage checkpoint QR codes"}
	qr.AddCommand(issue)
	return qr
}

func staffCmd() *cobra.Command {
	var (
		displayName string
		role        string
	)
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Register a staff member; the password is read from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			identity := services.NewIdentityService(repositories.NewStaffRepository(db), cfg.SessionTTL, log)
			member, err := identity.Register(cmd.Context(), args[0], displayName, password, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", member.ID, member.Username, member.Role)
			return nil
		},
	}
	add.Flags().StringVar(&displayName, "name", "", "display name")
	add.Flags().StringVar(&role, "role", "nurse", "nurse | pharmacist | admin")

	staff := &cobra.Command{Use: "staff", Short: "Manage staff accounts"}
	staff.AddCommand(add)
	return staff
}

// readPassword takes MEDTRACK_STAFF_PASSWORD when set, for scripted setups.
func readPassword(cmd *cobra.Command) (string, error) {
	if p := os.Getenv("MEDTRACK_STAFF_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
