package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func newHashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func newCreateUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user that can log in and be assigned tickets",
		Args:  cobra.NoArgs,
		RunE:  runCreateUser,
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("login", "", "login")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password; users without one cannot log in")
	cmd.Flags().Bool("inactive", false, "create the user as inactive")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync() //nolint:errcheck

	pg, err := rt.openPostgres(cmd.Context())
	if err != nil {
		return err
	}
	defer pg.Close()

	users := service.NewUserService(rt.cfg.Auth, repository.NewUserRepository(pg.Pool))
	input, err := userInputFromFlags(cmd)
	if err != nil {
		return err
	}
	user, err := users.CreateUser(cmd.Context(), input)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.ID, user.Login)
	return nil
}

func userInputFromFlags(cmd *cobra.Command) (service.UserCreateInput, error) {
	flags := cmd.Flags()
	name, _ := flags.GetString("name")
	login, _ := flags.GetString("login")
	email, _ := flags.GetString("email")
	password, _ := flags.GetString("password")
	inactive, err := flags.GetBool("inactive")
	if err != nil {
		return service.UserCreateInput{}, err
	}
	return service.UserCreateInput{
		Name:     name,
		Email:    email,
		Login:    login,
		Password: password,
		Active:   !inactive,
	}, nil
}
