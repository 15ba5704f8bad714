package admin

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/contractiq/contractiq/internal/config"
	"github.com/contractiq/contractiq/internal/database"
	"github.com/contractiq/contractiq/internal/repository"
	"github.com/contractiq/contractiq/internal/service"
	"github.com/contractiq/contractiq/internal/token"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create and list user accounts",
	}

	cmd.AddCommand(UserCreateCmd())
	cmd.AddCommand(UserListCmd())

	return cmd
}

func UserCreateCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <username> <email>",
		Short: "Create a new user account",
		Long:  "Create a new user account and print an access token for it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runUserCreate(args[0], args[1], password, outputFormat)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if not given)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runUserCreate(username, email, password, outputFormat string) error {
	ctx := context.Background()

	if password == "" {
		fmt.Print("Enter password: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(input)
	}

	cfg, pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	tokenSvc := token.NewServiceWithTTL([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
	authSvc := service.NewAuthService(repository.NewUserRepository(pool), service.NewBcryptHasher(), tokenSvc)

	result, err := authSvc.Signup(ctx, service.SignupInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"token":    result.Token,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("User created: %s <%s> (%s)\n", result.User.Username, result.User.Email, result.User.ID)
		fmt.Printf("Token: %s\n", result.Token)
	}

	return nil
}

func UserListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all user accounts",
		Long:  "List all user accounts in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runUserList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runUserList(outputFormat string) error {
	ctx := context.Background()

	_, pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	users, err := repository.NewUserRepository(pool).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(users))
		for i, u := range users {
			data[i] = map[string]interface{}{
				"id":         u.ID,
				"username":   u.Username,
				"email":      u.Email,
				"created_at": u.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}
		fmt.Println("Users:")
		for _, u := range users {
			fmt.Printf("  %s: %s <%s> (created: %s)\n", u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return cfg, pool, nil
}
