package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// authResponse mirrors the server's signup/login payload.
type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

// SignupCmd creates the signup command
func SignupCmd() *cobra.Command {
	var username, email, password, apiURL string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long:  "Register a new account and store the session token in the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(username, email, password, apiURL)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if not given)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

func runSignup(username, email, password, apiURL string) error {
	reader := bufio.NewReader(os.Stdin)

	var err error
	if username == "" {
		if username, err = prompt(reader, "Username: "); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(reader, "Password: "); err != nil {
			return err
		}
	}

	api, err := NewAPIClientWithConfig("", apiURL)
	if err != nil {
		return err
	}

	resp, err := api.Post("/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	return storeSession(resp.Data, apiURL, "Account created")
}

// LoginCmd creates the login command
func LoginCmd() *cobra.Command {
	var email, password, apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		Long:  "Authenticate and store the session token in the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, apiURL)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if not given)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

func runLogin(email, password, apiURL string) error {
	reader := bufio.NewReader(os.Stdin)

	var err error
	if email == "" {
		if email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(reader, "Password: "); err != nil {
			return err
		}
	}

	api, err := NewAPIClientWithConfig("", apiURL)
	if err != nil {
		return err
	}

	resp, err := api.Post("/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	return storeSession(resp.Data, apiURL, "Logged in")
}

// LogoutCmd creates the logout command
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear the stored session",
		Long:  "Remove the stored session token from the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

// StatusCmd creates the status command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Display the current session source and API URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runStatus(outputJSON bool) error {
	source, token, apiURL := GetCredentialSource("", "")

	if outputJSON {
		data := map[string]interface{}{
			"authenticated": source != SourceNone,
			"source":        string(source),
			"api_url":       apiURL,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if source == SourceNone {
		fmt.Println("Not logged in (run 'contractiq login')")
		return nil
	}

	fmt.Printf("Logged in via %s\n", source)
	fmt.Printf("API URL: %s\n", apiURL)
	if !LooksLikeToken(token) {
		fmt.Println("Warning: stored token does not look like a session token")
	}
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func storeSession(data json.RawMessage, apiURL, verb string) error {
	var auth authResponse
	if err := json.Unmarshal(data, &auth); err != nil {
		return fmt.Errorf("failed to parse auth response: %w", err)
	}
	if auth.Token == "" {
		return fmt.Errorf("server did not return a token")
	}

	if err := SaveGlobalConfig(&GlobalConfig{Token: auth.Token, APIURL: apiURL}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("%s: %s <%s>\n", verb, auth.User.Username, auth.User.Email)
	return nil
}
