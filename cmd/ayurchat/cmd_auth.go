package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ayurwell-backend/internal/auth"
)

var (
	emailFlag    string
	nameFlag     string
	tokenFlag    string
	providerFlag string
	redirectFlag string

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or store a raw bearer token",
		RunE:  runLogin,
	}
	signupCmd = &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE:  runSignup,
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Send a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := current.identity.ResetPassword(cmd.Context(), emailFlag); err != nil {
				return describe(err)
			}
			fmt.Println("Check your email for the password reset link.")
			return nil
		},
	}
	magicLinkCmd = &cobra.Command{
		Use:   "magic-link",
		Short: "Email a one-time sign-in link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := current.identity.SignInWithMagicLink(cmd.Context(), emailFlag); err != nil {
				return describe(err)
			}
			fmt.Println("Check your email for the magic link.")
			return nil
		},
	}
	oauthCmd = &cobra.Command{
		Use:   "oauth",
		Short: "Print the URL for signing in with an OAuth provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := current.identity.SignInWithOAuth(providerFlag, auth.OAuthOptions{RedirectTo: redirectFlag})
			if err != nil {
				return err
			}
			fmt.Println("Open this link to continue:")
			fmt.Println(link)
			fmt.Println("Afterwards run `ayurchat login --token <access_token>` with the token from the redirect.")
			return nil
		},
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE:  runLogout,
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := current.sessions.Load()
			if err != nil {
				return err
			}
			name := session.User.Email
			if session.User.Name != "" {
				name = fmt.Sprintf("%s <%s>", session.User.Name, session.User.Email)
			}
			if name == "" {
				name = "(token only)"
			}
			fmt.Println(name)
			if !session.ExpiresAt.IsZero() {
				fmt.Printf("session expires %s\n", session.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, signupCmd, resetCmd, magicLinkCmd} {
		cmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	}
	loginCmd.Flags().StringVar(&tokenFlag, "token", "", "store this access token instead of signing in")
	signupCmd.Flags().StringVar(&nameFlag, "name", "", "full name")
	oauthCmd.Flags().StringVar(&providerFlag, "provider", "google", "OAuth provider")
	oauthCmd.Flags().StringVar(&redirectFlag, "redirect", "", "URL to return to after signing in")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if tokenFlag != "" {
		if err := current.sessions.Save(&auth.Session{AccessToken: tokenFlag, TokenType: "bearer"}); err != nil {
			return err
		}
		fmt.Println("Token saved.")
		return nil
	}

	password, err := readLine("Password: ")
	if err != nil {
		return err
	}
	session, err := current.identity.SignIn(cmd.Context(), emailFlag, password)
	if err != nil {
		return describe(err)
	}
	if err := current.sessions.Save(session); err != nil {
		return err
	}
	fmt.Println("Welcome back! 🙏")
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	password, err := readLine("Password (min 8 characters): ")
	if err != nil {
		return err
	}
	session, err := current.identity.SignUp(cmd.Context(), emailFlag, password, nameFlag)
	if err != nil {
		return describe(err)
	}
	if session.AccessToken == "" {
		fmt.Println("Account created! Please check your email to confirm your account.")
		return nil
	}
	if err := current.sessions.Save(session); err != nil {
		return err
	}
	fmt.Println("Account created! You are signed in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	session, err := current.sessions.Load()
	if err != nil && !errors.Is(err, auth.ErrNoSession) {
		return err
	}
	if err := current.identity.SignOut(cmd.Context(), session); err != nil {
		// the local session is dropped regardless
		fmt.Fprintf(os.Stderr, "sign out: %v\n", err)
	}
	if err := current.sessions.Clear(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

var stdin = bufio.NewReader(os.Stdin)

func readLine(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// describe turns form and API errors into something readable.
func describe(err error) error {
	var formErr *auth.FormError
	if errors.As(err, &formErr) {
		fields := make([]string, 0, len(formErr.Fields))
		for field := range formErr.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		msgs := make([]string, 0, len(fields))
		for _, field := range fields {
			msgs = append(msgs, formErr.Fields[field])
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	var apiErr *auth.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return err
}
