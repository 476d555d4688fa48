package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/ocontest/ocontest-cli/internal/client"
	"github.com/ocontest/ocontest-cli/internal/session"
)

type LoginCmd struct {
	Email    string `arg:"" help:"Account email"`
	Password string `help:"Account password" env:"OCONTEST_PASSWORD" required:""`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := globals.newSession()
	if err != nil {
		return err
	}

	user, err := manager.Login(ctx, l.Email, l.Password)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.RequireVerification {
			// Not a credentials problem: the account exists but the
			// email hasn't been confirmed yet.
			fmt.Println("Your email address has not been verified yet.")
			fmt.Println("Check your inbox for the verification link, or request a new one from the website.")
			return nil
		}
		if client.IsNetworkError(err) {
			return fmt.Errorf("could not reach the server, try again later: %w", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := globals.newSession()
	if err != nil {
		return err
	}

	manager.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}

type RegisterCmd struct {
	Email           string `arg:"" help:"Account email"`
	Password        string `help:"Account password" env:"OCONTEST_PASSWORD" required:""`
	ConfirmPassword string `help:"Password confirmation" env:"OCONTEST_PASSWORD_CONFIRM" required:""`
	Role            string `help:"Account type" enum:"creator,brand" default:"creator"`

	CompanyName string `help:"Company name (brand accounts)"`
	Industry    string `help:"Industry (brand accounts)"`
	PhoneNumber string `help:"Phone number (brand accounts)"`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := globals.newSession()
	if err != nil {
		return err
	}

	req := client.RegisterRequest{
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		Role:            r.Role,
	}
	if r.Role == client.RoleBrand {
		req.Brand = &client.BrandDetails{
			CompanyName: r.CompanyName,
			Industry:    r.Industry,
			PhoneNumber: r.PhoneNumber,
		}
	}

	resp, err := manager.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	if resp.RequireVerification {
		fmt.Println("Check your email for a verification link before logging in.")
	}
	return nil
}

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := globals.newSession()
	if err != nil {
		return err
	}

	user := manager.CurrentUser()
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("ID:    %d\n", user.ID)
	fmt.Printf("Name:  %s\n", user.Name)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
	if user.Country != "" {
		fmt.Printf("Country: %s\n", user.Country)
	}
	if user.PortfolioURL != "" {
		fmt.Printf("Portfolio: %s\n", user.PortfolioURL)
	}
	return nil
}

type TokenCmd struct{}

func (t *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := globals.newSession()
	if err != nil {
		return err
	}

	token := manager.AccessToken()
	if token == "" {
		fmt.Println("No access token stored.")
		return nil
	}

	claims, err := session.DecodeClaims(token)
	if err != nil {
		return fmt.Errorf("stored token is unreadable: %w", err)
	}

	fmt.Printf("Subject: %d\n", claims.UserID)
	fmt.Printf("Email:   %s\n", claims.Email)
	fmt.Printf("Role:    %s\n", claims.Role)
	fmt.Printf("Expires: %s", claims.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	if session.IsExpired(token) {
		fmt.Print(" (expired)")
	}
	fmt.Println()
	return nil
}
