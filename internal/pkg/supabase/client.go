package supabase

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/supabase-community/gotrue-go"
)

// ErrInvalidCredentials marks a rejected email/password pair, as opposed to a
// failure reaching the identity provider.
var ErrInvalidCredentials = errors.New("invalid credentials")

var authClient gotrue.Client

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	parts := strings.Split(url, ".")
	return parts[0]
}

// InitClient initializes the Supabase authentication client
func InitClient(supabaseURL, supabaseKey string) error {
	projectRef := extractProjectRef(supabaseURL)

	slog.Info("Initializing Supabase client", "project_ref", projectRef)

	client := gotrue.New(projectRef, supabaseKey)
	authClient = client

	if _, err := client.GetSettings(); err != nil {
		return fmt.Errorf("failed to connect to Supabase: %w", err)
	}

	slog.Info("Supabase connection successful")
	return nil
}

// GetClient returns the initialized Supabase authentication client
func GetClient() gotrue.Client {
	if authClient == nil {
		// Initialize with environment variables as fallback
		url := os.Getenv("SUPABASE_URL")
		key := os.Getenv("SUPABASE_ANON_KEY")

		if url == "" || key == "" {
			panic("SUPABASE_URL and SUPABASE_ANON_KEY environment variables must be set")
		}

		authClient = gotrue.New(extractProjectRef(url), key)
	}
	return authClient
}

// SignIn validates the credentials against Supabase and returns the stable
// user id the rest of the system keys everything on. A function variable so
// tests can stub the identity collaborator.
var SignIn = signInImpl

func signInImpl(email, password string) (string, error) {
	client := GetClient()

	res, err := client.SignInWithEmailPassword(email, password)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if res == nil || res.AccessToken == "" {
		return "", ErrInvalidCredentials
	}
	return res.User.ID.String(), nil
}
