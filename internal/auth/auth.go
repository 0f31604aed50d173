package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Verifier decides whether a credential grants access to the admin API.
type Verifier interface {
	Verify(ctx context.Context, credential string) bool
}

// SharedCode accepts exactly one configured access code.
type SharedCode struct {
	code string
}

func NewSharedCode(code string) SharedCode {
	return SharedCode{code: code}
}

func (s SharedCode) Verify(_ context.Context, credential string) bool {
	if s.code == "" || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.code), []byte(credential)) == 1
}

// TokenVerifier is the part of the Firebase auth client used here.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier accepts valid Firebase ID tokens.
type FirebaseVerifier struct {
	client TokenVerifier
}

func NewFirebaseVerifier(client TokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// InitializeFirebase initializes the Firebase Admin SDK from a service account file.
func InitializeFirebase(ctx context.Context, credentialsPath string) (*fbauth.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return authClient, nil
}

func (f *FirebaseVerifier) Verify(ctx context.Context, credential string) bool {
	if credential == "" {
		return false
	}
	_, err := f.client.VerifyIDToken(ctx, credential)
	return err == nil
}
