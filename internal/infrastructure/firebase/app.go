package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"mindhaven/pkg/config"
	"mindhaven/pkg/logger"
)

// Clients holds the handles every entry point needs. They are built once per
// process and passed to constructors explicitly.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Option    option.ClientOption
}

// CredentialsOption prefers inline service-account JSON and falls back to a
// file path. With neither set, application default credentials are used.
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.FirebaseCredentialsJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)), nil
	}

	if cfg.FirebaseCredentialsPath != "" {
		if _, err := os.Stat(cfg.FirebaseCredentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account file does not exist: %s", cfg.FirebaseCredentialsPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseCredentialsPath)
		return option.WithCredentialsFile(cfg.FirebaseCredentialsPath), nil
	}

	logger.Warn("No Firebase service account configured, using application default credentials")
	return nil, nil
}

func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	opt, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth: %w", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Clients{
		Auth:      authClient,
		Firestore: firestoreClient,
		Option:    opt,
	}, nil
}

func (c *Clients) Close() error {
	return c.Firestore.Close()
}
