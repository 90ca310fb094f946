package main

import (
	"context"
	"fmt"

	"mindhaven/internal/adapter/repository"
	"mindhaven/internal/infrastructure/firebase"
	"mindhaven/internal/infrastructure/gemini"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/config"
	"mindhaven/pkg/logger"
)

type cliOperations struct {
	*usecase.AdminUseCase
	*usecase.PositivityUseCase
}

// connect wires the admin and positivity use cases against the configured
// project. Notifications still go out, so a therapist learns of a decision
// made from the command line.
func connect(ctx context.Context) (operations, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	generator, err := gemini.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		clients.Close()
		return nil, nil, fmt.Errorf("initialize gemini: %w", err)
	}
	assistant := gemini.NewAssistant(generator)

	userRepo := repository.NewFirestoreUserRepository(clients.Firestore)
	chatRepo := repository.NewFirestoreChatRepository(clients.Firestore)
	aiChatRepo := repository.NewFirestoreAiChatRepository(clients.Firestore)
	notifications := usecase.NewNotificationUseCase(repository.NewFirestoreNotificationRepository(clients.Firestore))

	ops := cliOperations{
		AdminUseCase: usecase.NewAdminUseCase(
			userRepo,
			repository.NewFirestoreBookingRepository(clients.Firestore),
			chatRepo,
			aiChatRepo,
			repository.NewFirestoreQuoteRepository(clients.Firestore),
			repository.NewFirestoreDeletionRepository(clients.Firestore),
			firebase.NewFirebaseAuthClient(clients.Auth, cfg.FirebaseAPIKey),
			notifications,
			cfg.MaxCascadeWrites,
		),
		PositivityUseCase: usecase.NewPositivityUseCase(userRepo, aiChatRepo, chatRepo, assistant, assistant, nil),
	}

	return ops, func() {
		generator.Close()
		clients.Close()
		logger.Sync()
	}, nil
}
