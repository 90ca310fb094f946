package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"mindhaven/internal/adapter/api"
	"mindhaven/internal/adapter/api/handler"
	apimiddleware "mindhaven/internal/adapter/api/middleware"
	"mindhaven/internal/adapter/api/router"
	"mindhaven/internal/adapter/repository"
	"mindhaven/internal/infrastructure/firebase"
	"mindhaven/internal/infrastructure/gemini"
	"mindhaven/internal/infrastructure/ratelimit"
	"mindhaven/internal/infrastructure/storage"
	"mindhaven/internal/infrastructure/websocket"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/config"
	"mindhaven/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer clients.Close()

	var storageOpts []option.ClientOption
	if clients.Option != nil {
		storageOpts = append(storageOpts, clients.Option)
	}
	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, storageOpts...)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	generator, err := gemini.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}
	defer generator.Close()
	assistant := gemini.NewAssistant(generator)

	limiter := ratelimit.NewRateLimiter(ratelimit.DefaultPolicies(cfg.MessagesPerMinute, cfg.AIRequestsPerMinute))
	limiter.StartCleanupRoutine(ctx.Done())

	userRepo := repository.NewFirestoreUserRepository(clients.Firestore)
	bookingRepo := repository.NewFirestoreBookingRepository(clients.Firestore)
	chatRepo := repository.NewFirestoreChatRepository(clients.Firestore)
	aiChatRepo := repository.NewFirestoreAiChatRepository(clients.Firestore)
	quoteRepo := repository.NewFirestoreQuoteRepository(clients.Firestore)
	notificationRepo := repository.NewFirestoreNotificationRepository(clients.Firestore)
	deletionRepo := repository.NewFirestoreDeletionRepository(clients.Firestore)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(clients.Auth, cfg.FirebaseAPIKey)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo)
	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, notificationUseCase)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient, storageClient)
	bookingUseCase := usecase.NewBookingUseCase(bookingRepo, userRepo, notificationUseCase)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, notificationUseCase, limiter)
	aiChatUseCase := usecase.NewAiChatUseCase(aiChatRepo, userRepo, assistant, limiter)
	positivityUseCase := usecase.NewPositivityUseCase(userRepo, aiChatRepo, chatRepo, assistant, assistant, limiter)
	quoteUseCase := usecase.NewQuoteUseCase(quoteRepo, userRepo)
	adminUseCase := usecase.NewAdminUseCase(userRepo, bookingRepo, chatRepo, aiChatRepo, quoteRepo,
		deletionRepo, firebaseAuthClient, notificationUseCase, cfg.MaxCascadeWrites)

	wsManager := websocket.NewManager(chatUseCase, notificationUseCase)
	notificationUseCase.UseLivePusher(wsManager)
	wsManager.Start(ctx)

	handlers := &handler.Handlers{
		Auth:         handler.NewAuthHandler(authUseCase),
		User:         handler.NewUserHandler(userUseCase),
		Booking:      handler.NewBookingHandler(bookingUseCase),
		Chat:         handler.NewChatHandler(chatUseCase),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		AiChat:       handler.NewAiChatHandler(aiChatUseCase),
		Wellbeing:    handler.NewWellbeingHandler(positivityUseCase),
		Quote:        handler.NewQuoteHandler(quoteUseCase),
		Admin:        handler.NewAdminHandler(adminUseCase),
		Health:       handler.NewHealthHandler(authUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, cfg.CORSAllowedOrigins),
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	router.Setup(e, handlers, authMiddleware, limiter)

	go func() {
		logger.Info("Starting server on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
