package app

import (
	"context"

	"ussd-bridge/internal/chatbot"
	"ussd-bridge/internal/config"
	"ussd-bridge/internal/correlation"
	"ussd-bridge/internal/handler"
	"ussd-bridge/internal/middleware"
	"ussd-bridge/internal/session"
	"ussd-bridge/internal/ussd"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewStore(infra.Backend, cfg.SessionTTL)
	mailbox := session.NewMailbox(infra.Backend, cfg.SessionTTL)
	poller := correlation.NewPoller(mailbox, cfg.MaxWait, cfg.PollInterval)

	chatbotClient := chatbot.New(chatbot.Options{
		BaseURL:     cfg.ChatbotBaseURL,
		APIKey:      cfg.ChatbotAPIKey,
		Destination: cfg.ChatbotDestination,
		Timeout:     cfg.ChatbotTimeout,
	}, sessionStore)

	adapter := ussd.NewAdapter(sessionStore, chatbotClient, poller, cfg.EndMarker)

	bridgeHandler := handler.NewHandler(
		adapter,
		sessionStore,
		mailbox,
		chatbotClient,
		infra.Backend,
		cfg,
	)

	adminAuth := middleware.NewAdminAuth(cfg.AdminUser, cfg.AdminPasswordHash)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())

	bridgeHandler.RegisterRoutes(router, adminAuth)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Backend.Close()
	}, nil
}
