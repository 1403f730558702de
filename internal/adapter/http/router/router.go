package router

import "net/http"

type WalletRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type WebhookRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

func New(
	walletController WalletRouteRegistrar,
	webhookController WebhookRouteRegistrar,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	if walletController != nil {
		walletController.RegisterRoutes(mux, authMiddleware)
	}
	if webhookController != nil {
		webhookController.RegisterRoutes(mux)
	}

	return mux
}
