package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/vglug/intake-backend/internal/response"
)

// Deps carries everything the handler constructors need. The service
// fields use the consumer-side interfaces declared next to each
// handler.
type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	WidgetSvc       widgetService
	ApplicationSvc  applicationService
	OTPSvc          otpService
	AgentSvc        agentService
}
