package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/vglug/intake-backend/internal/bootstrap"
	anthropic "github.com/vglug/intake-backend/internal/client/anthropic"
	"github.com/vglug/intake-backend/internal/client/mailer"
	openai "github.com/vglug/intake-backend/internal/client/openai"
	"github.com/vglug/intake-backend/internal/config"
	"github.com/vglug/intake-backend/internal/crypto"
	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/handlers"
	"github.com/vglug/intake-backend/internal/query"
	"github.com/vglug/intake-backend/internal/response"
	"github.com/vglug/intake-backend/internal/router"
	"github.com/vglug/intake-backend/internal/services"
	"github.com/vglug/intake-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// helpers
	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	// stores
	wstore := store.NewWidgetStore(bs.Firestore)
	astore := store.NewApplicationStore(bs.DB)
	ostore := store.NewOTPStore(bs.Firestore)
	secrets := store.NewAISecretsStore(bs.SecretManager, cfg.ProjectID)

	// query engine
	engine := query.NewEngine(bs.DB)

	// AI providers: Vertex authenticates with workload credentials, the
	// others need API keys from Secret Manager and are skipped when no
	// key is provisioned.
	startupCtx := context.Background()
	providers := map[string]services.Generator{
		dto.ProviderVertex: services.NewVertexGenerator(bs.VertexAdapter),
	}
	if key, err := secrets.GetAPIKey(startupCtx, dto.ProviderAnthropic); err == nil {
		providers[dto.ProviderAnthropic] = anthropic.NewClient(key, cfg.AnthropicModel)
	} else {
		bs.Log.Warn("anthropic provider disabled", "error", err)
	}
	if key, err := secrets.GetAPIKey(startupCtx, dto.ProviderOpenAI); err == nil {
		providers[dto.ProviderOpenAI] = openai.NewClient(key, cfg.OpenAIModel)
	} else {
		bs.Log.Warn("openai provider disabled", "error", err)
	}

	// services
	otpserv := services.NewOTPService(ostore, kmsHelper, mail)
	appserv := services.NewApplicationService(astore, otpserv, mail)
	wserv := services.NewWidgetService(wstore, engine)
	agserv := services.NewAgentService(providers, cfg.AIProvider)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.WidgetSvc = wserv
	deps.ApplicationSvc = appserv
	deps.OTPSvc = otpserv
	deps.AgentSvc = agserv

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":8080", r)
	exitOnError("server start failed", err, bs.Log)
}
