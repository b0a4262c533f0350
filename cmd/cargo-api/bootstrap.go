package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/CargoFlow/config"
	cargoapi "github.com/BearBump/CargoFlow/internal/api/cargo_api"
	"github.com/BearBump/CargoFlow/internal/auth"
	"github.com/BearBump/CargoFlow/internal/broker/kafka"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/cache/rediscache"
	"github.com/BearBump/CargoFlow/internal/events"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/fake"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/httprelay"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/smtpmail"
	"github.com/BearBump/CargoFlow/internal/logging"
	"github.com/BearBump/CargoFlow/internal/metrics"
	"github.com/BearBump/CargoFlow/internal/notifications"
	"github.com/BearBump/CargoFlow/internal/services/accounts"
	"github.com/BearBump/CargoFlow/internal/services/activity"
	"github.com/BearBump/CargoFlow/internal/services/logistics"
	"github.com/BearBump/CargoFlow/internal/storage/memstore"
	"github.com/BearBump/CargoFlow/internal/storage/pgcargo"
	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
)

// cargoStore is everything the services need from persistence.
type cargoStore interface {
	logistics.Repository
	accounts.Repository
	Ping(ctx context.Context) error
	Close()
}

type eventProducer interface {
	events.Producer
	Close() error
}

type apiFactories struct {
	newStore    func(cfg *config.Config) (cargoStore, error)
	newProducer func(cfg *config.Config) eventProducer
	newMailer   func(cfg *config.Config) (mailer.Sender, error)
}

func defaultAPIFactories() apiFactories {
	return apiFactories{
		newStore: func(cfg *config.Config) (cargoStore, error) {
			switch cfg.CargoFlow.Storage {
			case "memory":
				slog.Warn("using in-memory storage, data is lost on restart")
				return memstore.New(), nil
			case "", "postgres":
				return openPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second)
			default:
				return nil, fmt.Errorf("unknown storage %q", cfg.CargoFlow.Storage)
			}
		},
		newProducer: func(cfg *config.Config) eventProducer {
			return kafka.NewProducer(cfg.Kafka.Brokers())
		},
		newMailer: func(cfg *config.Config) (mailer.Sender, error) {
			switch cfg.Mail.Mode {
			case "", "log":
				return fake.New(), nil
			case "smtp":
				return smtpmail.New(smtpmail.Config{
					Host:      cfg.Mail.Host,
					Port:      cfg.Mail.Port,
					Username:  cfg.Mail.Username,
					Password:  cfg.Mail.Password,
					TLSPolicy: cfg.Mail.TLSPolicy,
				})
			case "http":
				return httprelay.New(cfg.Mail.RelayURL, cfg.Mail.RelayAPIKey), nil
			default:
				return nil, fmt.Errorf("unknown mail mode %q", cfg.Mail.Mode)
			}
		},
	}
}

type cargoAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    cargoAPIOpts
	handler http.Handler
	svc     *logistics.Service
	closers []func()
}

func mustBootstrapCargoAPI() *cargoAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.CargoFlow.LogLevel,
		Format:  cfg.CargoFlow.LogFormat,
		Service: "cargo-api",
	})
	if err != nil {
		panic(err)
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app, err := buildCargoAPI(ctx, cfg, defaultAPIFactories(), os.Getenv("swaggerPath"))
	if err != nil {
		cancel()
		panic(err)
	}
	app.cancel = cancel
	return app
}

// buildCargoAPI wires every dependency of the API process. Redis is optional:
// without a host the metrics cache, rate limits and event feed are disabled.
func buildCargoAPI(ctx context.Context, cfg *config.Config, f apiFactories, swaggerPath string) (*cargoAPIApp, error) {
	app := &cargoAPIApp{ctx: ctx}
	fail := func(err error) (*cargoAPIApp, error) {
		app.Close()
		return nil, err
	}

	httpAddr := cfg.CargoFlow.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	metricsTTL := time.Duration(cfg.CargoFlow.MetricsCacheTTLSeconds) * time.Second
	if metricsTTL <= 0 {
		metricsTTL = time.Minute
	}
	sideEffectTimeout := time.Duration(cfg.CargoFlow.SideEffectTimeoutSeconds) * time.Second
	if sideEffectTimeout <= 0 {
		sideEffectTimeout = 10 * time.Second
	}

	m := metrics.New("cargo-api")

	st, err := f.newStore(cfg)
	if err != nil {
		return fail(errors.Wrap(err, "open storage"))
	}
	app.closers = append(app.closers, st.Close)

	sender, err := f.newMailer(cfg)
	if err != nil {
		return fail(errors.Wrap(err, "mail transport"))
	}

	producer := f.newProducer(cfg)
	app.closers = append(app.closers, func() { _ = producer.Close() })

	deps := cargoapi.Deps{
		Metrics:     m,
		LoginLimit:  orDefaultInt(cfg.CargoFlow.LoginRateLimitPerMinute, 10),
		NotifyLimit: orDefaultInt(cfg.CargoFlow.NotifyRateLimitPerMinute, 30),
		SwaggerPath: swaggerPath,
	}
	opts := logistics.Options{MetricsTTL: metricsTTL, SideEffectTimeout: sideEffectTimeout}
	if cfg.Redis.Host != "" {
		rc := rediscache.New(cfg.Redis.Addr())
		app.closers = append(app.closers, func() { _ = rc.Close() })
		opts.Cache = rc
		deps.Limiter = rc.RateLimiter()
		deps.Feed = activity.NewReader(rc, activity.DefaultFeedKey)
	} else {
		slog.Warn("redis not configured, metrics cache, rate limits and activity feed disabled")
	}

	dispatcher := notifications.NewDispatcher(sender, notifications.Config{
		DefaultRecipients: notifications.ParseRecipients(cfg.Mail.Recipients),
		From:              cfg.Mail.From,
	}, m)
	publisher := events.NewPublisher(producer, entityTopics(cfg.Kafka), m)

	svc := logistics.New(st, publisher, dispatcher, opts)
	users := accounts.New(st, accounts.Options{})

	if created, err := users.EnsureAdmin(ctx, cfg.CargoFlow.AdminEmail, cfg.CargoFlow.AdminPassword, cfg.CargoFlow.AdminName); err != nil {
		return fail(errors.Wrap(err, "ensure admin"))
	} else if created {
		slog.Info("bootstrap admin created", "email", cfg.CargoFlow.AdminEmail)
	}

	secret := []byte(cfg.CargoFlow.SessionSecret)
	if len(secret) == 0 {
		slog.Warn("session_secret not set, sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}
	sessions := auth.NewSessionResolver(secret, cfg.CargoFlow.SessionName, cfg.CargoFlow.SessionSecure)

	identity, err := identityResolver(cfg.CargoFlow, sessions, users)
	if err != nil {
		return fail(errors.Wrap(err, "identity resolver"))
	}

	deps.Logistics = svc
	deps.Accounts = users
	deps.Dispatcher = dispatcher
	deps.Sessions = sessions
	deps.Identity = identity

	app.svc = svc
	app.handler = cargoapi.New(deps).Routes()
	app.opts = cargoAPIOpts{
		httpAddr:    httpAddr,
		swaggerPath: swaggerPath,
	}
	slog.Info("cargo-api configured",
		"storage", orDefault(cfg.CargoFlow.Storage, "postgres"),
		"mail_mode", orDefault(cfg.Mail.Mode, "log"),
		"default_recipients", len(dispatcher.DefaultRecipients()),
	)
	return app, nil
}

func entityTopics(k config.KafkaConfig) events.Topics {
	t := k.Topics()
	return events.Topics{
		messages.EntityCargo:    t[0],
		messages.EntityShipment: t[1],
		messages.EntityDelivery: t[2],
		messages.EntityRoute:    t[3],
		messages.EntityVendor:   t[4],
	}
}

// identityResolver always resolves sessions; proxy principal headers join the
// chain only when trust_principal_headers is set.
func identityResolver(cfg config.CargoFlowConfig, sessions *auth.SessionResolver, users auth.OAuthUsers) (auth.Chain, error) {
	if !cfg.TrustPrincipalHeaders {
		return auth.Chain{sessions}, nil
	}

	headers := auth.DefaultPrincipalHeaders()
	if cfg.PrincipalEmailHeader != "" {
		headers.Email = cfg.PrincipalEmailHeader
	}
	if cfg.PrincipalNameHeader != "" {
		headers.Name = cfg.PrincipalNameHeader
	}
	if cfg.PrincipalPictureHeader != "" {
		headers.Picture = cfg.PrincipalPictureHeader
	}

	proxies, err := auth.ParseProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, err
	}
	principal, err := auth.NewPrincipalResolver(users, headers, auth.ProxyTrust{
		TrustedProxies: proxies,
		SecretHeader:   cfg.PrincipalSecretHeader,
		Secret:         cfg.PrincipalSecret,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("trusting proxy principal headers", "email_header", headers.Email, "proxies", len(proxies))
	return auth.Chain{sessions, principal}, nil
}

func openPostgresWithRetry(connString string, wait time.Duration) (*pgcargo.Storage, error) {
	deadline := time.Now().Add(wait)
	for {
		st, err := pgcargo.New(connString)
		if err == nil {
			return st, nil
		}
		if !time.Now().Before(deadline) {
			return nil, errors.Wrapf(err, "postgres is not ready after %s", wait)
		}
		time.Sleep(1 * time.Second)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *cargoAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *cargoAPIApp) Run() error {
	return runCargoAPI(a.ctx, a.opts, a.handler, a.svc)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
