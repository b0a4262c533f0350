package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/BearBump/CargoFlow/config"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/fake"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/httprelay"
	"github.com/BearBump/CargoFlow/internal/integrations/mailer/smtpmail"
	"github.com/BearBump/CargoFlow/internal/storage/memstore"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type noopProducer struct{}

func (noopProducer) Publish(ctx context.Context, topic string, key, value []byte) error { return nil }
func (noopProducer) Close() error                                                          { return nil }

func memoryFactories() apiFactories {
	f := defaultAPIFactories()
	f.newProducer = func(cfg *config.Config) eventProducer { return noopProducer{} }
	return f
}

func TestDefaultAPIFactories_SelectMailer(t *testing.T) {
	f := defaultAPIFactories()

	s, err := f.newMailer(&config.Config{})
	require.NoError(t, err)
	_, ok := s.(*fake.Sender)
	require.True(t, ok)

	s, err = f.newMailer(&config.Config{Mail: config.MailConfig{Mode: "smtp", Host: "smtp.example.com"}})
	require.NoError(t, err)
	_, ok = s.(*smtpmail.Client)
	require.True(t, ok)

	s, err = f.newMailer(&config.Config{Mail: config.MailConfig{Mode: "http", RelayURL: "http://relay:9025"}})
	require.NoError(t, err)
	_, ok = s.(*httprelay.Client)
	require.True(t, ok)

	_, err = f.newMailer(&config.Config{Mail: config.MailConfig{Mode: "smtp"}})
	require.Error(t, err)

	_, err = f.newMailer(&config.Config{Mail: config.MailConfig{Mode: "pigeon"}})
	require.Error(t, err)
}

func TestDefaultAPIFactories_Storage(t *testing.T) {
	f := defaultAPIFactories()

	st, err := f.newStore(&config.Config{CargoFlow: config.CargoFlowConfig{Storage: "memory"}})
	require.NoError(t, err)
	_, ok := st.(*memstore.MemoryStore)
	require.True(t, ok)

	_, err = f.newStore(&config.Config{CargoFlow: config.CargoFlowConfig{Storage: "sqlite"}})
	require.Error(t, err)
}

func TestEntityTopics(t *testing.T) {
	topics := entityTopics(config.KafkaConfig{ShipmentEventsTopicName: "shipments.v2"})
	require.Equal(t, "cargo-events", topics["cargo"])
	require.Equal(t, "shipments.v2", topics["shipment"])
	require.Equal(t, "vendor-events", topics["vendor"])
}

func TestCargoAPI_MemoryStack_ServesAndStops(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	cfg := &config.Config{
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: port},
		CargoFlow: config.CargoFlowConfig{
			HTTPAddr:      "127.0.0.1:0",
			Storage:       "memory",
			SessionSecret: "0123456789abcdef0123456789abcdef",
			AdminEmail:    "admin@cargoflow.test",
			AdminPassword: "admin-secret",
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, err := buildCargoAPI(ctx, cfg, memoryFactories(), sw)
	require.NoError(t, err)
	defer app.Close()

	addrCh := make(chan string, 1)
	app.opts.onListen = func(addr string) { addrCh <- addr }

	runErr := make(chan error, 1)
	go func() { runErr <- app.Run() }()

	var base string
	select {
	case addr := <-addrCh:
		base = "http://" + addr
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/swagger.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, string(body), "\"swagger\"")

	resp, err = http.Post(base+"/api/auth/login", "application/json",
		bytes.NewBufferString(`{"email":"admin@cargoflow.test","password":"admin-secret"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(base+"/api/cargo", "application/json",
		bytes.NewBufferString(`{"type":"Electronics","weight":2,"value":10}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cancel()
	select {
	case err := <-runErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting server to stop")
	}
}

func TestCargoAPI_PrincipalHeadersNeedOptIn(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	newCfg := func(tweak func(*config.CargoFlowConfig)) *config.Config {
		cfg := &config.Config{
			Redis: config.RedisConfig{Host: "127.0.0.1", Port: port},
			CargoFlow: config.CargoFlowConfig{
				Storage:       "memory",
				SessionSecret: "0123456789abcdef0123456789abcdef",
				AdminEmail:    "admin@cargoflow.test",
				AdminPassword: "admin-secret",
			},
		}
		tweak(&cfg.CargoFlow)
		return cfg
	}
	allUsers := func(h http.Handler, headers map[string]string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/all-users", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	ctx := context.Background()

	app, err := buildCargoAPI(ctx, newCfg(func(*config.CargoFlowConfig) {}), memoryFactories(), "")
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, allUsers(app.handler, map[string]string{"X-Auth-Request-Email": "admin@cargoflow.test"}))
	app.Close()

	_, err = buildCargoAPI(ctx, newCfg(func(c *config.CargoFlowConfig) { c.TrustPrincipalHeaders = true }), memoryFactories(), "")
	require.Error(t, err)

	_, err = buildCargoAPI(ctx, newCfg(func(c *config.CargoFlowConfig) {
		c.TrustPrincipalHeaders = true
		c.TrustedProxyCIDRs = []string{"not-a-cidr"}
	}), memoryFactories(), "")
	require.Error(t, err)

	app, err = buildCargoAPI(ctx, newCfg(func(c *config.CargoFlowConfig) {
		c.TrustPrincipalHeaders = true
		c.PrincipalSecret = "proxy-secret"
	}), memoryFactories(), "")
	require.NoError(t, err)
	defer app.Close()
	require.Equal(t, http.StatusForbidden, allUsers(app.handler, map[string]string{"X-Auth-Request-Email": "admin@cargoflow.test"}))
	require.Equal(t, http.StatusForbidden, allUsers(app.handler, map[string]string{
		"X-Auth-Request-Email": "admin@cargoflow.test",
		"X-Auth-Proxy-Secret":  "proxy-secret",
	}))
}

func TestOpenPostgresWithRetry_WrapsLastError(t *testing.T) {
	st, err := openPostgresWithRetry("not-a-dsn", 0)
	require.Nil(t, st)
	require.Error(t, err)
	require.Contains(t, err.Error(), "postgres is not ready after 0s")
	require.Contains(t, err.Error(), "parse pg config")
	require.NotEqual(t, err, errors.Cause(err))
}

func TestRunCargoAPI_MissingSwagger(t *testing.T) {
	err := runCargoAPI(context.Background(), cargoAPIOpts{
		httpAddr:    "127.0.0.1:0",
		swaggerPath: filepath.Join(t.TempDir(), "missing.json"),
	}, http.NotFoundHandler(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "swagger file not found")
}
