package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	_ "github.com/itsystem/posapi-bridge/docs"
	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain/ebarimt"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/cache"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/ebarimtinfo"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/memory"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/metrics"
	infrapdf "github.com/itsystem/posapi-bridge/internal/infrastructure/pdf"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/posapi"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/postgres"
	httpRouter "github.com/itsystem/posapi-bridge/internal/interfaces/http"
	"github.com/itsystem/posapi-bridge/pkg/config"
	"github.com/itsystem/posapi-bridge/pkg/logger"
)

// stores repositorios según APP_STORE.
type stores struct {
	receipts repository.ReceiptRepository
	returns  repository.ReturnLogRepository
	updates  repository.UpdateLogRepository
	settings repository.PosSettingsRepository
	tx       billing.ReceiptTxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	// El frontend POS espera montos como números JSON.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	st := mustOpenStores(ctx, cfg, log)
	defer st.close()

	var (
		locker    billing.OrderLocker = billing.NoopLocker{}
		infoCache billing.InfoCache   = billing.NoopInfoCache{}
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() { _ = rdb.Close() }()
		locker = cache.NewOrderLocker(rdb, cfg.Lock.TTL)
		infoCache = cache.NewInfoCache(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin lock por pedido ni caché de consultas")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Namespace, reg)

	posClient := posapi.NewClient(cfg.PosAPI.BaseURL, cfg.PosAPI.Timeout, log.Component("posapi"))
	directory := ebarimtinfo.NewClient(cfg.Ebarimt.BaseURL, cfg.Ebarimt.RPS, cfg.PosAPI.Timeout)

	parser := billing.NewRequestParser(st.settings, billing.HeaderDefaults{
		MerchantTin:  cfg.Defaults.MerchantTin,
		PosNo:        cfg.Defaults.PosNo,
		DistrictCode: cfg.Defaults.DistrictCode,
		BranchNo:     cfg.Defaults.BranchNo,
		BillIDSuffix: cfg.Defaults.BillIDSuffix,
	})
	processor := ebarimt.NewBillProcessor(ebarimt.ProcessorConfig{
		DefaultMeasureUnit:        cfg.Defaults.MeasureUnit,
		DefaultClassificationCode: cfg.Defaults.ClassificationCode,
		DefaultTaxProductCode:     cfg.Defaults.TaxProductCode,
	})

	billLog := log.Component("billing")
	billUC := billing.NewBillUseCase(
		st.receipts, st.returns, st.tx, posClient, parser, processor,
		locker, m, billLog,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.PosAPI.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Bills:       billUC,
		PosAPI:      billing.NewPosAPIUseCase(posClient, billLog),
		Settings:    billing.NewSettingsUseCase(st.settings),
		Logs:        billing.NewLogsUseCase(st.receipts, st.returns, st.updates),
		Info:        billing.NewInfoUseCase(directory, infoCache, cfg.Ebarimt.CacheTTL, log.Component("ebarimt-info")),
		ReceiptPDF:  billing.NewPDFUseCase(st.receipts, infrapdf.NewMarotoPDFGenerator()),
		Logger:      log.Component("http"),
		Observer:    m,
		Gatherer:    reg,
		CORSOrigins: cfg.CORS.AllowOrigins,
		SwaggerFile: cfg.Docs.SwaggerFile,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func mustOpenStores(ctx context.Context, cfg *config.Config, log *logger.Logger) stores {
	if cfg.App.UseMemoryStore() {
		log.Warn().Msg("APP_STORE=memory: los recibos no sobreviven al reinicio")
		s := memory.NewStore()
		return stores{
			receipts: s.Receipts(),
			returns:  s.Returns(),
			updates:  s.Updates(),
			settings: s.Settings(),
			tx:       s,
			close:    func() {},
		}
	}

	if err := postgres.Migrate(cfg.DB.MigrateURL(), log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return stores{
		receipts: postgres.NewReceiptRepository(pool),
		returns:  postgres.NewReturnLogRepository(pool),
		updates:  postgres.NewUpdateLogRepository(pool),
		settings: postgres.NewSettingsRepository(pool),
		tx:       postgres.NewTxRunner(pool),
		close:    pool.Close,
	}
}
