package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Bills       *billing.BillUseCase
	PosAPI      *billing.PosAPIUseCase
	Settings    *billing.SettingsUseCase
	Logs        *billing.LogsUseCase
	Info        *billing.InfoUseCase
	ReceiptPDF  *billing.PDFUseCase

	Logger      zerolog.Logger
	Observer    HTTPObserver        // nil: sin métricas HTTP
	Gatherer    prometheus.Gatherer // nil: sin /metrics
	CORSOrigins string
	SwaggerFile string // vacío o inexistente: sin /docs
}

// Router registra middleware y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	registerMiddleware(app, deps)

	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			// Swagger UI: http://localhost:<port>/docs
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "POS API bridge",
			}))
		} else {
			deps.Logger.Warn().Str("file", deps.SwaggerFile).Msg("swagger no disponible")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "service": deps.ServiceName, "ts": time.Now().UTC().Format(time.RFC3339)})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/posapi")

	// Recibos
	bills := NewBillHandler(deps.Bills, deps.PosAPI)
	api.Post("/addBill", bills.AddBill)
	api.Post("/addBillInvoice", bills.AddBillInvoice)
	api.Post("/updateBill", bills.UpdateBill)
	api.Post("/updateBillInvoice", bills.UpdateBillInvoice)
	api.Post("/deleteBill", bills.DeleteBill)
	api.Post("/sendBills", bills.SendBills)
	api.Post("/calculate", bills.Calculate)

	// Configuración POS
	settings := NewSettingsHandler(deps.Settings)
	api.Get("/settings", settings.Get)
	api.Get("/settings/:merchantTin", settings.Get)
	api.Post("/settings", settings.Save)
	api.Delete("/settings/:merchantTin", settings.Delete)

	// Bitácoras
	logs := NewLogsHandler(deps.Logs)
	api.Get("/response-logs", logs.ListReceipts)
	api.Get("/response-logs/:orderId", logs.GetReceipt)
	api.Get("/returns", logs.ListReturns)
	api.Get("/updates", logs.ListUpdates)

	// Información ebarimt
	info := NewInfoHandler(deps.Info)
	api.Get("/info", bills.PosInfo)
	api.Get("/info/branches", info.Branches)
	api.Get("/info/product-tax-codes", info.ProductTaxCodes)
	api.Get("/info/tin-by-reg/:regNo", info.TinByRegNo)
	api.Get("/info/tin/:tin", info.TinInfo)

	// PDF
	receipts := NewReceiptHandler(deps.ReceiptPDF)
	api.Get("/receipts/:orderId/pdf", receipts.DownloadPDF)
}
