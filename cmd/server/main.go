package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/orderlab/realtime-orders/internal/api"
	"github.com/orderlab/realtime-orders/internal/catalog"
	"github.com/orderlab/realtime-orders/internal/config"
	"github.com/orderlab/realtime-orders/internal/engine"
	"github.com/orderlab/realtime-orders/internal/messaging"
	"github.com/orderlab/realtime-orders/internal/notify"
	"github.com/orderlab/realtime-orders/internal/store"
	"github.com/orderlab/realtime-orders/internal/telemetry"
)

const (
	serviceName    = "realtime-orders"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.FromEnv()

	if cfg.Tracing {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(ctx) }()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	var kafkaSink *messaging.Sink
	var extraSinks []notify.Sink
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, messaging.Topic)
		kafkaSink = messaging.NewSink(producer, logger)
		extraSinks = append(extraSinks, kafkaSink)
		defer func() { _ = kafkaSink.Close() }()
		logger.Info("kafka event mirror enabled", "brokers", cfg.KafkaBrokers, "topic", messaging.Topic)
	}

	cat := catalog.Default()
	hub := notify.NewHub(logger)

	eng, err := engine.New(cat, store.New(), hub, clock.New(),
		cfg.ProcessingDelay, cfg.CompletedDelay, logger, extraSinks...)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(eng, cat, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", telemetry.WithHTTPRoute(handler.HandleListProducts))
	mux.HandleFunc("GET /api/orders", telemetry.WithHTTPRoute(handler.HandleListOrders))
	mux.HandleFunc("POST /api/orders", telemetry.WithHTTPRoute(handler.HandleCreateOrder))
	mux.HandleFunc("DELETE /api/orders/{orderId}", telemetry.WithHTTPRoute(handler.HandleDeleteOrder))
	mux.HandleFunc("GET /api/events", handler.HandleEvents)
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Port),
		Handler: api.CORS(cfg.CORSOrigin, otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		)),
		ReadTimeout: 10 * time.Second,
		// No write timeout: /api/events holds its response open for the
		// lifetime of the observer connection.
	}

	go func() {
		logger.Info("starting order service", "port", cfg.Port,
			"processing_delay", cfg.ProcessingDelay, "completed_delay", cfg.CompletedDelay)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
