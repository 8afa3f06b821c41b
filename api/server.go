package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/openalpha/fundchain/api/handlers"
	"github.com/openalpha/fundchain/api/middleware"
	"github.com/openalpha/fundchain/api/types"
	"github.com/openalpha/fundchain/api/websocket"
	"github.com/openalpha/fundchain/metrics"
)

// Server represents the API gateway
type Server struct {
	httpServer *http.Server
	wsServer   *websocket.Server
	config     *Config
	mockMode   bool

	// Services
	fundService     types.FundService
	investorService types.InvestorService
	tradeService    types.TradeService

	// Handlers
	fundHandler     *handlers.FundHandler
	investorHandler *handlers.InvestorHandler
	tradeHandler    *handlers.TradeHandler

	// Rate limiter
	rateLimiter *middleware.RateLimiter

	// Shutdown
	stopCh chan struct{}
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MockMode         bool
	DisableRateLimit bool // For testing purposes

	// How often buffered share prices are pushed to websocket clients
	BroadcastInterval time.Duration
}

// DefaultConfig returns default configuration
// NOTE: MockMode defaults to false for production safety.
// Use --mock flag explicitly for development/testing with mock data.
func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              8080,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MockMode:          false,
		BroadcastInterval: 2 * time.Second,
	}
}

// NewServer creates a new API server backed by the in-memory mock service
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	mockService := NewMockService()
	return NewServerWithServices(config, mockService, mockService, mockService)
}

// NewServerWithServices creates a new API server with custom services
func NewServerWithServices(config *Config, fundSvc types.FundService, investorSvc types.InvestorService, tradeSvc types.TradeService) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BroadcastInterval <= 0 {
		config.BroadcastInterval = 2 * time.Second
	}

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	s := &Server{
		config:          config,
		wsServer:        websocket.NewServer(wsConfig),
		mockMode:        config.MockMode,
		fundService:     fundSvc,
		investorService: investorSvc,
		tradeService:    tradeSvc,
		rateLimiter:     rateLimiter,
		stopCh:          make(chan struct{}),
	}

	s.fundHandler = handlers.NewFundHandler(s.fundService)
	s.investorHandler = handlers.NewInvestorHandler(s.investorService)
	s.tradeHandler = handlers.NewTradeHandler(s.tradeService)

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Health check (support both /health and /v1/health for compatibility)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/health", s.handleHealth)

	// Fund endpoints (read-only)
	mux.HandleFunc("/v1/funds", s.fundHandler.HandleFunds)
	mux.HandleFunc("/v1/funds/", s.fundHandler.HandleFund)

	// Investor endpoints (read-only)
	mux.HandleFunc("/v1/investors/", s.investorHandler.HandleInvestor)

	// Share operations (POST)
	mux.HandleFunc("/v1/purchase", s.tradeHandler.HandlePurchase)
	mux.HandleFunc("/v1/redeem", s.tradeHandler.HandleRedeem)
	mux.HandleFunc("/v1/claim", s.tradeHandler.HandleClaim)

	// WebSocket
	mux.HandleFunc("/ws", s.wsServer.GetHub().ServeWS)

	// Prometheus metrics
	mux.Handle("/metrics", metrics.Handler())

	// Apply middleware chain: CORS -> Metrics -> RateLimit -> Handler
	var handler http.Handler = metricsMiddleware(mux)
	if !s.config.DisableRateLimit {
		handler = middleware.RateLimitMiddleware(s.rateLimiter)(handler)
	}
	handler = corsMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	// Start WebSocket hub
	go s.wsServer.GetHub().Run()

	// Push share prices to websocket subscribers
	go s.runPriceBroadcaster()

	log.Printf("API server starting on %s (mock mode: %v)", addr, s.mockMode)
	if s.config.DisableRateLimit {
		log.Printf("Rate limiting DISABLED (for testing)")
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	close(s.stopCh)
	return s.httpServer.Shutdown(ctx)
}

// GetWSServer returns the websocket server for event publishing
func (s *Server) GetWSServer() *websocket.Server {
	return s.wsServer
}

// runPriceBroadcaster periodically polls the fund service and pushes
// share price updates into the websocket hub
func (s *Server) runPriceBroadcaster() {
	ticker := time.NewTicker(s.config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.broadcastSharePrices()
		}
	}
}

func (s *Server) broadcastSharePrices() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := s.fundService.ListFunds(ctx, &types.ListFundsRequest{})
	if err != nil {
		return
	}

	mc := metrics.GetCollector()
	for _, fund := range resp.Funds {
		s.wsServer.BroadcastSharePrice(&websocket.SharePriceMessage{
			FundID:        fund.FundID,
			Denomination:  fund.Denomination,
			SharePrice:    fund.SharePrice,
			GrossValue:    fund.GrossAssetValue,
			TotalShare:    fund.TotalShare,
			LiquidReserve: fund.LiquidReserve,
			State:         fund.State,
			Timestamp:     nowMillis(),
		})
		mc.RecordWSMessage("shareprice:" + fund.FundID)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := "real"
	if s.mockMode {
		mode = "mock"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"mode":      mode,
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Investor-Address")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	mc := metrics.GetCollector()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		mc.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), timer.ElapsedMs())
	})
}
