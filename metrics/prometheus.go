package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FundChain Metrics Collector
// Provides comprehensive metrics for monitoring

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all FundChain metrics
type Collector struct {
	// Fund metrics
	FundsTotal       *prometheus.GaugeVec
	FundState        *prometheus.GaugeVec
	GrossAssetValue  *prometheus.GaugeVec
	SharePrice       *prometheus.GaugeVec
	TotalShare       *prometheus.GaugeVec
	LiquidReserve    *prometheus.GaugeVec
	HighWaterMark    *prometheus.GaugeVec
	OutstandingShare *prometheus.GaugeVec

	// Flow metrics
	PurchasesTotal   *prometheus.CounterVec
	PurchaseVolume   *prometheus.CounterVec
	RedemptionsTotal *prometheus.CounterVec
	RedemptionVolume *prometheus.CounterVec
	PendingBonus     *prometheus.CounterVec

	// Pending round metrics
	PendingRoundsOpen  *prometheus.GaugeVec
	PendingShareParked *prometheus.GaugeVec
	PendingResolutions *prometheus.CounterVec
	PendingClaimsPaid  *prometheus.CounterVec
	PendingClaimValue  *prometheus.CounterVec

	// Fee metrics
	ManagementFeeShares  *prometheus.CounterVec
	PerformanceFeeShares *prometheus.CounterVec
	Crystallizations     *prometheus.CounterVec

	// Execution metrics
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionLatency  *prometheus.HistogramVec
	ToleranceBreaches *prometheus.CounterVec

	// Oracle metrics
	OraclePrice   *prometheus.GaugeVec
	OracleLatency *prometheus.HistogramVec

	// WebSocket metrics
	WSConnectionsActive *prometheus.GaugeVec
	WSMessagesTotal     *prometheus.CounterVec
	WSSubscriptions     *prometheus.GaugeVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	APIErrorsTotal    *prometheus.CounterVec

	// System metrics
	BlockHeight prometheus.Gauge
	BlockTime   *prometheus.HistogramVec
	TxPoolSize  prometheus.Gauge
	PeerCount   prometheus.Gauge
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	c.FundsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "funds",
			Name:      "total",
			Help:      "Number of funds per lifecycle state",
		},
		[]string{"state"},
	)

	c.FundState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "funds",
			Name:      "state",
			Help:      "Current lifecycle state ordinal of a fund",
		},
		[]string{"fund_id"},
	)

	c.GrossAssetValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "funds",
			Name:      "gross_asset_value",
			Help:      "Gross asset value in fund denomination",
		},
		[]string{"fund_id", "denomination"},
	)

	c.SharePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "funds",
			Name:      "share_price",
			Help:      "Gross share price in fund denomination",
		},
		[]string{"fund_id"},
	)

	c.TotalShare = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "funds",
			Name:      "total_share",
			Help:      "Total share supply including parked pending shares",
		},
		[]string{"fund_id"},
	)

	c.LiquidReserve = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "funds",
			Name:      "liquid_reserve",
			Help:      "Spendable denomination balance net of claimable reserve",
		},
		[]string{"fund_id", "denomination"},
	)

	c.HighWaterMark = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "fees",
			Name:      "high_water_mark",
			Help:      "Performance fee high-water mark share price",
		},
		[]string{"fund_id"},
	)

	c.OutstandingShare = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "fees",
			Name:      "outstanding_share",
			Help:      "Uncrystallized performance fee share buffer",
		},
		[]string{"fund_id"},
	)

	c.PurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "flows",
			Name:      "purchases_total",
			Help:      "Total number of share purchases",
		},
		[]string{"fund_id", "state"},
	)

	c.PurchaseVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "flows",
			Name:      "purchase_volume",
			Help:      "Cumulative purchase volume in denomination",
		},
		[]string{"fund_id", "denomination"},
	)

	c.RedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "flows",
			Name:      "redemptions_total",
			Help:      "Total number of redemptions",
		},
		[]string{"fund_id", "kind"},
	)

	c.RedemptionVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "flows",
			Name:      "redemption_volume",
			Help:      "Cumulative redemption volume in denomination",
		},
		[]string{"fund_id", "denomination"},
	)

	c.PendingBonus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "flows",
			Name:      "pending_bonus_shares",
			Help:      "Bonus shares granted to resolving purchasers",
		},
		[]string{"fund_id"},
	)

	c.PendingRoundsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "pending",
			Name:      "rounds_open",
			Help:      "Open pending rounds per fund",
		},
		[]string{"fund_id"},
	)

	c.PendingShareParked = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "pending",
			Name:      "share_parked",
			Help:      "Penalized shares waiting on liquidity",
		},
		[]string{"fund_id"},
	)

	c.PendingResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "pending",
			Name:      "resolutions_total",
			Help:      "Pending rounds resolved",
		},
		[]string{"fund_id"},
	)

	c.PendingClaimsPaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "pending",
			Name:      "claims_paid_total",
			Help:      "Resolved pending claims paid out",
		},
		[]string{"fund_id"},
	)

	c.PendingClaimValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "pending",
			Name:      "claim_value",
			Help:      "Cumulative claim payout value in denomination",
		},
		[]string{"fund_id", "denomination"},
	)

	c.ManagementFeeShares = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "fees",
			Name:      "management_shares",
			Help:      "Management fee dilution shares minted to managers",
		},
		[]string{"fund_id"},
	)

	c.PerformanceFeeShares = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "fees",
			Name:      "performance_shares",
			Help:      "Crystallized performance fee shares",
		},
		[]string{"fund_id"},
	)

	c.Crystallizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "fees",
			Name:      "crystallizations_total",
			Help:      "Performance fee crystallization events",
		},
		[]string{"fund_id"},
	)

	c.ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "execution",
			Name:      "total",
			Help:      "Adapter executions by outcome",
		},
		[]string{"fund_id", "target", "status"},
	)

	c.ExecutionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fundchain",
			Subsystem: "execution",
			Name:      "latency_ms",
			Help:      "Adapter execution latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"fund_id", "target"},
	)

	c.ToleranceBreaches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "execution",
			Name:      "tolerance_breaches_total",
			Help:      "Executions reverted for excessive value loss",
		},
		[]string{"fund_id"},
	)

	c.OraclePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "oracle",
			Name:      "price",
			Help:      "Oracle price per asset pair",
		},
		[]string{"base", "quote"},
	)

	c.OracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fundchain",
			Subsystem: "oracle",
			Name:      "latency_ms",
			Help:      "Oracle query latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"base"},
	)

	c.WSConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Active WebSocket connections",
		},
		[]string{"endpoint"},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "WebSocket messages sent per channel",
		},
		[]string{"channel"},
	)

	c.WSSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "websocket",
			Name:      "subscriptions",
			Help:      "Active channel subscriptions",
		},
		[]string{"channel"},
	)

	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fundchain",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "HTTP API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"method", "path"},
	)

	c.APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fundchain",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "HTTP API error responses",
		},
		[]string{"method", "path", "status"},
	)

	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.BlockTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fundchain",
			Subsystem: "system",
			Name:      "block_time_ms",
			Help:      "Block interval in milliseconds",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000},
		},
		[]string{"chain_id"},
	)

	c.TxPoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "system",
			Name:      "tx_pool_size",
			Help:      "Pending transactions in the mempool",
		},
	)

	c.PeerCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fundchain",
			Subsystem: "system",
			Name:      "peer_count",
			Help:      "Connected peers",
		},
	)

	c.registerAll()
	return c
}

func (c *Collector) registerAll() {
	prometheus.MustRegister(
		c.FundsTotal,
		c.FundState,
		c.GrossAssetValue,
		c.SharePrice,
		c.TotalShare,
		c.LiquidReserve,
		c.HighWaterMark,
		c.OutstandingShare,
		c.PurchasesTotal,
		c.PurchaseVolume,
		c.RedemptionsTotal,
		c.RedemptionVolume,
		c.PendingBonus,
		c.PendingRoundsOpen,
		c.PendingShareParked,
		c.PendingResolutions,
		c.PendingClaimsPaid,
		c.PendingClaimValue,
		c.ManagementFeeShares,
		c.PerformanceFeeShares,
		c.Crystallizations,
		c.ExecutionsTotal,
		c.ExecutionLatency,
		c.ToleranceBreaches,
		c.OraclePrice,
		c.OracleLatency,
		c.WSConnectionsActive,
		c.WSMessagesTotal,
		c.WSSubscriptions,
		c.APIRequestsTotal,
		c.APIRequestLatency,
		c.APIErrorsTotal,
		c.BlockHeight,
		c.BlockTime,
		c.TxPoolSize,
		c.PeerCount,
	)
}

// RecordPurchase records a share purchase
func (c *Collector) RecordPurchase(fundID, state, denomination string, amount float64) {
	c.PurchasesTotal.WithLabelValues(fundID, state).Inc()
	c.PurchaseVolume.WithLabelValues(fundID, denomination).Add(amount)
}

// RecordRedemption records an immediate or pending redemption
func (c *Collector) RecordRedemption(fundID, kind, denomination string, amount float64) {
	c.RedemptionsTotal.WithLabelValues(fundID, kind).Inc()
	c.RedemptionVolume.WithLabelValues(fundID, denomination).Add(amount)
}

// RecordPendingResolution records a resolved round
func (c *Collector) RecordPendingResolution(fundID string) {
	c.PendingResolutions.WithLabelValues(fundID).Inc()
}

// RecordClaim records a pending claim payout
func (c *Collector) RecordClaim(fundID, denomination string, value float64) {
	c.PendingClaimsPaid.WithLabelValues(fundID).Inc()
	c.PendingClaimValue.WithLabelValues(fundID, denomination).Add(value)
}

// RecordManagementFee records minted dilution shares
func (c *Collector) RecordManagementFee(fundID string, shares float64) {
	c.ManagementFeeShares.WithLabelValues(fundID).Add(shares)
}

// RecordCrystallization records a performance fee harvest
func (c *Collector) RecordCrystallization(fundID string, shares float64) {
	c.Crystallizations.WithLabelValues(fundID).Inc()
	c.PerformanceFeeShares.WithLabelValues(fundID).Add(shares)
}

// RecordExecution records an adapter execution outcome
func (c *Collector) RecordExecution(fundID, target, status string, latencyMs float64) {
	c.ExecutionsTotal.WithLabelValues(fundID, target, status).Inc()
	c.ExecutionLatency.WithLabelValues(fundID, target).Observe(latencyMs)
}

// UpdateFundGauges refreshes per-fund gauges at end of block
func (c *Collector) UpdateFundGauges(fundID, denomination string, stateOrdinal, gav, price, totalShare, reserve, hwm, outstanding float64) {
	c.FundState.WithLabelValues(fundID).Set(stateOrdinal)
	c.GrossAssetValue.WithLabelValues(fundID, denomination).Set(gav)
	c.SharePrice.WithLabelValues(fundID).Set(price)
	c.TotalShare.WithLabelValues(fundID).Set(totalShare)
	c.LiquidReserve.WithLabelValues(fundID, denomination).Set(reserve)
	c.HighWaterMark.WithLabelValues(fundID).Set(hwm)
	c.OutstandingShare.WithLabelValues(fundID).Set(outstanding)
}

// RecordAPIRequest records an HTTP API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection tracks connection count changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.WithLabelValues("ws").Add(float64(delta))
}

// RecordWSMessage records a message sent on a channel
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// UpdateSystemMetrics updates chain-level gauges
func (c *Collector) UpdateSystemMetrics(blockHeight int64, txPoolSize int, peerCount int) {
	c.BlockHeight.Set(float64(blockHeight))
	c.TxPoolSize.Set(float64(txPoolSize))
	c.PeerCount.Set(float64(peerCount))
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed time in milliseconds
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Milliseconds())
}
