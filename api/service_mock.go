package api

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cosmossdk.io/math"
	"github.com/google/btree"

	"github.com/openalpha/fundchain/api/types"
)

// pricePoint orders share price observations by time; seq breaks ties for
// points recorded in the same millisecond.
type pricePoint struct {
	ts    int64
	seq   uint64
	point *types.SharePricePoint
}

func pricePointLess(a, b *pricePoint) bool {
	if a.ts != b.ts {
		return a.ts < b.ts
	}
	return a.seq < b.seq
}

// maxHistoryPoints bounds per-fund price history growth.
const maxHistoryPoints = 10000

// MockService implements the service interfaces with in-memory state.
// It mirrors the chain's share math coarsely so the gateway can be
// exercised without a running node. Users start with empty positions
// and must purchase to see data.
type MockService struct {
	funds     map[string]*mockFund
	positions map[string]math.LegacyDec // key: fundID:investor
	claims    map[string][]*types.PendingClaim
	history   map[string]*btree.BTreeG[*pricePoint]
	seq       uint64
	mu        sync.RWMutex
}

type mockFund struct {
	info       *types.Fund
	totalShare math.LegacyDec
	grossValue math.LegacyDec
	reserve    math.LegacyDec
	nextRound  uint64
}

// NewMockService creates a new mock service
func NewMockService() *MockService {
	ms := &MockService{
		funds:     make(map[string]*mockFund),
		positions: make(map[string]math.LegacyDec),
		claims:    make(map[string][]*types.PendingClaim),
		history:   make(map[string]*btree.BTreeG[*pricePoint]),
	}
	ms.seedFunds()
	return ms
}

// seedFunds creates a small set of funds so read endpoints return data
func (ms *MockService) seedFunds() {
	now := nowMillis()
	for _, cfg := range []struct {
		id      string
		manager string
		mgmtBps uint32
		perfBps uint32
	}{
		{"alpha-usdc", "manager-alpha", 100, 2000},
		{"beta-usdc", "manager-beta", 200, 1000},
	} {
		ms.funds[cfg.id] = &mockFund{
			info: &types.Fund{
				FundID:                cfg.id,
				Manager:               cfg.manager,
				Denomination:          "usdc",
				Level:                 1,
				State:                 "executing",
				ManagementFeeBps:      cfg.mgmtBps,
				PerformanceFeeBps:     cfg.perfBps,
				CrystallizationPeriod: 7 * 24 * 3600,
				CreatedAt:             now,
				UpdatedAt:             now,
			},
			totalShare: math.LegacyZeroDec(),
			grossValue: math.LegacyZeroDec(),
			reserve:    math.LegacyZeroDec(),
			nextRound:  1,
		}
	}
}

func positionKey(fundID, investor string) string {
	return fundID + ":" + investor
}

// sharePrice returns value per share, 1 when no shares exist yet
func (f *mockFund) sharePrice() math.LegacyDec {
	if f.totalShare.IsZero() {
		return math.LegacyOneDec()
	}
	return f.grossValue.QuoTruncate(f.totalShare)
}

func (f *mockFund) fill(now int64) *types.Fund {
	out := *f.info
	out.GrossAssetValue = f.grossValue.String()
	out.SharePrice = f.sharePrice().String()
	out.TotalShare = f.totalShare.String()
	out.LiquidReserve = f.reserve.String()
	out.UpdatedAt = now
	return &out
}

// ============ FundService Implementation ============

func (ms *MockService) GetFund(ctx context.Context, fundID string) (*types.Fund, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	fund, ok := ms.funds[fundID]
	if !ok {
		return nil, fmt.Errorf("fund %s not found", fundID)
	}
	return fund.fill(nowMillis()), nil
}

func (ms *MockService) ListFunds(ctx context.Context, req *types.ListFundsRequest) (*types.ListFundsResponse, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := nowMillis()
	funds := make([]*types.Fund, 0, len(ms.funds))
	for _, fund := range ms.funds {
		if req.State != "" && fund.info.State != req.State {
			continue
		}
		funds = append(funds, fund.fill(now))
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].FundID < funds[j].FundID })

	if req.Limit > 0 && len(funds) > req.Limit {
		funds = funds[:req.Limit]
	}

	return &types.ListFundsResponse{
		Funds: funds,
		Total: len(funds),
	}, nil
}

func (ms *MockService) GetAssets(ctx context.Context, fundID string) ([]*types.AssetEntry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	fund, ok := ms.funds[fundID]
	if !ok {
		return nil, fmt.Errorf("fund %s not found", fundID)
	}
	return []*types.AssetEntry{
		{
			Asset:   fund.info.Denomination,
			Kind:    "canonical",
			Balance: fund.reserve.String(),
			Value:   fund.reserve.String(),
		},
	}, nil
}

func (ms *MockService) GetPriceHistory(ctx context.Context, req *types.PriceHistoryRequest) ([]*types.SharePricePoint, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if _, ok := ms.funds[req.FundID]; !ok {
		return nil, fmt.Errorf("fund %s not found", req.FundID)
	}

	points := make([]*types.SharePricePoint, 0)
	tree := ms.history[req.FundID]
	if tree == nil {
		return points, nil
	}
	from := &pricePoint{ts: req.From}
	collect := func(p *pricePoint) bool {
		if req.To > 0 && p.ts > req.To {
			return false
		}
		points = append(points, p.point)
		return true
	}
	if req.From > 0 {
		tree.AscendGreaterOrEqual(from, collect)
	} else {
		tree.Ascend(collect)
	}
	if req.Limit > 0 && len(points) > req.Limit {
		points = points[len(points)-req.Limit:]
	}
	return points, nil
}

// ============ InvestorService Implementation ============

func (ms *MockService) GetPosition(ctx context.Context, fundID, investor string) (*types.Position, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	fund, ok := ms.funds[fundID]
	if !ok {
		return nil, fmt.Errorf("fund %s not found", fundID)
	}

	share, ok := ms.positions[positionKey(fundID, investor)]
	if !ok {
		share = math.LegacyZeroDec()
	}
	price := fund.sharePrice()

	return &types.Position{
		FundID:     fundID,
		Investor:   investor,
		Share:      share.String(),
		Value:      share.MulTruncate(price).String(),
		SharePrice: price.String(),
		UpdatedAt:  nowMillis(),
	}, nil
}

func (ms *MockService) ListPositions(ctx context.Context, investor string) ([]*types.Position, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := nowMillis()
	positions := make([]*types.Position, 0)
	for fundID, fund := range ms.funds {
		share, ok := ms.positions[positionKey(fundID, investor)]
		if !ok || share.IsZero() {
			continue
		}
		price := fund.sharePrice()
		positions = append(positions, &types.Position{
			FundID:     fundID,
			Investor:   investor,
			Share:      share.String(),
			Value:      share.MulTruncate(price).String(),
			SharePrice: price.String(),
			UpdatedAt:  now,
		})
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].FundID < positions[j].FundID })
	return positions, nil
}

func (ms *MockService) GetClaims(ctx context.Context, fundID, investor string) ([]*types.PendingClaim, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	claims := make([]*types.PendingClaim, 0)
	claims = append(claims, ms.claims[positionKey(fundID, investor)]...)
	return claims, nil
}

// ============ TradeService Implementation ============

func (ms *MockService) Purchase(ctx context.Context, req *types.PurchaseRequest) (*types.PurchaseResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	fund, ok := ms.funds[req.FundID]
	if !ok {
		return nil, fmt.Errorf("fund %s not found", req.FundID)
	}

	amount, err := math.LegacyNewDecFromStr(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %s", req.Amount)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	price := fund.sharePrice()
	share := amount.QuoTruncate(price)

	key := positionKey(req.FundID, req.Investor)
	balance, ok := ms.positions[key]
	if !ok {
		balance = math.LegacyZeroDec()
	}
	ms.positions[key] = balance.Add(share)

	fund.totalShare = fund.totalShare.Add(share)
	fund.grossValue = fund.grossValue.Add(amount)
	fund.reserve = fund.reserve.Add(amount)
	ms.recordPricePoint(req.FundID, fund)

	return &types.PurchaseResponse{
		FundID:     req.FundID,
		Investor:   req.Investor,
		Share:      share.String(),
		SharePrice: fund.sharePrice().String(),
		State:      fund.info.State,
	}, nil
}

func (ms *MockService) Redeem(ctx context.Context, req *types.RedeemRequest) (*types.RedeemResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	fund, ok := ms.funds[req.FundID]
	if !ok {
		return nil, fmt.Errorf("fund %s not found", req.FundID)
	}

	share, err := math.LegacyNewDecFromStr(req.Share)
	if err != nil {
		return nil, fmt.Errorf("invalid share: %s", req.Share)
	}
	if !share.IsPositive() {
		return nil, fmt.Errorf("share must be positive")
	}

	key := positionKey(req.FundID, req.Investor)
	balance, ok := ms.positions[key]
	if !ok || balance.LT(share) {
		return nil, fmt.Errorf("insufficient share balance")
	}

	owed := share.MulTruncate(fund.sharePrice())
	if fund.reserve.GTE(owed) {
		ms.positions[key] = balance.Sub(share)
		fund.totalShare = fund.totalShare.Sub(share)
		fund.grossValue = fund.grossValue.Sub(owed)
		fund.reserve = fund.reserve.Sub(owed)
		ms.recordPricePoint(req.FundID, fund)
		return &types.RedeemResponse{
			FundID:   req.FundID,
			Investor: req.Investor,
			Paid:     owed.String(),
			State:    fund.info.State,
		}, nil
	}

	if !req.AcceptPending {
		return nil, fmt.Errorf("insufficient reserve and pending not accepted")
	}

	// Queue the full amount, matching the chain's pending semantics
	round := fund.nextRound
	fund.nextRound++
	ms.positions[key] = balance.Sub(share)
	ms.claims[key] = append(ms.claims[key], &types.PendingClaim{
		FundID:       req.FundID,
		Investor:     req.Investor,
		Round:        round,
		PendingShare: share.String(),
		QueuedAt:     nowMillis(),
	})
	fund.info.State = "pending"

	return &types.RedeemResponse{
		FundID:       req.FundID,
		Investor:     req.Investor,
		Paid:         "0",
		PendingShare: share.String(),
		PendingRound: round,
		State:        fund.info.State,
	}, nil
}

func (ms *MockService) ClaimPending(ctx context.Context, req *types.ClaimRequest) (*types.ClaimResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.funds[req.FundID]; !ok {
		return nil, fmt.Errorf("fund %s not found", req.FundID)
	}

	key := positionKey(req.FundID, req.Investor)
	total := math.LegacyZeroDec()
	remaining := make([]*types.PendingClaim, 0)
	for _, c := range ms.claims[key] {
		if !c.Resolved {
			remaining = append(remaining, c)
			continue
		}
		claimable, err := math.LegacyNewDecFromStr(c.Claimable)
		if err != nil {
			continue
		}
		total = total.Add(claimable)
	}
	if total.IsZero() {
		return nil, fmt.Errorf("nothing to claim")
	}
	ms.claims[key] = remaining

	return &types.ClaimResponse{
		FundID:   req.FundID,
		Investor: req.Investor,
		Paid:     total.String(),
	}, nil
}

func (ms *MockService) recordPricePoint(fundID string, fund *mockFund) {
	tree := ms.history[fundID]
	if tree == nil {
		tree = btree.NewG(8, pricePointLess)
		ms.history[fundID] = tree
	}
	ts := nowMillis()
	ms.seq++
	tree.ReplaceOrInsert(&pricePoint{
		ts:  ts,
		seq: ms.seq,
		point: &types.SharePricePoint{
			FundID:     fundID,
			SharePrice: fund.sharePrice().String(),
			GrossValue: fund.grossValue.String(),
			TotalShare: fund.totalShare.String(),
			Timestamp:  ts,
		},
	})
	for tree.Len() > maxHistoryPoints {
		tree.DeleteMin()
	}
}
