package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/pawnshop-engine/internal/config"
	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	"github.com/tdnguyen/pawnshop-engine/internal/engine"
	"github.com/tdnguyen/pawnshop-engine/internal/repository"
	"github.com/tdnguyen/pawnshop-engine/pkg/dateutil"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

// defaultEstimateFactor prices collateral at 1.5x the loan when no estimate
// is supplied.
var defaultEstimateFactor = decimal.NewFromFloat(1.5)

type ContractService struct {
	contractRepo repository.ContractRepository
	paymentRepo  repository.PaymentRepository
	redis        *redis.Client
	config       *config.Config
}

func NewContractService(
	contractRepo repository.ContractRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		redis:        redisClient,
		config:       cfg,
	}
}

// CreateContract originates a new pawn loan. Interest terms and duration
// fall back to the shop's standing defaults when omitted.
func (s *ContractService) CreateContract(ctx context.Context, request *domain.CreateContractRequest) (*domain.Contract, error) {
	contractID := request.ContractID
	if contractID == "" {
		contractID = fmt.Sprintf("HD-%04d", 1000+rand.Intn(9000))
	}

	existing, err := s.contractRepo.GetByContractID(ctx, contractID)
	if err == nil && existing != nil {
		return nil, customError.WrapContractAlreadyExists(contractID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	startDate := dateutil.Truncate(time.Now())
	if request.StartDate != "" {
		startDate, err = time.Parse(domain.DateFormat, request.StartDate)
		if err != nil {
			return nil, customError.NewBusinessError(
				customError.ErrCodeMalformedRecord,
				fmt.Sprintf("invalid start_date %q, want YYYY-MM-DD", request.StartDate),
				err,
			)
		}
	}

	termDays := request.DurationDays
	if termDays <= 0 {
		termDays = s.defaultTermDays()
	}

	interestType := request.InterestType
	if interestType == "" {
		interestType = s.defaultInterestType()
	}

	rate := decimal.NewFromFloat(request.InterestRate)
	if rate.IsZero() && s.config != nil {
		rate = s.config.GetDefaultInterestRate()
	}

	loanAmount := decimal.NewFromInt(request.LoanAmount)
	estimatedValue := decimal.NewFromInt(request.EstimatedValue)
	if estimatedValue.IsZero() {
		estimatedValue = loanAmount.Mul(defaultEstimateFactor)
	}

	now := time.Now()
	contract := &domain.Contract{
		ID:               uuid.New(),
		ContractID:       contractID,
		CustomerName:     request.CustomerName,
		CustomerPhone:    request.CustomerPhone,
		CustomerIDCard:   request.CustomerIDCard,
		DeviceBrand:      request.DeviceBrand,
		DeviceModel:      request.DeviceModel,
		DeviceIMEI:       request.DeviceIMEI,
		DeviceCondition:  request.DeviceCondition,
		EstimatedValue:   estimatedValue,
		LoanAmount:       loanAmount,
		InterestRate:     rate,
		InterestType:     interestType,
		StartDate:        startDate,
		DueDate:          dateutil.AddDays(startDate, termDays),
		Status:           domain.ContractStatusActive,
		ResidualInterest: decimal.Zero,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := contract.Validate(); err != nil {
		return nil, customError.WrapMalformedRecord(contractID, err)
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return contract, nil
}

// GetContract returns a contract with its ledger and the time-derived view
// (effective status, days overdue, interest owed as of the reference date).
func (s *ContractService) GetContract(ctx context.Context, contractID string, today time.Time) (*domain.ContractResponse, error) {
	today = s.resolveToday(today)

	contract := s.cachedContract(ctx, contractID)
	if contract == nil {
		var err error
		contract, err = s.loadContractWithLedger(ctx, contractID)
		if err != nil {
			return nil, err
		}
		s.cacheContract(ctx, contract)
	}

	return s.decorate(contract, today), nil
}

// ListContracts returns all contracts with their derived views, newest first.
func (s *ContractService) ListContracts(ctx context.Context, today time.Time) ([]*domain.ContractResponse, error) {
	today = s.resolveToday(today)

	contracts, err := s.contractRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	responses := make([]*domain.ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		responses = append(responses, s.decorate(c, today))
	}
	return responses, nil
}

// UpdateContract is the full-field edit. The payment ledger, residual and
// paid-through date survive the edit untouched.
func (s *ContractService) UpdateContract(ctx context.Context, contractID string, request *domain.UpdateContractRequest) (*domain.Contract, error) {
	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	startDate, err := time.Parse(domain.DateFormat, request.StartDate)
	if err != nil {
		return nil, customError.WrapMalformedRecord(contractID, err)
	}
	dueDate, err := time.Parse(domain.DateFormat, request.DueDate)
	if err != nil {
		return nil, customError.WrapMalformedRecord(contractID, err)
	}

	contract.CustomerName = request.CustomerName
	contract.CustomerPhone = request.CustomerPhone
	contract.CustomerIDCard = request.CustomerIDCard
	contract.DeviceBrand = request.DeviceBrand
	contract.DeviceModel = request.DeviceModel
	contract.DeviceIMEI = request.DeviceIMEI
	contract.DeviceCondition = request.DeviceCondition
	contract.EstimatedValue = decimal.NewFromInt(request.EstimatedValue)
	contract.LoanAmount = decimal.NewFromInt(request.LoanAmount)
	contract.InterestRate = decimal.NewFromFloat(request.InterestRate)
	contract.InterestType = request.InterestType
	contract.StartDate = startDate
	contract.DueDate = dueDate
	contract.NoPaper = request.NoPaper
	contract.Notes = request.Notes

	if err := contract.Validate(); err != nil {
		return nil, customError.WrapMalformedRecord(contractID, err)
	}

	if err := s.persist(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// DeleteContract removes a contract permanently. No tombstone is kept; the
// payment ledger cascades with it.
func (s *ContractService) DeleteContract(ctx context.Context, contractID string) error {
	if err := s.contractRepo.Delete(ctx, contractID); err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return err
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidateContract(ctx, contractID)
	s.invalidateDashboard(ctx)
	return nil
}

// SettleInterest applies an interest payment, extending the due date by the
// whole days it covers and carrying the sub-day remainder forward.
func (s *ContractService) SettleInterest(ctx context.Context, contractID string, request *domain.SettleInterestRequest) (*domain.SettlementResponse, error) {
	today, err := s.parseToday(request.Today)
	if err != nil {
		return nil, err
	}

	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	updated, payment, result, err := engine.SettleInterest(*contract, decimal.NewFromInt(request.Amount), today)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, &updated); err != nil {
		return nil, err
	}

	// Ledger append happens after the CAS update so a conflicting writer
	// aborts before any money is recorded. The two writes are not atomic;
	// a transaction across both would close that window.
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.SettlementResponse{
		ContractID:    contractID,
		ExtensionDays: result.ExtensionDays,
		NewDueDate:    result.NewDueDate.Format(domain.DateFormat),
		NewResidual:   result.NewResidual,
		PaidThrough:   result.PaidThrough.Format(domain.DateFormat),
	}, nil
}

// AdjustPrincipal applies a principal top-up or reduction and records it in
// the ledger.
func (s *ContractService) AdjustPrincipal(ctx context.Context, contractID string, request *domain.AdjustPrincipalRequest) (*domain.ContractResponse, error) {
	today, err := s.parseToday(request.Today)
	if err != nil {
		return nil, err
	}

	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	updated, payment, err := engine.AdjustPrincipal(*contract, decimal.NewFromInt(request.Amount), request.Direction, request.Note, today)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, &updated); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.decorate(&updated, today), nil
}

// GetPayoff quotes the total to reclaim the collateral as of the reference
// date: principal plus accrued interest.
func (s *ContractService) GetPayoff(ctx context.Context, contractID string, today time.Time) (*domain.PayoffResponse, error) {
	today = s.resolveToday(today)

	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	owed := engine.InterestOwed(*contract, today)
	return &domain.PayoffResponse{
		ContractID:   contractID,
		LoanAmount:   contract.LoanAmount,
		InterestOwed: owed,
		Payoff:       contract.LoanAmount.Add(owed),
		AsOf:         dateutil.Truncate(today).Format(domain.DateFormat),
	}, nil
}

// Redeem marks the contract redeemed after the customer pays off principal
// plus accrued interest.
func (s *ContractService) Redeem(ctx context.Context, contractID string) (*domain.Contract, error) {
	return s.transition(ctx, contractID, engine.Redeem)
}

// Liquidate writes the contract off; the collateral is forfeited.
func (s *ContractService) Liquidate(ctx context.Context, contractID string) (*domain.Contract, error) {
	return s.transition(ctx, contractID, engine.Liquidate)
}

func (s *ContractService) transition(ctx context.Context, contractID string, apply func(domain.Contract) (domain.Contract, error)) (*domain.Contract, error) {
	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	updated, err := apply(*contract)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Dashboard aggregates the shop-level view: active and derived-overdue
// counts, total principal out on active contracts, redeemed count.
func (s *ContractService) Dashboard(ctx context.Context, today time.Time) (*domain.DashboardResponse, error) {
	today = s.resolveToday(today)
	asOf := dateutil.Truncate(today).Format(domain.DateFormat)

	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var cached domain.DashboardResponse
			if json.Unmarshal([]byte(raw), &cached) == nil && cached.AsOf == asOf {
				return &cached, nil
			}
		}
	}

	stats, err := s.computeDashboard(ctx, today)
	if err != nil {
		return nil, err
	}

	s.cacheDashboard(ctx, stats)
	return stats, nil
}

// SnapshotDashboard recomputes the dashboard aggregates and stores them in
// redis. The scheduler runs this daily so the derived overdue count rolls
// over at midnight without ever being written back to contract rows.
func (s *ContractService) SnapshotDashboard(ctx context.Context) (*domain.DashboardResponse, error) {
	stats, err := s.computeDashboard(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	s.cacheDashboard(ctx, stats)
	return stats, nil
}

func (s *ContractService) computeDashboard(ctx context.Context, today time.Time) (*domain.DashboardResponse, error) {
	contracts, err := s.contractRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats := &domain.DashboardResponse{
		TotalLoaned: decimal.Zero,
		AsOf:        dateutil.Truncate(today).Format(domain.DateFormat),
	}
	for _, c := range contracts {
		switch c.Status {
		case domain.ContractStatusActive:
			stats.ActiveCount++
			stats.TotalLoaned = stats.TotalLoaned.Add(c.LoanAmount)
			if engine.EffectiveStatus(*c, today) == domain.ContractStatusOverdue {
				stats.OverdueCount++
			}
		case domain.ContractStatusRedeemed:
			stats.RedeemedCount++
		}
	}
	return stats, nil
}

func (s *ContractService) decorate(contract *domain.Contract, today time.Time) *domain.ContractResponse {
	return &domain.ContractResponse{
		Contract:        contract,
		EffectiveStatus: engine.EffectiveStatus(*contract, today),
		DaysOverdue:     engine.DaysOverdue(*contract, today),
		DailyAccrual:    engine.DailyAccrual(*contract),
		InterestOwed:    engine.InterestOwed(*contract, today),
	}
}

// loadContract reads the authoritative row, bypassing the cache. Mutating
// paths always start here so the CAS token is fresh.
func (s *ContractService) loadContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByContractID(ctx, contractID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapContractNotFound(contractID)
		}
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return contract, nil
}

func (s *ContractService) loadContractWithLedger(ctx context.Context, contractID string) (*domain.Contract, error) {
	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByContractID(ctx, contractID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	contract.Payments = payments
	return contract, nil
}

// persist runs the CAS update against the version the contract was read at,
// then drops stale cache entries.
func (s *ContractService) persist(ctx context.Context, contract *domain.Contract) error {
	expectedVersion := contract.Version
	contract.UpdatedAt = time.Now()

	if err := s.contractRepo.Update(ctx, contract, expectedVersion); err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return err
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidateContract(ctx, contract.ContractID)
	s.invalidateDashboard(ctx)
	return nil
}

// Cache helpers. All best effort: a dead redis degrades reads to the
// database, it never fails a request.

func contractCacheKey(contractID string) string {
	return "contract:" + contractID
}

func (s *ContractService) cachedContract(ctx context.Context, contractID string) *domain.Contract {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, contractCacheKey(contractID)).Result()
	if err != nil {
		return nil
	}

	var contract domain.Contract
	if err := json.Unmarshal([]byte(raw), &contract); err != nil {
		return nil
	}
	return &contract
}

func (s *ContractService) cacheContract(ctx context.Context, contract *domain.Contract) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(contract)
	if err != nil {
		return
	}
	s.redis.Set(ctx, contractCacheKey(contract.ContractID), raw, s.cacheTTL())
}

func (s *ContractService) invalidateContract(ctx context.Context, contractID string) {
	if s.redis != nil {
		s.redis.Del(ctx, contractCacheKey(contractID))
	}
}

func (s *ContractService) cacheDashboard(ctx context.Context, stats *domain.DashboardResponse) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	s.redis.Set(ctx, dashboardCacheKey, raw, 26*time.Hour)
}

func (s *ContractService) invalidateDashboard(ctx context.Context) {
	if s.redis != nil {
		s.redis.Del(ctx, dashboardCacheKey)
	}
}

func (s *ContractService) resolveToday(today time.Time) time.Time {
	if today.IsZero() {
		return time.Now()
	}
	return today
}

func (s *ContractService) parseToday(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	today, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return time.Time{}, customError.NewBusinessError(
			customError.ErrCodeMalformedRecord,
			fmt.Sprintf("invalid date %q, want YYYY-MM-DD", value),
			err,
		)
	}
	return today, nil
}

func (s *ContractService) defaultTermDays() int {
	if s.config != nil && s.config.Business.DefaultTermDays > 0 {
		return s.config.Business.DefaultTermDays
	}
	return 30
}

func (s *ContractService) defaultInterestType() string {
	if s.config != nil && s.config.Business.DefaultInterestType != "" {
		return s.config.Business.DefaultInterestType
	}
	return domain.InterestPerDayPerMillion
}

func (s *ContractService) cacheTTL() time.Duration {
	if s.config != nil && s.config.Business.CacheTTL > 0 {
		return s.config.Business.CacheTTL
	}
	return 24 * time.Hour
}
