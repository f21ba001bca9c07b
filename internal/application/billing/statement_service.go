package billing

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/infrastructure/cache"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatementService builds customer statements by reconciling every
// invoice and payment for the customer. The reconciliation itself is a
// pure function; this service adds the data fetch and a read-through
// cache in front of it.
type StatementService struct {
	invoiceRepo    billing.InvoiceRepository
	paymentRepo    billing.PaymentRepository
	customerRepo   partner.CustomerRepository
	statementCache cache.StatementCache
	cfg            config.StatementConfig
	logger         *zap.Logger
}

// NewStatementService creates a new StatementService
func NewStatementService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	customerRepo partner.CustomerRepository,
	statementCache cache.StatementCache,
	cfg config.StatementConfig,
	logger *zap.Logger,
) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		customerRepo:   customerRepo,
		statementCache: statementCache,
		cfg:            cfg,
		logger:         logger,
	}
}

// Generate returns the statement of account for a customer. The same
// set of invoices and payments always reconciles to the same statement,
// whatever order the store returned them in.
func (s *StatementService) Generate(ctx context.Context, tenantID, customerID uuid.UUID) (*StatementResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		cached, err := s.statementCache.Get(ctx, tenantID, customerID)
		if err != nil {
			s.logger.Warn("statement cache read failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		} else if cached != nil {
			response := ToStatementResponse(cached, customer.Name, true)
			return &response, nil
		}
	}

	invoices, err := s.invoiceRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	statement := billing.BuildStatement(customerID, invoices, payments)

	// An inconsistent ledger is reported, never papered over: the
	// statement goes out with the real figures and the cache is skipped.
	consistent := true
	if err := statement.Validate(); err != nil {
		consistent = false
		s.logger.Error("statement failed consistency check",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("closing_balance", statement.ClosingBalance.String()),
			zap.Error(err),
		)
	}

	if consistent && s.cacheEnabled() {
		if err := s.statementCache.Set(ctx, tenantID, customerID, statement, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("statement cache write failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		}
	}

	response := ToStatementResponse(statement, customer.Name, false)
	return &response, nil
}

func (s *StatementService) cacheEnabled() bool {
	return s.cfg.CacheEnabled && s.statementCache != nil
}
