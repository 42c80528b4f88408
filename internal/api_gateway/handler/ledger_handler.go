package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// IdempotencyKeyHeader carries the client-chosen key of a write request
const IdempotencyKeyHeader = "Idempotency-Key"

// LedgerHandler handles HTTP requests that record and list ledger activity
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// idempotencyKey prefers the body field and falls back to the header
func idempotencyKey(c *gin.Context, fromBody string) string {
	if key := strings.TrimSpace(fromBody); key != "" {
		return key
	}
	return strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
}

func respondRecorded(c *gin.Context, conf *service.Confirmation, isRequest bool) {
	if conf.Replayed {
		c.Header(ReplayedHeader, "true")
	}
	resp := RecordedResponse{Success: true, Message: conf.Message}
	if isRequest {
		resp.RequestID = conf.ID
	} else {
		resp.TransactionID = conf.ID
	}
	RespondOK(c, resp)
}

// SendMoney handles POST /send-money
func (h *LedgerHandler) SendMoney(c *gin.Context) {
	var req SendMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	conf, err := h.ledgerService.RecordTransfer(c.Request.Context(), service.TransferIntent{
		Recipient:      req.Recipient,
		Amount:         req.Amount,
		Description:    req.Description,
		SenderName:     req.SenderName,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	respondRecorded(c, conf, false)
}

// RequestMoney handles POST /request-money
func (h *LedgerHandler) RequestMoney(c *gin.Context) {
	var req RequestMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	conf, err := h.ledgerService.RecordRequest(c.Request.Context(), service.RequestIntent{
		From:           req.From,
		Amount:         req.Amount,
		Description:    req.Description,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	respondRecorded(c, conf, true)
}

// PayBills handles POST /pay-bills
func (h *LedgerHandler) PayBills(c *gin.Context) {
	var req PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	conf, err := h.ledgerService.RecordBillPayment(c.Request.Context(), service.BillPaymentIntent{
		BillType:       req.BillType,
		Provider:       req.Provider,
		Amount:         req.Amount,
		AccountNumber:  req.AccountNumber,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	respondRecorded(c, conf, false)
}

// ListTransactions handles GET /transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	records, err := h.ledgerService.ListRecent(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, TransactionListResponse{Transactions: mapRecordsToResponse(records)})
}

// GetTransaction handles GET /transactions/:id
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		RespondBadRequest(c, "Transaction ID is required")
		return
	}

	rec, err := h.ledgerService.GetRecord(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, TransactionDetailResponse{Transaction: mapRecordToResponse(*rec)})
}

// ListRequests handles GET /requests
func (h *LedgerHandler) ListRequests(c *gin.Context) {
	records, err := h.ledgerService.ListPendingRequests(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, RequestListResponse{Requests: mapRecordsToResponse(records)})
}

// BillTypes handles GET /bill-types
func (h *LedgerHandler) BillTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"billTypes": shared.BillTypes})
}
