package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/bidding"
	"food-marketplace/ledger"
	"food-marketplace/orders"
	"food-marketplace/payments"
	"food-marketplace/ratings"
	"food-marketplace/reputation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Handler holds the services the HTTP endpoints call into.
type Handler struct {
	DB         *gorm.DB
	Accounts   *accounts.Service
	Ledger     *ledger.Service
	Orders     *orders.Service
	Bidding    *bidding.Service
	Reputation *reputation.Service
	Ratings    *ratings.Service
	Payments   *payments.Service
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindAuthorization:     http.StatusForbidden,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInsufficientFunds: http.StatusPaymentRequired,
	apperr.KindInvalidTransition: http.StatusUnprocessableEntity,
	apperr.KindExternalService:   http.StatusBadGateway,
}

// respondError maps a service error onto a status code. Internal failures are
// logged and reported generically.
func respondError(c *gin.Context, err error) {
	var funds *apperr.InsufficientFunds
	if errors.As(err, &funds) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":           funds.Error(),
			"current_balance": funds.CurrentBalance.StringFixed(2),
			"order_total":     funds.OrderTotal.StringFixed(2),
			"warning_issued":  funds.WarningIssued,
			"warnings_count":  funds.WarningsCount,
			"blacklisted":     funds.Blacklisted,
		})
		return
	}

	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("handlers: internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// paramID parses a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
