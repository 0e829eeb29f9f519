package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var (
		validation   *errors.ErrValidation
		notFound     *errors.ErrNotFound
		transition   *errors.ErrInvalidStateTransition
		reference    *errors.ErrInvalidReference
		duplicate    *errors.ErrDuplicateTrackingNumber
		conflict     *errors.ErrConflict
		authRequired *errors.ErrAuthenticationRequired
		unauthorized *errors.ErrUnauthorized
		unavailable  *errors.ErrPersistenceUnavailable
	)

	switch {
	case stderrors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validation.Error(), "fields": validation.Fields})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case stderrors.As(err, &transition):
		status := http.StatusBadRequest
		if transition.Rule == domain.RuleConcurrentUpdate {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error": transition.Error(),
			"rule":  transition.Rule,
			"from":  transition.From,
			"to":    transition.To,
		})
	case stderrors.As(err, &reference):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": reference.Error(), "field": reference.Field})
	case stderrors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{"error": duplicate.Error()})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case stderrors.As(err, &authRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authRequired.Error()})
	case stderrors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	case stderrors.As(err, &unavailable):
		logger.Error("Storage unavailable", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry later"})
	default:
		logger.Error("Request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseID reads a uuid path parameter, writing a 400 when it is malformed
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
