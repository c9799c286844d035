package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/angelop-1602/rec-review-api/lifecycle"
	"github.com/angelop-1602/rec-review-api/store"
	"github.com/angelop-1602/rec-review-api/utils"
)

// errorResponse carries a stable, enumerable reason code plus a localizable
// message id. Clients dispatch on the code, never on message text.
type errorResponse struct {
	Code      int    `json:"code"`
	MessageID string `json:"-"`
	Message   string `json:"message"`
}

var (
	errorInternalServer     = errorResponse{Code: 1000, MessageID: "error.internal"}
	errorInvalidParameters  = errorResponse{Code: 1001, MessageID: "error.invalid_parameters"}
	errorUnknownRequester   = errorResponse{Code: 1002, MessageID: "error.unknown_requester"}
	errorNotFound           = errorResponse{Code: 1004, MessageID: "error.not_found"}
	errorReviewerTaken      = errorResponse{Code: 1005, MessageID: "error.reviewer_taken"}
	errorValidation         = errorResponse{Code: 1100, MessageID: "error.validation"}
	errorInvalidTransition  = errorResponse{Code: 1101, MessageID: "error.invalid_transition"}
	errorDecisionNotAllowed = errorResponse{Code: 1102, MessageID: "error.decision_not_allowed"}
	errorUnauthorizedAuthor = errorResponse{Code: 1103, MessageID: "error.unauthorized_author"}
)

func abortWithEncoding(c *gin.Context, status int, resp errorResponse, errs ...error) {
	for _, err := range errs {
		log.WithFields(logrus.Fields{
			"status": status,
			"code":   resp.Code,
			"path":   c.Request.URL.Path,
		}).WithError(err).Warn("request aborted")
		c.Error(err)
	}

	resp.Message = utils.Localize(c.GetHeader("Accept-Language"), resp.MessageID)
	c.AbortWithStatusJSON(status, gin.H{"error": resp})
}

// abortWithError is the single mapping from the store's error taxonomy to
// wire codes, shared by every handler.
func abortWithError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *store.ValidationError:
		resp := errorValidation
		resp.Message = utils.Localize(c.GetHeader("Accept-Language"), resp.MessageID)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  resp,
			"fields": e.Fields,
		})
		return
	case *lifecycle.InvalidTransitionError:
		resp := errorInvalidTransition
		resp.Message = utils.Localize(c.GetHeader("Accept-Language"), resp.MessageID)
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error": resp,
			"transition": gin.H{
				"from": e.From,
				"next": e.Next,
				"role": e.Role,
			},
		})
		return
	}

	switch err {
	case store.ErrProtocolNotFound, store.ErrReviewerNotFound:
		abortWithEncoding(c, http.StatusNotFound, errorNotFound, err)
	case store.ErrReviewerTaken:
		abortWithEncoding(c, http.StatusConflict, errorReviewerTaken, err)
	case store.ErrDecisionNotAllowed:
		abortWithEncoding(c, http.StatusConflict, errorDecisionNotAllowed, err)
	case store.ErrUnauthorizedAuthor:
		abortWithEncoding(c, http.StatusForbidden, errorUnauthorizedAuthor, err)
	case store.ErrProtocolNotUpdated:
		abortWithEncoding(c, http.StatusConflict, errorInvalidTransition, err)
	default:
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
	}
}
