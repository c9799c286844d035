package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/store"
)

// createProtocol registers a new submission for the requesting proponent.
func (s *Server) createProtocol(c *gin.Context) {
	requester := c.GetString("requester")

	var params struct {
		Title      string `json:"title" binding:"required"`
		DocumentID string `json:"document_id"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	protocol, err := s.reviewStore.CreateProtocol(params.Title, requester, params.DocumentID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"protocol": protocol})
}

func (s *Server) listProtocols(c *gin.Context) {
	requester := c.GetString("requester")
	role := c.MustGet("requesterRole").(schema.ReviewerRole)

	var params struct {
		Status string `form:"status"`
		Limit  int64  `form:"limit"`
	}
	if err := c.BindQuery(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	filter := store.ProtocolFilter{
		Status: schema.ProtocolStatus(params.Status),
		Limit:  params.Limit,
	}
	// proponents see their own submissions, reviewers their assignments, the
	// chairperson everything
	switch role {
	case schema.RoleProponent:
		filter.SubmittedBy = requester
	case schema.RoleReviewer:
		filter.AssignedTo = requester
	}

	protocols, err := s.reviewStore.ListProtocols(filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"protocols": protocols})
}

func (s *Server) protocolDetail(c *gin.Context) {
	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	protocol, err := s.reviewStore.GetProtocol(protocolID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"protocol": protocol})
}

// transition wraps the shared read-validate-move path of the single-step
// status endpoints.
func (s *Server) transition(c *gin.Context, next schema.ProtocolStatus) {
	role := c.MustGet("requesterRole").(schema.ReviewerRole)

	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	protocol, err := s.reviewStore.TransitionProtocol(protocolID, next, role)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"protocol": protocol})
}

func (s *Server) submitProtocol(c *gin.Context) {
	s.transition(c, schema.StatusSubmitted)
}

func (s *Server) resubmitProtocol(c *gin.Context) {
	s.transition(c, schema.StatusResubmitted)
}

// screenResubmission moves a resubmitted protocol back under review, opening
// a new review cycle.
func (s *Server) screenResubmission(c *gin.Context) {
	s.transition(c, schema.StatusUnderReview)
}

func (s *Server) archiveProtocol(c *gin.Context) {
	s.transition(c, schema.StatusArchived)
}

func (s *Server) assignReviewers(c *gin.Context) {
	role := c.MustGet("requesterRole").(schema.ReviewerRole)

	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	var params struct {
		ReviewerIDs  []string `json:"reviewer_ids" binding:"required"`
		DeadlineDays int      `json:"deadline_days"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}
	if params.DeadlineDays <= 0 {
		params.DeadlineDays = 30
	}

	deadline := time.Now().UTC().AddDate(0, 0, params.DeadlineDays)
	protocol, err := s.reviewStore.AssignReviewers(protocolID, params.ReviewerIDs, deadline, role)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"protocol": protocol})
}
