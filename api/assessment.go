package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
)

func (s *Server) createAssessment(c *gin.Context) {
	requester := c.GetString("requester")

	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	var params struct {
		Scores  []schema.AssessmentScore `json:"scores" binding:"required"`
		Comment string                   `json:"comment"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	assessment, err := s.reviewStore.CreateAssessment(schema.Assessment{
		ProtocolID: protocolID,
		AuthorID:   requester,
		Scores:     params.Scores,
		Comment:    params.Comment,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

func (s *Server) listAssessments(c *gin.Context) {
	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	assessments, err := s.reviewStore.ListAssessments(protocolID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}
