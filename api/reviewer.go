package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelop-1602/rec-review-api/schema"
)

func (s *Server) createReviewer(c *gin.Context) {
	var params struct {
		ID   string `json:"id" binding:"required"`
		Name string `json:"name" binding:"required"`
		Role string `json:"role" binding:"required"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	reviewer, err := s.reviewStore.CreateReviewer(schema.Reviewer{
		ID:   params.ID,
		Name: params.Name,
		Role: schema.ReviewerRole(params.Role),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewer": reviewer})
}

func (s *Server) listReviewers(c *gin.Context) {
	reviewers, err := s.reviewStore.ListActiveReviewers()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewers": reviewers})
}

func (s *Server) deactivateReviewer(c *gin.Context) {
	if err := s.reviewStore.DeactivateReviewer(c.Param("reviewerID")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// currentChairperson reports the active chairperson's display name, falling
// back to a placeholder label when none is configured.
func (s *Server) currentChairperson(c *gin.Context) {
	name := s.reviewStore.CurrentChairpersonName(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, gin.H{"chairperson": name})
}
