package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
)

// decisionCard renders the shared decision card. The same handler serves all
// three roles; the viewer's role is carried explicitly into the façade.
func (s *Server) decisionCard(c *gin.Context) {
	requester := c.GetString("requester")
	role := c.MustGet("requesterRole").(schema.ReviewerRole)

	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	collection := schema.DecisionCollection(c.Param("collection"))
	card, err := s.cards.Card(protocolID, collection, requester, role)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

func (s *Server) submitDecision(c *gin.Context) {
	requester := c.GetString("requester")
	role := c.MustGet("requesterRole").(schema.ReviewerRole)

	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	var params struct {
		Verdict string `json:"verdict" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	collection := schema.DecisionCollection(c.Param("collection"))
	decision, err := s.cards.Submit(protocolID, collection, requester, role, schema.Verdict(params.Verdict), params.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"decision": decision})
}
