package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"github.com/angelop-1602/rec-review-api/review"
	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/store"
	"github.com/angelop-1602/rec-review-api/watch"
)

var log = logrus.WithField("prefix", "api")

type Server struct {
	server *http.Server

	reviewStore store.ReviewStore
	cards       *review.CardService
	hub         *watch.Hub

	traceMode bool
}

func NewServer(reviewStore store.ReviewStore, cards *review.CardService, hub *watch.Hub) *Server {
	return &Server{
		reviewStore: reviewStore,
		cards:       cards,
		hub:         hub,
	}
}

// SetTraceMode enables request dumping for debugging.
func (s *Server) SetTraceMode(trace bool) {
	s.traceMode = trace
}

func (s *Server) Run(addr string) error {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.DumpRequest)

	s.setupRouter(r)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRouter(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.Use(s.recognizeRequester())

	protocols := v1.Group("/protocols")
	{
		protocols.POST("", s.requireRoles(schema.RoleProponent), s.createProtocol)
		protocols.GET("", s.listProtocols)
		protocols.GET("/:protocolID", s.protocolDetail)
		protocols.POST("/:protocolID/submit", s.requireRoles(schema.RoleProponent), s.submitProtocol)
		protocols.POST("/:protocolID/resubmit", s.requireRoles(schema.RoleProponent), s.resubmitProtocol)
		protocols.POST("/:protocolID/reviewers", s.requireRoles(schema.RoleChairperson), s.assignReviewers)
		protocols.POST("/:protocolID/screen", s.requireRoles(schema.RoleChairperson), s.screenResubmission)
		protocols.POST("/:protocolID/archive", s.requireRoles(schema.RoleChairperson), s.archiveProtocol)

		protocols.GET("/:protocolID/decisions/:collection", s.decisionCard)
		protocols.POST("/:protocolID/decisions/:collection", s.submitDecision)

		protocols.POST("/:protocolID/assessments", s.requireRoles(schema.RoleReviewer, schema.RoleChairperson), s.createAssessment)
		protocols.GET("/:protocolID/assessments", s.listAssessments)

		protocols.GET("/:protocolID/stream", s.streamProtocol)
	}

	reviewers := v1.Group("/reviewers")
	{
		reviewers.POST("", s.requireRoles(schema.RoleChairperson), s.createReviewer)
		reviewers.GET("", s.listReviewers)
		reviewers.DELETE("/:reviewerID", s.requireRoles(schema.RoleChairperson), s.deactivateReviewer)
	}

	v1.GET("/chairperson", s.currentChairperson)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// recognizeRequester trusts the identity pair supplied by the session
// boundary in front of this service. Authorization checks downstream are
// performed against this pair independently.
func (s *Server) recognizeRequester() gin.HandlerFunc {
	return func(c *gin.Context) {
		requester := c.GetHeader("X-Requester")
		role := schema.ReviewerRole(c.GetHeader("X-Requester-Role"))

		if requester == "" || !role.Valid() || role == schema.RoleSystem {
			abortWithEncoding(c, http.StatusUnauthorized, errorUnknownRequester)
			return
		}

		c.Set("requester", requester)
		c.Set("requesterRole", role)
		c.Next()
	}
}

func (s *Server) requireRoles(roles ...schema.ReviewerRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.MustGet("requesterRole").(schema.ReviewerRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abortWithEncoding(c, http.StatusForbidden, errorUnauthorizedAuthor)
	}
}
