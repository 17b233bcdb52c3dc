package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/elemahana/farm-api/internal/apperr"
	"github.com/elemahana/farm-api/internal/domain"
)

// Feedback is the representative email-owned resource: submissions may come
// from visitors without an account, so the ownership gates correlate by the
// recorded email instead of a user reference.

type feedbackReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
}

func (in *feedbackReq) validate() error {
	if in.Name == "" || in.Email == "" || in.Feedback == "" || in.Rating == 0 {
		return apperr.Validation("All required fields must be provided: name, email, feedback, rating")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return apperr.Validation("Rating must be between 1 and 5")
	}
	return nil
}

func (h *Handler) CreateFeedback(c *gin.Context) {
	var in feedbackReq
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, apperr.Validation("invalid json").WithCause(err))
		return
	}
	if err := in.validate(); err != nil {
		Fail(c, err)
		return
	}
	rec := domain.Feedback{
		Name:      in.Name,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Feedback:  in.Feedback,
		Rating:    in.Rating,
		CreatedAt: time.Now().UTC(),
	}
	id, err := h.Store.InsertResource(c.Request.Context(), domain.CollFeedback, rec)
	if err != nil {
		Fail(c, err)
		return
	}
	rec.ID = id
	Success(c, http.StatusCreated, rec)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	var recs []domain.Feedback
	if err := h.Store.ListResources(c.Request.Context(), domain.CollFeedback, ListFilter(c), &recs); err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"count": len(recs), "data": recs})
}

func (h *Handler) GetFeedback(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Fail(c, apperr.Validation("Invalid ID format"))
		return
	}
	doc, err := h.Store.FindResourceByID(c.Request.Context(), domain.CollFeedback, id)
	if err != nil {
		Fail(c, err)
		return
	}
	if doc == nil {
		Fail(c, apperr.NotFound("Feedback"))
		return
	}
	Success(c, http.StatusOK, doc)
}

func (h *Handler) UpdateFeedback(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Fail(c, apperr.Validation("Invalid ID format"))
		return
	}
	var in feedbackReq
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, apperr.Validation("invalid json").WithCause(err))
		return
	}
	if err := in.validate(); err != nil {
		Fail(c, err)
		return
	}
	// the recorded email is what the ownership gate keys on, so it is not updatable
	fields := bson.M{"name": in.Name, "feedback": in.Feedback, "rating": in.Rating}
	matched, err := h.Store.UpdateResourceByID(c.Request.Context(), domain.CollFeedback, id, fields)
	if err != nil {
		Fail(c, err)
		return
	}
	if !matched {
		Fail(c, apperr.NotFound("Feedback"))
		return
	}
	Success(c, http.StatusOK, gin.H{"message": "Feedback updated successfully"})
}

func (h *Handler) DeleteFeedback(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Fail(c, apperr.Validation("Invalid ID format"))
		return
	}
	deleted, err := h.Store.DeleteResourceByID(c.Request.Context(), domain.CollFeedback, id)
	if err != nil {
		Fail(c, err)
		return
	}
	if !deleted {
		Fail(c, apperr.NotFound("Feedback"))
		return
	}
	Success(c, http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
