package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moodtunes/moodtunes-backend/engagement"
	"github.com/moodtunes/moodtunes-backend/gamify"
	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/recommender"
	"github.com/moodtunes/moodtunes-backend/server/middlewares"
	"github.com/moodtunes/moodtunes-backend/utils"
	log "github.com/moodtunes/moodtunes-backend/utils/log"
)

// Handlers is the thin HTTP boundary over the orchestrator and the
// engagement store. It translates request payloads to store calls and typed
// errors to status codes, nothing more.
type Handlers struct {
	Store        *engagement.Store
	Orchestrator *recommender.Orchestrator
}

// RegisterRoutes wires all API routes onto the engine. Every route except
// the badge catalog requires a bearer token.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, h *Handlers) {
	api := r.Group("/api")
	api.GET("/badges", h.ListBadges)

	authed := api.Group("")
	authed.Use(middlewares.Auth(db))
	authed.POST("/moods/analyze", h.AnalyzeMood)
	authed.POST("/moods/save", h.SaveEntry)
	authed.POST("/moods/:id/share", h.ShareEntry)
	authed.POST("/moods/:id/like", h.ToggleLike)
	authed.POST("/moods/:id/comments", h.AddComment)
	authed.GET("/feed", h.GetFeed)
	authed.GET("/users/:id/moods", h.GetProfile)
	authed.POST("/users/follow/:id", h.Follow)
	authed.POST("/users/unfollow/:id", h.Unfollow)
}

type analyzeRequest struct {
	UserInput string `json:"userInput"`
}

func (h *Handlers) AnalyzeMood(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &utils.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	result, err := h.Orchestrator.Analyze(c.Request.Context(), req.UserInput)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type saveEntryRequest struct {
	UserInput    string     `json:"userInput"`
	MoodAnalysis string     `json:"moodAnalysis"`
	Category     string     `json:"category"`
	Song         model.Song `json:"suggestedSong"`
	Shared       bool       `json:"shared"`
}

func (h *Handlers) SaveEntry(c *gin.Context) {
	var req saveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &utils.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	entry, result, err := h.Store.CreateEntry(c.Request.Context(), engagement.CreateEntryInput{
		AuthorId:     middlewares.CurrentUserId(c),
		RawText:      req.UserInput,
		MoodAnalysis: req.MoodAnalysis,
		Category:     req.Category,
		Song:         req.Song,
		Shared:       req.Shared,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mood": entry, "gamification": result})
}

func (h *Handlers) ShareEntry(c *gin.Context) {
	entry, err := h.Store.ShareEntry(c.Request.Context(), c.Param("id"), middlewares.CurrentUserId(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mood": entry})
}

func (h *Handlers) ToggleLike(c *gin.Context) {
	likes, err := h.Store.ToggleLike(c.Request.Context(), c.Param("id"), middlewares.CurrentUserId(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &utils.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	comment, err := h.Store.AddComment(c.Request.Context(), c.Param("id"), middlewares.CurrentUserId(c), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handlers) GetFeed(c *gin.Context) {
	// A non-numeric limit falls through as zero and gets the default.
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, err := h.Store.QueryFeed(c.Request.Context(), engagement.FeedQuery{
		Scope:    engagement.FeedScope(c.DefaultQuery("scope", string(engagement.FeedScopeAll))),
		ViewerId: middlewares.CurrentUserId(c),
		Category: c.Query("category"),
		Cursor:   c.Query("cursor"),
		Limit:    limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) GetProfile(c *gin.Context) {
	entries, err := h.Store.QueryProfile(c.Request.Context(), c.Param("id"), middlewares.CurrentUserId(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moods": entries})
}

func (h *Handlers) Follow(c *gin.Context) {
	if err := h.Store.Follow(c.Request.Context(), middlewares.CurrentUserId(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "now following"})
}

func (h *Handlers) Unfollow(c *gin.Context) {
	if err := h.Store.Unfollow(c.Request.Context(), middlewares.CurrentUserId(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (h *Handlers) ListBadges(c *gin.Context) {
	c.JSON(http.StatusOK, gamify.Catalog())
}

// writeError maps typed domain errors onto status codes. Inference
// failures, whatever their shape, surface as a single "failed to analyze
// mood" error rather than partially applied state.
func writeError(c *gin.Context, err error) {
	switch {
	case utils.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"code": utils.ErrorValidation, "msg": err.Error()})
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"code": utils.ErrorNotFound, "msg": err.Error()})
	case utils.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"code": utils.ErrorConflict, "msg": err.Error()})
	case utils.IsInferenceParse(err) || utils.IsCollaboratorUnavailable(err):
		log.Logger.Error(fmt.Sprintf("analyze failed: %v", err))
		c.JSON(http.StatusBadGateway, gin.H{"code": utils.ErrorAnalyzeFail, "msg": "failed to analyze mood"})
	default:
		log.Logger.Error(fmt.Sprintf("internal failure: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": utils.ErrorInternalFailure, "msg": "internal failure"})
	}
}
