package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ecotrack/backend/internal/auth"
	"ecotrack/backend/internal/models"
	"ecotrack/backend/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultRecentDays = 7

type API struct {
	svc             *tracker.Service
	issuer          *auth.Issuer
	bcryptCost      int
	leaderboardSize int
	log             zerolog.Logger
}

type Options struct {
	BcryptCost      int
	LeaderboardSize int
	Logger          zerolog.Logger
}

func New(svc *tracker.Service, issuer *auth.Issuer, opts Options) *API {
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = 10
	}
	return &API{
		svc:             svc,
		issuer:          issuer,
		bcryptCost:      opts.BcryptCost,
		leaderboardSize: opts.LeaderboardSize,
		log:             opts.Logger,
	}
}

func (a *API) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/auth/register", a.register)
	api.POST("/auth/login", a.login)

	authed := api.Group("", auth.Middleware(a.issuer))
	authed.GET("/actions", a.listCatalog)
	authed.GET("/leaderboard", a.leaderboard)

	user := authed.Group("/user")
	user.GET("/profile", a.profile)
	user.POST("/actions", a.submitAction)
	user.GET("/actions", a.listActions)
	user.GET("/stats", a.stats)
	user.GET("/stats/daily", a.dailyStats)
	user.GET("/achievements", a.achievements)
}

// writeError maps the error taxonomy onto HTTP statuses.
func (a *API) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		a.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResp struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (a *API) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hash, err := auth.HashPassword(req.Password, a.bcryptCost)
	if err != nil {
		a.writeError(c, err)
		return
	}
	u, err := a.svc.Register(c.Request.Context(), req.Name, req.Email, hash)
	if err != nil {
		a.writeError(c, err)
		return
	}
	token, err := a.issuer.Issue(u)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResp{Token: token, User: u.Public()})
}

func (a *API) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := a.svc.UserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) {
		// same answer as a wrong password
		a.writeError(c, auth.ErrInvalidCredentials)
		return
	}
	if err != nil {
		a.writeError(c, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		a.writeError(c, err)
		return
	}
	token, err := a.issuer.Issue(u)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResp{Token: token, User: u.Public()})
}

func (a *API) profile(c *gin.Context) {
	uid, err := auth.CurrentUserID(c)
	if err != nil {
		a.writeError(c, err)
		return
	}
	p, err := a.svc.Profile(c.Request.Context(), uid)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) listCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, a.svc.Catalog())
}

type submitReq struct {
	ActionID     *uint   `json:"action_id"`
	CustomAction *string `json:"custom_action"`
}

type scoreResp struct {
	EcoPoints int `json:"eco_points"`
	Level     int `json:"level"`
}

type submitResp struct {
	models.ActionRecord
	Title string    `json:"title"`
	User  scoreResp `json:"user"`
}

func (a *API) submitAction(c *gin.Context) {
	uid, err := auth.CurrentUserID(c)
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := a.svc.Submit(c.Request.Context(), uid, tracker.Submission{
		ActionID:    req.ActionID,
		CustomLabel: req.CustomAction,
	})
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submitResp{
		ActionRecord: res.Record,
		Title:        res.Title,
		User:         scoreResp{EcoPoints: res.User.EcoPoints, Level: res.User.Level},
	})
}

func (a *API) listActions(c *gin.Context) {
	uid, err := auth.CurrentUserID(c)
	if err != nil {
		a.writeError(c, err)
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = v
	}
	views, err := a.svc.ListActions(c.Request.Context(), uid, limit)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (a *API) stats(c *gin.Context) {
	uid, err := auth.CurrentUserID(c)
	if err != nil {
		a.writeError(c, err)
		return
	}
	st, err := a.svc.Stats(c.Request.Context(), uid)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (a *API) dailyStats(c *gin.Context) {
	uid, err := auth.CurrentUserID(c)
	if err != nil {
		a.writeError(c, err)
		return
	}
	days := defaultRecentDays
	if d := c.Query("days"); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil || v <= 0 || v > 366 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 366"})
			return
		}
		days = v
	}
	out, err := a.svc.RecentDays(c.Request.Context(), uid, days)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) achievements(c *gin.Context) {
	uid, err := auth.CurrentUserID(c)
	if err != nil {
		a.writeError(c, err)
		return
	}
	out, err := a.svc.Achievements(c.Request.Context(), uid)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) leaderboard(c *gin.Context) {
	out, err := a.svc.Leaderboard(c.Request.Context(), a.leaderboardSize)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
