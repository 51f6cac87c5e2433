package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/grove-social/weir/ratelimit/accountstore"
	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/engine"

	"github.com/labstack/echo/v4"
)

type checkPostRequest struct {
	UserID string `json:"userId"`
}

type checkCommentRequest struct {
	UserID   string `json:"userId"`
	ThreadID string `json:"threadId"`
}

type checkResponse struct {
	Allowed        bool       `json:"allowed"`
	NextEligibleAt *time.Time `json:"nextEligibleAt,omitempty"`
	Kind           string     `json:"kind,omitempty"`
	Message        string     `json:"message,omitempty"`
	RetryMessage   string     `json:"retryMessage,omitempty"`
}

func checkResponseFor(d *engine.Decision, now time.Time) checkResponse {
	if d == nil {
		return checkResponse{Allowed: true}
	}
	t := d.NextEligibleAt
	return checkResponse{
		Allowed:        false,
		NextEligibleAt: &t,
		Kind:           string(d.Kind),
		Message:        d.Message,
		RetryMessage:   d.RetryMessage(now),
	}
}

func (s *Server) HandleCheckPost(c echo.Context) error {
	var req checkPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	ctx := c.Request().Context()
	acct, err := s.accounts.GetAccountMeta(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "account lookup failed")
	}

	decision, err := s.engine.CanCreatePost(ctx, acct)
	if err != nil {
		// dependent-store faults abort the submission; never fall open
		return echo.NewHTTPError(http.StatusBadGateway, "rate limit check failed")
	}
	return c.JSON(http.StatusOK, checkResponseFor(decision, time.Now()))
}

func (s *Server) HandleCheckComment(c echo.Context) error {
	var req checkCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.ThreadID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and threadId are required")
	}

	ctx := c.Request().Context()
	acct, err := s.accounts.GetAccountMeta(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "account lookup failed")
	}

	decision, err := s.engine.CanCreateComment(ctx, acct, req.ThreadID)
	if err != nil {
		if errors.Is(err, contentstore.ErrThreadNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "thread not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "rate limit check failed")
	}
	return c.JSON(http.StatusOK, checkResponseFor(decision, time.Now()))
}
