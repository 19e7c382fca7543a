package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/api/middleware"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

func actorFromRequest(r *http.Request) (donations.Actor, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return donations.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return donations.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing role")
	}
	return donations.Actor{UserID: userID, Role: role}, nil
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	return userID, nil
}

func pathUUID(r *http.Request, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id")
	}
	return id, nil
}

func paginationFromQuery(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		params.Limit = value
	}
	return params, nil
}
