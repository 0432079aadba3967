package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roomshare/roomshare-be/internal/auth"
	"github.com/roomshare/roomshare-be/internal/models"
	"github.com/roomshare/roomshare-be/internal/services"
)

// GroupHandler handles HTTP requests for groups, memberships and the
// group activity log.
type GroupHandler struct {
	groups   services.GroupServiceProvider
	activity services.ActivityServiceProvider
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups services.GroupServiceProvider, activity services.ActivityServiceProvider) *GroupHandler {
	return &GroupHandler{groups: groups, activity: activity}
}

// Create makes a new group with the caller as its first admin.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}
	if payload.Name == "" {
		writeError(w, r, fmt.Errorf("%w: group name is required", services.ErrBadRequest))
		return
	}

	group, err := h.groups.CreateGroup(payload.Name, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

// MyGroups lists the caller's groups with their role in each.
func (h *GroupHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}

	groups, err := h.groups.GetGroupsForUser(claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []models.UserGroup{}
	}

	writeJSON(w, http.StatusOK, groups)
}

// AddMember adds a user by email to the group. Admin only.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}
	if payload.Email == "" {
		writeError(w, r, fmt.Errorf("%w: email is required", services.ErrBadRequest))
		return
	}

	member, err := h.groups.AddMember(groupID, claims.UserID, payload.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

// Members lists the group's memberships. Members only.
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")

	members, err := h.groups.GetGroupMembers(groupID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

// RemoveMember deletes a membership. Admin only; the last admin of a
// group cannot be removed.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")
	targetUserID := chi.URLParam(r, "userId")

	if err := h.groups.RemoveMember(groupID, claims.UserID, targetUserID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Member removed from group."})
}

// Activity returns the group's recent activity entries. Members only.
func (h *GroupHandler) Activity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activities, err := h.activity.GetRecentActivities(groupID, claims.UserID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activities)
}
