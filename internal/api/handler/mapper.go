package handler

import (
	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		State:        u.State,
		District:     u.District,
		City:         u.City,
		PhoneNumber:  u.PhoneNumber,
		RewardPoints: u.RewardPoints,
		Role:         string(u.Role),
		AdminID:      u.AdminID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

func toUserList(users []*domain.User) userListResponse {
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	return userListResponse{Items: items}
}

func toCaseResponse(c *domain.Case) caseResponse {
	self := "/api/v1/cases/" + c.ID
	return caseResponse{
		ID:          c.ID,
		Reference:   c.Reference,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Status:      string(c.Status),
		Priority:    string(c.Priority),
		Location:    c.Location,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		ImageURL:    c.ImageURL,
		UserID:      c.UserID,
		AssignedTo:  c.AssignedTo,
		AssignedBy:  c.AssignedBy,
		AssignedAt:  c.AssignedAt,
		ResolvedAt:  c.ResolvedAt,
		Version:     c.Version,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Links: caseLinks{
			Self:    self,
			History: self + "/history",
		},
	}
}

func toListCasesResponse(r *ports.ListCasesResult) listCasesResponse {
	items := make([]caseResponse, 0, len(r.Items))
	for _, c := range r.Items {
		items = append(items, toCaseResponse(c))
	}
	return listCasesResponse{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}

func toCaseEvents(events []*domain.CaseEvent) []caseEventResponse {
	out := make([]caseEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, caseEventResponse{
			ID:         e.ID,
			Kind:       string(e.Kind),
			ActorID:    e.ActorID,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			AssignedTo: e.AssignedTo,
			Version:    e.Version,
			OccurredAt: e.OccurredAt,
		})
	}
	return out
}
