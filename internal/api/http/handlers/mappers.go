package handlers

import (
	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func ticketResponse(view *domain.TicketView) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:                view.ID,
		Category:          view.CategoryID,
		PhoneExt:          view.PhoneExt,
		Location:          view.LocationID,
		Criticality:       view.CriticalityID,
		Description:       view.Description,
		Assignee:          view.AssigneeID,
		State:             view.StateID,
		OpenDate:          domain.FormatDate(view.OpenDate),
		CategoryDetail:    catalogDetail(view.Category),
		LocationDetail:    catalogDetail(view.Location),
		CriticalityDetail: catalogDetail(view.Criticality),
		StateDetail:       catalogDetail(view.State),
		CreatedAt:         view.CreatedAt,
		UpdatedAt:         view.UpdatedAt,
	}
	if view.CloseDate != nil {
		closed := domain.FormatDate(*view.CloseDate)
		resp.CloseDate = &closed
	}
	if view.Assignee != nil {
		resp.AssigneeDetail = &dto.UserSummary{
			ID:     view.Assignee.ID,
			Name:   view.Assignee.Name,
			Email:  view.Assignee.Email,
			RoleID: view.Assignee.RoleID,
		}
	}
	return resp
}

func ticketResponses(views []domain.TicketView) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(views))
	for i := range views {
		items = append(items, ticketResponse(&views[i]))
	}
	return items
}

func catalogDetail(entry *domain.CatalogEntry) *dto.CatalogResponse {
	if entry == nil {
		return nil
	}
	resp := catalogResponse(*entry)
	return &resp
}

func catalogResponse(entry domain.CatalogEntry) dto.CatalogResponse {
	return dto.CatalogResponse{ID: entry.ID, Name: entry.Name, Description: entry.Description}
}

func userResponse(user *domain.User, isAdmin bool) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		RoleID:    user.RoleID,
		IsAdmin:   isAdmin,
		IsActive:  user.Active,
		CreatedAt: user.CreatedAt,
	}
}

func tokenResponse(pair domain.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:           comment.ID,
		TicketID:     comment.TicketID,
		AuthorID:     comment.AuthorID,
		AuthorType:   string(comment.AuthorType),
		Message:      comment.Message,
		Satisfaction: comment.Satisfaction,
		Date:         domain.FormatDate(comment.Date),
	}
}

func historyResponses(entries []domain.AuditLogEntry) []dto.AuditEntryResponse {
	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:        entry.ID,
			UserID:    entry.UserID,
			TicketID:  entry.TicketID,
			Action:    entry.Action,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}

func namedCounts(items []domain.NamedCount) []dto.NamedCountResponse {
	resp := make([]dto.NamedCountResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.NamedCountResponse{ID: item.ID, Name: item.Name, Count: item.Count})
	}
	return resp
}
