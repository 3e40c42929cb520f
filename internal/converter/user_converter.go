package converter

import (
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// The role is resolved from the catalog when the relation is not preloaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		CoreID:    user.CoreID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role.RoleName,
		RoleCode:  user.Role.Code,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if response.Role == "" {
		if card, ok := entity.RoleByID(user.RoleID); ok {
			response.Role = card.Name
			response.RoleCode = card.Code
		}
	}

	if user.AvatarURL != nil {
		response.AvatarURL = *user.AvatarURL
	}

	return response
}

// RoleCardsToResponses converts signup role cards to RoleResponse DTOs
func RoleCardsToResponses(cards []entity.RoleCard) []dto.RoleResponse {
	responses := make([]dto.RoleResponse, len(cards))
	for i, card := range cards {
		responses[i] = dto.RoleResponse{
			ID:    card.ID,
			Code:  card.Code,
			Name:  card.Name,
			Label: card.Label,
		}
	}
	return responses
}
