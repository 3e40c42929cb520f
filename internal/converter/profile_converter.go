package converter

import (
	"time"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/rules"
)

// ProfileToResponse converts a User with its role extension to ProfileResponse,
// including the completeness computed at today.
func ProfileToResponse(user *entity.User, today time.Time) *dto.ProfileResponse {
	if user == nil {
		return nil
	}

	in := rules.InputFromUser(user)
	response := &dto.ProfileResponse{
		ID:           user.ID,
		CoreID:       user.CoreID,
		Email:        user.Email,
		Role:         in.Role,
		Name:         in.Name,
		Phone:        in.Phone,
		Whatsapp:     in.Whatsapp,
		NIK:          in.NIK,
		NIKVerified:  user.NIKVerified,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		ProvinceID:   in.ProvinceID,
		CityID:       in.CityID,
		IsStudent:    in.IsStudent,
		Occupation:   in.Occupation,
		Athlete:      in.Athlete,
		Club:         in.Club,
		School:       in.School,
		Coach:        in.Coach,
		Judge:        in.Judge,
		Completeness: rules.Evaluate(user, today),
		UpdatedAt:    user.UpdatedAt,
	}

	if age, ok := rules.AgeOf(in.DateOfBirth, today); ok {
		response.Age = &age
	}
	if user.AvatarURL != nil {
		response.AvatarURL = *user.AvatarURL
	}

	return response
}

// ParentLinkToResponse converts a ParentLink entity to ParentLinkResponse DTO
func ParentLinkToResponse(link *entity.ParentLink) *dto.ParentLinkResponse {
	if link == nil {
		return nil
	}

	return &dto.ParentLinkResponse{
		ID:          link.ID,
		ParentID:    link.ParentID,
		ParentName:  link.Parent.Name,
		ChildID:     link.ChildID,
		Status:      string(link.Status),
		CreatedAt:   link.CreatedAt,
		RespondedAt: link.RespondedAt,
	}
}

// ChildrenToResponses converts accepted links (with the child preloaded) to ChildResponse DTOs
func ChildrenToResponses(links []entity.ParentLink, today time.Time) []dto.ChildResponse {
	responses := make([]dto.ChildResponse, len(links))
	for i, link := range links {
		child := dto.ChildResponse{
			LinkID: link.ID,
			ID:     link.Child.ID,
			CoreID: link.Child.CoreID,
			Name:   link.Child.Name,
		}
		if dob := link.Child.DateOfBirth; dob != nil {
			child.DateOfBirth = dob.Format(rules.DateLayout)
			child.IsMinor = rules.IsAthleteGuardianMinor(rules.CalendarAge(*dob, today))
		}
		responses[i] = child
	}
	return responses
}
