package converter

import (
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/service"
)

// ClubRequestToResponse converts a ClubAffiliation with athlete and club preloaded
func ClubRequestToResponse(a *entity.ClubAffiliation) *dto.ClubRequestResponse {
	if a == nil {
		return nil
	}

	return &dto.ClubRequestResponse{
		ID:            a.ID,
		AthleteID:     a.AthleteID,
		AthleteCoreID: a.Athlete.CoreID,
		AthleteName:   a.Athlete.Name,
		ClubID:        a.ClubID,
		ClubName:      a.Club.Name,
		Status:        string(a.Status),
		RequestedAt:   a.RequestedAt,
		DecidedAt:     a.DecidedAt,
	}
}

// ClubRequestsToResponses converts a slice of ClubAffiliation entities
func ClubRequestsToResponses(affiliations []entity.ClubAffiliation) []dto.ClubRequestResponse {
	responses := make([]dto.ClubRequestResponse, len(affiliations))
	for i := range affiliations {
		responses[i] = *ClubRequestToResponse(&affiliations[i])
	}
	return responses
}

// ClubStatusToResponse derives the status card of an athlete from its latest
// affiliation. A nil affiliation means the athlete never joined (NONE).
func ClubStatusToResponse(athlete *entity.User, isMinor bool, latest *entity.ClubAffiliation) dto.ClubStatusResponse {
	status := dto.ClubStatusResponse{
		AthleteID:   athlete.ID,
		AthleteName: athlete.Name,
		IsMinor:     isMinor,
		Status:      string(entity.AffiliationNone),
	}
	if latest == nil {
		return status
	}

	clubID := latest.ClubID
	requestID := latest.ID
	requestedAt := latest.RequestedAt
	status.Status = string(latest.Status)
	status.ClubID = &clubID
	status.ClubName = latest.Club.Name
	status.RequestID = &requestID
	status.RequestedAt = &requestedAt
	status.DecidedAt = latest.DecidedAt
	return status
}

// ClubDirectoryToResponse converts cached directory entries to the public listing
func ClubDirectoryToResponse(clubs []service.ClubSummary) *dto.ClubDirectoryResponse {
	responses := make([]dto.ClubSummaryResponse, len(clubs))
	for i, c := range clubs {
		responses[i] = dto.ClubSummaryResponse{
			ID:              c.ID,
			CoreID:          c.CoreID,
			Name:            c.Name,
			ProvinceID:      c.ProvinceID,
			CityID:          c.CityID,
			Hotline:         c.Hotline,
			IsPerpaniMember: c.IsPerpaniMember,
		}
	}
	return &dto.ClubDirectoryResponse{Clubs: responses, Total: len(responses)}
}
