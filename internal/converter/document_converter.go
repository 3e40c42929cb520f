package converter

import (
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
)

// DocumentToResponse converts a Document entity to DocumentResponse DTO
func DocumentToResponse(d *entity.Document) *dto.DocumentResponse {
	if d == nil {
		return nil
	}

	return &dto.DocumentResponse{
		ID:           d.ID,
		OwnerCoreID:  d.OwnerCoreID,
		Title:        d.Title,
		Category:     d.Category,
		FileName:     d.FileName,
		FileURL:      d.FileURL,
		FileSize:     d.FileSize,
		MimeType:     d.MimeType,
		UploaderID:   d.UploaderID,
		UploaderName: d.UploaderName,
		CreatedAt:    d.CreatedAt,
	}
}

// DocumentsToResponses converts a slice of Document entities
func DocumentsToResponses(documents []entity.Document) []dto.DocumentResponse {
	responses := make([]dto.DocumentResponse, len(documents))
	for i := range documents {
		responses[i] = *DocumentToResponse(&documents[i])
	}
	return responses
}
