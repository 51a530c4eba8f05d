package exhibitions

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
)

// View is the exhibition shape returned to clients.
type View struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Location    string    `json:"location"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ViewOf maps an exhibition row to its client shape.
func ViewOf(exhibition models.Exhibition) View {
	images := []string(exhibition.Images)
	if images == nil {
		images = []string{}
	}
	return View{
		ID:          exhibition.ID,
		Title:       exhibition.Title,
		Description: exhibition.Description,
		StartDate:   exhibition.StartDate,
		EndDate:     exhibition.EndDate,
		Location:    exhibition.Location,
		Images:      images,
		CreatedAt:   exhibition.CreatedAt,
		UpdatedAt:   exhibition.UpdatedAt,
	}
}
