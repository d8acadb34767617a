// internal/app/features/centers/types.go
package centers

import (
	"github.com/dalemusser/assistcenter/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// centerInput is the body of create and edit requests.
type centerInput struct {
	Name       string `json:"name" validate:"required,max=200" label:"Name"`
	Street     string `json:"street" validate:"required,max=200" label:"Street"`
	City       string `json:"city" validate:"required,max=100" label:"City"`
	Province   string `json:"province" validate:"required,max=100" label:"Province"`
	PostalCode string `json:"postal_code" validate:"required,max=20" label:"Postal code"`
	Phone      string `json:"phone" validate:"omitempty,phone" label:"Phone"`
	Email      string `json:"email" validate:"omitempty,strictemail" label:"Email"`
}

// clean strips markup and normalizes whitespace and case.
func (in *centerInput) clean() {
	in.Name = normalize.Name(htmlsanitize.PlainText(in.Name))
	in.Street = normalize.Name(htmlsanitize.PlainText(in.Street))
	in.City = normalize.Name(htmlsanitize.PlainText(in.City))
	in.Province = normalize.Name(htmlsanitize.PlainText(in.Province))
	in.PostalCode = normalize.PostalCode(htmlsanitize.PlainText(in.PostalCode))
	in.Phone = normalize.Name(in.Phone)
	in.Email = normalize.Email(in.Email)
}

func (in centerInput) model() models.AssistanceCenter {
	return models.AssistanceCenter{
		Name:       in.Name,
		Street:     in.Street,
		City:       in.City,
		Province:   in.Province,
		PostalCode: in.PostalCode,
		Phone:      in.Phone,
		Email:      in.Email,
	}
}

type listResponse struct {
	Centers []models.AssistanceCenter `json:"centers"`
}

type rosterResponse struct {
	CenterID    primitive.ObjectID  `json:"center_id"`
	Technicians []models.Technician `json:"technicians"`
}

type transferableView struct {
	Technician        models.Technician  `json:"technician"`
	CurrentCenterID   primitive.ObjectID `json:"current_center_id"`
	CurrentCenterName string             `json:"current_center_name"`
}

// availableResponse lists free technicians first, then those who would
// have to be transferred from another center.
type availableResponse struct {
	CenterID     primitive.ObjectID  `json:"center_id"`
	Free         []models.Technician `json:"free"`
	Transferable []transferableView  `json:"transferable"`
}

type deletedResponse struct {
	Status string             `json:"status"`
	ID     primitive.ObjectID `json:"id"`
}
