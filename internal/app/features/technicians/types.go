// internal/app/features/technicians/types.go
package technicians

import (
	"github.com/dalemusser/assistcenter/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type technicianInput struct {
	FullName       string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Specialization string `json:"specialization" validate:"max=100" label:"Specialization"`
	Email          string `json:"email" validate:"omitempty,strictemail" label:"Email"`
	Phone          string `json:"phone" validate:"omitempty,phone" label:"Phone"`
}

func (in *technicianInput) clean() {
	in.FullName = normalize.Name(htmlsanitize.PlainText(in.FullName))
	in.Specialization = normalize.Name(htmlsanitize.PlainText(in.Specialization))
	in.Email = normalize.Email(in.Email)
	in.Phone = normalize.Name(in.Phone)
}

func (in technicianInput) model() models.Technician {
	return models.Technician{
		FullName:       in.FullName,
		Specialization: in.Specialization,
		Email:          in.Email,
		Phone:          in.Phone,
	}
}

// assignInput is the body of POST /technicians/{id}/assign. A first call
// carries only center_id; when the technician is at another center the
// response is a transfer proposal, and the caller repeats the request with
// confirm=true and the proposal's expected_version.
type assignInput struct {
	CenterID        string `json:"center_id" validate:"required,objectid" label:"Center"`
	Confirm         bool   `json:"confirm"`
	ExpectedVersion *int64 `json:"expected_version" validate:"omitempty,min=0" label:"Expected version"`
	ProposalID      string `json:"proposal_id" validate:"max=64" label:"Proposal ID"`
}

type listResponse struct {
	Technicians []models.Technician `json:"technicians"`
}

type assignedResponse struct {
	Status             string              `json:"status"`
	Changed            bool                `json:"changed"`
	Technician         models.Technician   `json:"technician"`
	Version            int64               `json:"version"`
	PreviousCenterID   *primitive.ObjectID `json:"previous_center_id,omitempty"`
	PreviousCenterName string              `json:"previous_center_name,omitempty"`
	ProposalID         string              `json:"proposal_id,omitempty"`
}

// transferResponse is the confirmation payload for a move between centers.
type transferResponse struct {
	Status            string             `json:"status"`
	Message           string             `json:"message"`
	TechnicianID      primitive.ObjectID `json:"technician_id"`
	TechnicianName    string             `json:"technician_name"`
	CenterID          primitive.ObjectID `json:"center_id"`
	CurrentCenterID   primitive.ObjectID `json:"current_center_id"`
	CurrentCenterName string             `json:"current_center_name"`
	ExpectedVersion   int64              `json:"expected_version"`
	ProposalID        string             `json:"proposal_id"`
}

type deletedResponse struct {
	Status string             `json:"status"`
	ID     primitive.ObjectID `json:"id"`
}
