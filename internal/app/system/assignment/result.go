package assignment

import (
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the outcome of AssignTechnician.
type Status string

const (
	// StatusAssigned means the technician is now at the requested center.
	StatusAssigned Status = "assigned"
	// StatusTransferRequired means nothing was written; the technician is
	// at another center and the caller must confirm the move.
	StatusTransferRequired Status = "transfer_required"
)

// AssignTechnicianRequest is one call to AssignTechnician.
type AssignTechnicianRequest struct {
	TechnicianID primitive.ObjectID
	CenterID     primitive.ObjectID

	// Confirm acknowledges a transfer previously reported as
	// StatusTransferRequired.
	Confirm bool
	// ExpectedVersion is the technician version the caller observed.
	// Required with Confirm; optional otherwise.
	ExpectedVersion *int64
	// ProposalID echoes AssignResult.ProposalID for the audit trail.
	ProposalID string
}

// AssignResult is what AssignTechnician reports back to the boundary.
type AssignResult struct {
	Status     Status
	Technician models.Technician

	// Changed is false when the technician was already at the center or a
	// transfer still needs confirmation.
	Changed bool

	// Set for transfers (proposed or applied).
	PreviousCenterID   *primitive.ObjectID
	PreviousCenterName string

	// Version is the technician version after the call. For
	// StatusTransferRequired it is the value to send back as
	// ExpectedVersion together with Confirm.
	Version    int64
	ProposalID string
}

// TransferableTechnician is a technician currently at another center.
type TransferableTechnician struct {
	Technician        models.Technician
	CurrentCenterID   primitive.ObjectID
	CurrentCenterName string
}

// Availability partitions the technicians that can be added to a center.
type Availability struct {
	Free         []models.Technician
	Transferable []TransferableTechnician
}
