// Package assignment enforces the rules for binding technicians to
// assistance centers and products to staff members.
//
// A technician is either Unassigned or AssignedTo(center). Moving an
// assigned technician to another center is a transfer: the first call
// returns StatusTransferRequired without touching the store, and only a
// second call carrying Confirm and the technician's observed Version
// performs the move. Every mutation is a single compare-and-set inside
// Store.Atomically, so a technician is never visible in two centers and a
// stale confirmation fails with ErrConflict instead of overwriting.
package assignment

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/dalemusser/assistcenter/internal/app/store/audit"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Auditor receives an event for every applied mutation and transfer
// proposal. *auditlog.Logger satisfies it.
type Auditor interface {
	Log(ctx context.Context, event audit.Event)
}

// Engine is the assignment service. It is safe for concurrent use; all
// coordination happens in the Store.
type Engine struct {
	store Store
	audit Auditor
	log   *zap.Logger

	newProposalID func() string
}

// New constructs an Engine. audit may be nil.
func New(store Store, auditor Auditor, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:         store,
		audit:         auditor,
		log:           logger,
		newProposalID: func() string { return uuid.NewString() },
	}
}

func (e *Engine) record(ctx context.Context, ev audit.Event) {
	if e.audit == nil {
		return
	}
	ev.Success = true
	e.audit.Log(ctx, ev)
}

// translate maps store errors onto the engine's taxonomy.
func translate(err error) error {
	if errors.Is(err, ErrVersionMismatch) {
		return errors.Join(ErrConflict, err)
	}
	return err
}

/* -------------------------------------------------------------------------- */
/* Technicians ↔ centers                                                       */
/* -------------------------------------------------------------------------- */

// AssignTechnician binds a technician to a center.
//
//   - Unassigned, or already at CenterID: applied, StatusAssigned. Assigning
//     to the current center changes nothing (Changed=false).
//   - At another center without Confirm: StatusTransferRequired, nothing is
//     written. The result carries the Version the confirmation must echo.
//   - Confirm: ExpectedVersion must match the stored version, otherwise
//     ErrConflict.
//
// ExpectedVersion, when given, is enforced for plain assignments too.
func (e *Engine) AssignTechnician(ctx context.Context, req AssignTechnicianRequest) (AssignResult, error) {
	var res AssignResult

	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		res = AssignResult{}

		tech, err := e.store.Technician(ctx, req.TechnicianID)
		if err != nil {
			return e.lookupErr("technician", req.TechnicianID, err)
		}
		if _, err := e.store.Center(ctx, req.CenterID); err != nil {
			return e.lookupErr("center", req.CenterID, err)
		}

		// Already there: idempotent, no write.
		if tech.AssignedTo(req.CenterID) {
			res = AssignResult{Status: StatusAssigned, Technician: tech, Version: tech.Version}
			return nil
		}

		if req.ExpectedVersion != nil && *req.ExpectedVersion != tech.Version {
			return staleErr(tech, *req.ExpectedVersion)
		}

		transfer := tech.Assigned()
		if transfer {
			prevName, err := e.centerName(ctx, *tech.CenterID)
			if err != nil {
				return err
			}
			res.PreviousCenterID = tech.CenterID
			res.PreviousCenterName = prevName

			if !req.Confirm {
				res.Status = StatusTransferRequired
				res.Technician = tech
				res.Version = tech.Version
				res.ProposalID = e.newProposalID()
				return nil
			}
			if req.ExpectedVersion == nil {
				return errors.Join(ErrConflict, errors.New("transfer confirmation must carry the observed version"))
			}
		}

		target := req.CenterID
		updated, err := e.store.SetTechnicianCenter(ctx, tech.ID, &tech.Version, &target)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFound("center", req.CenterID)
			}
			return translate(err)
		}
		res.Status = StatusAssigned
		res.Technician = updated
		res.Version = updated.Version
		res.Changed = true
		return nil
	})
	if err != nil {
		return AssignResult{}, err
	}

	switch {
	case res.Status == StatusTransferRequired:
		e.log.Info("technician transfer requires confirmation",
			zap.String("technician_id", req.TechnicianID.Hex()),
			zap.String("from_center_id", res.PreviousCenterID.Hex()),
			zap.String("to_center_id", req.CenterID.Hex()),
			zap.String("proposal_id", res.ProposalID))
		e.record(ctx, audit.Event{
			Category:   audit.CategoryAssignment,
			EventType:  audit.EventTechnicianTransferProposed,
			EntityType: "technician",
			EntityID:   &req.TechnicianID,
			CenterID:   &req.CenterID,
			Details: map[string]string{
				"from_center_id": res.PreviousCenterID.Hex(),
				"proposal_id":    res.ProposalID,
				"version":        strconv.FormatInt(res.Version, 10),
			},
		})
	case res.Changed && res.PreviousCenterID != nil:
		e.log.Info("technician transferred",
			zap.String("technician_id", req.TechnicianID.Hex()),
			zap.String("from_center_id", res.PreviousCenterID.Hex()),
			zap.String("to_center_id", req.CenterID.Hex()))
		e.record(ctx, audit.Event{
			Category:   audit.CategoryAssignment,
			EventType:  audit.EventTechnicianTransferred,
			EntityType: "technician",
			EntityID:   &req.TechnicianID,
			CenterID:   &req.CenterID,
			Details: map[string]string{
				"from_center_id": res.PreviousCenterID.Hex(),
				"proposal_id":    req.ProposalID,
			},
		})
	case res.Changed:
		e.log.Info("technician assigned",
			zap.String("technician_id", req.TechnicianID.Hex()),
			zap.String("center_id", req.CenterID.Hex()))
		e.record(ctx, audit.Event{
			Category:   audit.CategoryAssignment,
			EventType:  audit.EventTechnicianAssigned,
			EntityType: "technician",
			EntityID:   &req.TechnicianID,
			CenterID:   &req.CenterID,
		})
	}
	return res, nil
}

// UnassignTechnician clears the technician's center. It is idempotent.
func (e *Engine) UnassignTechnician(ctx context.Context, techID primitive.ObjectID) (models.Technician, error) {
	var (
		out  models.Technician
		prev *primitive.ObjectID
	)
	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		tech, err := e.store.Technician(ctx, techID)
		if err != nil {
			return e.lookupErr("technician", techID, err)
		}
		prev = tech.CenterID
		if !tech.Assigned() {
			out = tech
			return nil
		}
		out, err = e.store.SetTechnicianCenter(ctx, techID, nil, nil)
		return translate(err)
	})
	if err != nil {
		return models.Technician{}, err
	}
	if prev != nil {
		e.log.Info("technician unassigned",
			zap.String("technician_id", techID.Hex()),
			zap.String("center_id", prev.Hex()))
		e.record(ctx, audit.Event{
			Category:   audit.CategoryAssignment,
			EventType:  audit.EventTechnicianUnassigned,
			EntityType: "technician",
			EntityID:   &techID,
			CenterID:   prev,
		})
	}
	return out, nil
}

// RemoveTechnicianFromCenter unassigns a technician from a specific center.
// It fails with ErrConflict when the technician is not at that center,
// which includes having been moved by a concurrent request.
func (e *Engine) RemoveTechnicianFromCenter(ctx context.Context, centerID, techID primitive.ObjectID) (models.Technician, error) {
	var out models.Technician
	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		if _, err := e.store.Center(ctx, centerID); err != nil {
			return e.lookupErr("center", centerID, err)
		}
		tech, err := e.store.Technician(ctx, techID)
		if err != nil {
			return e.lookupErr("technician", techID, err)
		}
		if !tech.AssignedTo(centerID) {
			return errors.Join(ErrConflict, errors.New("technician is not assigned to this center"))
		}
		out, err = e.store.SetTechnicianCenter(ctx, techID, &tech.Version, nil)
		return translate(err)
	})
	if err != nil {
		return models.Technician{}, err
	}
	e.log.Info("technician removed from center",
		zap.String("technician_id", techID.Hex()),
		zap.String("center_id", centerID.Hex()))
	e.record(ctx, audit.Event{
		Category:   audit.CategoryAssignment,
		EventType:  audit.EventTechnicianRemovedFromCenter,
		EntityType: "technician",
		EntityID:   &techID,
		CenterID:   &centerID,
	})
	return out, nil
}

// ListAvailableTechnicians returns the technicians that could be added to
// centerID: unassigned ones first, then those at other centers annotated
// with that center's name. Both partitions are ordered by ID. The read is
// not locked; callers may see a state that is already stale.
func (e *Engine) ListAvailableTechnicians(ctx context.Context, centerID primitive.ObjectID) (Availability, error) {
	if _, err := e.store.Center(ctx, centerID); err != nil {
		return Availability{}, e.lookupErr("center", centerID, err)
	}
	techs, err := e.store.TechniciansNotAt(ctx, centerID)
	if err != nil {
		return Availability{}, err
	}

	out := Availability{Free: []models.Technician{}, Transferable: []TransferableTechnician{}}
	var otherIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, t := range techs {
		if t.CenterID != nil && !seen[*t.CenterID] {
			seen[*t.CenterID] = true
			otherIDs = append(otherIDs, *t.CenterID)
		}
	}
	names, err := e.store.CenterNames(ctx, otherIDs)
	if err != nil {
		return Availability{}, err
	}

	for _, t := range techs {
		switch {
		case t.CenterID == nil:
			out.Free = append(out.Free, t)
		case *t.CenterID == centerID:
			// raced in since the query; already assigned here
		default:
			out.Transferable = append(out.Transferable, TransferableTechnician{
				Technician:        t,
				CurrentCenterID:   *t.CenterID,
				CurrentCenterName: names[*t.CenterID],
			})
		}
	}
	sort.SliceStable(out.Free, func(i, j int) bool { return lessID(out.Free[i].ID, out.Free[j].ID) })
	sort.SliceStable(out.Transferable, func(i, j int) bool {
		return lessID(out.Transferable[i].Technician.ID, out.Transferable[j].Technician.ID)
	})
	return out, nil
}

// CenterTechnicians returns the roster of a center.
func (e *Engine) CenterTechnicians(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error) {
	if _, err := e.store.Center(ctx, centerID); err != nil {
		return nil, e.lookupErr("center", centerID, err)
	}
	return e.store.TechniciansAt(ctx, centerID)
}

// DeleteCenter removes a center that no technician references. Otherwise it
// returns a *DependentsError carrying the number of technicians to move.
func (e *Engine) DeleteCenter(ctx context.Context, centerID primitive.ObjectID) error {
	var name string
	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		c, err := e.store.Center(ctx, centerID)
		if err != nil {
			return e.lookupErr("center", centerID, err)
		}
		name = c.Name
		n, err := e.store.CountTechniciansAt(ctx, centerID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &DependentsError{Entity: "technicians", Count: n}
		}
		if err := e.store.DeleteCenter(ctx, centerID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFound("center", centerID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info("center deleted", zap.String("center_id", centerID.Hex()))
	e.record(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventCenterDeleted,
		EntityType: "center",
		EntityID:   &centerID,
		Details:    map[string]string{"name": name},
	})
	return nil
}

// DeleteTechnician removes an unassigned technician. An assigned technician
// must be unassigned first (ErrConflict).
func (e *Engine) DeleteTechnician(ctx context.Context, techID primitive.ObjectID) error {
	var name string
	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		tech, err := e.store.Technician(ctx, techID)
		if err != nil {
			return e.lookupErr("technician", techID, err)
		}
		if tech.Assigned() {
			return errors.Join(ErrConflict, errors.New("technician is still assigned to a center"))
		}
		name = tech.FullName
		return e.store.DeleteTechnician(ctx, techID)
	})
	if err != nil {
		return err
	}
	e.record(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventTechnicianDeleted,
		EntityType: "technician",
		EntityID:   &techID,
		Details:    map[string]string{"name": name},
	})
	return nil
}

/* -------------------------------------------------------------------------- */
/* Products ↔ staff                                                            */
/* -------------------------------------------------------------------------- */

// AssignProduct overwrites the product's assignee. A nil staffID unassigns
// and always succeeds for an existing product. There is no confirmation
// step: a previous assignee is silently replaced.
func (e *Engine) AssignProduct(ctx context.Context, productID primitive.ObjectID, staffID *primitive.ObjectID) (models.Product, error) {
	var (
		out  models.Product
		prev *primitive.ObjectID
	)
	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		p, err := e.store.Product(ctx, productID)
		if err != nil {
			return e.lookupErr("product", productID, err)
		}
		prev = p.StaffID
		if staffID != nil {
			if _, err := e.store.Staff(ctx, *staffID); err != nil {
				return e.lookupErr("staff member", *staffID, err)
			}
		}
		out, err = e.store.SetProductStaff(ctx, productID, staffID)
		return err
	})
	if err != nil {
		return models.Product{}, err
	}

	ev := audit.Event{
		Category:   audit.CategoryAssignment,
		EntityType: "product",
		EntityID:   &productID,
		Details:    map[string]string{},
	}
	if prev != nil {
		ev.Details["previous_staff_id"] = prev.Hex()
	}
	if staffID != nil {
		ev.EventType = audit.EventProductAssigned
		ev.Details["staff_id"] = staffID.Hex()
		e.log.Info("product assigned",
			zap.String("product_id", productID.Hex()),
			zap.String("staff_id", staffID.Hex()))
	} else {
		ev.EventType = audit.EventProductUnassigned
		e.log.Info("product unassigned", zap.String("product_id", productID.Hex()))
	}
	e.record(ctx, ev)
	return out, nil
}

// StaffProducts lists the products a staff member is responsible for.
func (e *Engine) StaffProducts(ctx context.Context, staffID primitive.ObjectID) ([]models.Product, error) {
	if _, err := e.store.Staff(ctx, staffID); err != nil {
		return nil, e.lookupErr("staff member", staffID, err)
	}
	return e.store.ProductsOf(ctx, staffID)
}

// DeleteStaff removes a staff member with no assigned products. Otherwise
// it returns a *DependentsError with the product count.
func (e *Engine) DeleteStaff(ctx context.Context, staffID primitive.ObjectID) error {
	var username string
	err := e.store.Atomically(ctx, func(ctx context.Context) error {
		s, err := e.store.Staff(ctx, staffID)
		if err != nil {
			return e.lookupErr("staff member", staffID, err)
		}
		username = s.Username
		n, err := e.store.CountProductsOf(ctx, staffID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &DependentsError{Entity: "products", Count: n}
		}
		return e.store.DeleteStaff(ctx, staffID)
	})
	if err != nil {
		return err
	}
	e.record(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventStaffDeleted,
		EntityType: "staff",
		EntityID:   &staffID,
		Details:    map[string]string{"username": username},
	})
	return nil
}

/* -------------------------------------------------------------------------- */
/* helpers                                                                     */
/* -------------------------------------------------------------------------- */

func (e *Engine) lookupErr(entity string, id primitive.ObjectID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

func (e *Engine) centerName(ctx context.Context, id primitive.ObjectID) (string, error) {
	c, err := e.store.Center(ctx, id)
	if errors.Is(err, ErrNotFound) {
		// Dangling reference; report the ID rather than failing the request.
		return id.Hex(), nil
	}
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func staleErr(tech models.Technician, expected int64) error {
	return errors.Join(ErrConflict, errors.New("technician changed since it was loaded (version "+
		strconv.FormatInt(expected, 10)+", now "+strconv.FormatInt(tech.Version, 10)+")"))
}

func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
