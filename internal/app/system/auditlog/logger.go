// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/assistcenter/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Modes for Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for catalog CRUD events (centers, technicians, staff, products).
	Admin string
	// Assignment controls logging for assignment events (assign, transfer, unassign, delete guards).
	Assignment string
}

// Writer persists audit events. *audit.Store satisfies it.
type Writer interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via Writer) and structured logs (via zap).
type Logger struct {
	store  Writer
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when no mode writes to
// the database (the CLI runs that way).
func New(store Writer, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

type requestInfo struct {
	ip        string
	userAgent string
	actor     string
}

type ctxKey struct{}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// Middleware stashes the caller's IP, user agent and the X-Actor header in
// the request context so events logged deeper in the call stack (the
// assignment engine has no *http.Request) still carry them.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := requestInfo{
			ip:        getClientIP(r),
			userAgent: r.UserAgent(),
			actor:     r.Header.Get("X-Actor"),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, info)))
	})
}

// WithActor returns a context that attributes events to actor. Used by
// callers outside HTTP, such as the CLI.
func WithActor(ctx context.Context, actor string) context.Context {
	info, _ := ctx.Value(ctxKey{}).(requestInfo)
	info.actor = actor
	return context.WithValue(ctx, ctxKey{}, info)
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.EntityID != nil {
		fields = append(fields, zap.String("entity_type", event.EntityType), zap.String("entity_id", event.EntityID.Hex()))
	}
	if event.CenterID != nil {
		fields = append(fields, zap.String("center_id", event.CenterID.Hex()))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryAssignment:
		setting = l.config.Assignment
	default:
		setting = ModeAll // Default to logging everything for unknown categories
	}

	if setting == ModeOff {
		return
	}

	if info, ok := ctx.Value(ctxKey{}).(requestInfo); ok {
		if event.IP == "" {
			event.IP = info.ip
		}
		if event.UserAgent == "" {
			event.UserAgent = info.userAgent
		}
		if event.Actor == "" {
			event.Actor = info.actor
		}
	}

	if setting == ModeAll || setting == ModeLog || setting == "" {
		l.logToZap(event)
	}

	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Admin Events ---

func (l *Logger) adminEvent(ctx context.Context, eventType, entityType string, id primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   &id,
		Success:    true,
		Details: map[string]string{
			"name": name,
		},
	})
}

// CenterCreated logs when an assistance center is created.
func (l *Logger) CenterCreated(ctx context.Context, centerID primitive.ObjectID, name string) {
	l.adminEvent(ctx, audit.EventCenterCreated, "center", centerID, name)
}

// CenterUpdated logs when an assistance center's details change.
func (l *Logger) CenterUpdated(ctx context.Context, centerID primitive.ObjectID, name string) {
	l.adminEvent(ctx, audit.EventCenterUpdated, "center", centerID, name)
}

// TechnicianCreated logs when a technician is created.
func (l *Logger) TechnicianCreated(ctx context.Context, techID primitive.ObjectID, name string) {
	l.adminEvent(ctx, audit.EventTechnicianCreated, "technician", techID, name)
}

// TechnicianUpdated logs when a technician's details change.
func (l *Logger) TechnicianUpdated(ctx context.Context, techID primitive.ObjectID, name string) {
	l.adminEvent(ctx, audit.EventTechnicianUpdated, "technician", techID, name)
}

// StaffCreated logs when a staff member is created.
func (l *Logger) StaffCreated(ctx context.Context, staffID primitive.ObjectID, username string) {
	l.adminEvent(ctx, audit.EventStaffCreated, "staff", staffID, username)
}

// ProductCreated logs when a product is created.
func (l *Logger) ProductCreated(ctx context.Context, productID primitive.ObjectID, name string) {
	l.adminEvent(ctx, audit.EventProductCreated, "product", productID, name)
}

// ProductDeleted logs when a product is deleted.
func (l *Logger) ProductDeleted(ctx context.Context, productID primitive.ObjectID, name string) {
	l.adminEvent(ctx, audit.EventProductDeleted, "product", productID, name)
}
