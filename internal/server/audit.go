package server

import (
	"time"
)

// AuditLogEntry records one API request for the audit trail.
type AuditLogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	Method         string    `json:"method"`
	Path           string    `json:"path"`
	Route          string    `json:"route"`
	StatusCode     int       `json:"status_code"`
	OrganizationID string    `json:"organization_id,omitempty"`
	OrderID        string    `json:"order_id,omitempty"`
	Request        string    `json:"request,omitempty"`
	Response       string    `json:"response,omitempty"`
}
