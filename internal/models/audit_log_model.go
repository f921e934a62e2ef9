package models

import "time"

// Audit actions recorded by the services.
const (
	AuditBusinessCreate   = "BUSINESS_CREATE"
	AuditBusinessUpdate   = "BUSINESS_UPDATE"
	AuditBusinessDelete   = "BUSINESS_DELETE"
	AuditAccountDelete    = "ACCOUNT_DELETE"
	AuditSubscriptionSync = "SUBSCRIPTION_SYNC"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId,omitempty" firestore:"userId,omitempty"` // empty for provider-initiated events
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // e.g. "PARTNER", "USER"
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
