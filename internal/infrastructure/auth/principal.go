package auth

import (
	"github.com/google/uuid"
)

// Principal identifies the caller of an operation. Platform-scoped units of
// work require a principal with SuperAdmin set; tenant-scoped work carries
// the tenant the caller belongs to.
type Principal struct {
	Subject    string
	TenantID   uuid.UUID
	SuperAdmin bool
}

// SystemPrincipal returns the principal used by in-process background jobs
// (e.g. the weekly close scheduler). It is super-admin by construction and
// must never be derived from request input.
func SystemPrincipal(subject string) Principal {
	return Principal{
		Subject:    subject,
		SuperAdmin: true,
	}
}
