package tenant

import "errors"

// ErrTenantNotFound is returned by directories that do not know a tenant.
var ErrTenantNotFound = errors.New("tenant not found")

// Tenant is a supermarket using the panel.
type Tenant struct {
	ID   string
	Name string

	// NotificationToken authenticates the tenant's customer messaging instance.
	// Empty means notifications are disabled for the tenant.
	NotificationToken string
}

// CanNotify reports whether the tenant has a notification channel configured.
func (t Tenant) CanNotify() bool {
	return t.NotificationToken != ""
}
