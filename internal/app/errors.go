package app

import "fmt"

// Application-level errors. The HTTP layer maps each one to a status code.
var ErrUnauthorized = fmt.Errorf("missing or invalid credentials")
var ErrForbidden = fmt.Errorf("not allowed to access this resource")
var ErrInvalidInput = fmt.Errorf("invalid input")
var ErrTenantNotFound = fmt.Errorf("workshop not found")
var ErrNotificationNotFound = fmt.Errorf("notification not found")
var ErrScanInProgress = fmt.Errorf("a scan of this kind is already running")
