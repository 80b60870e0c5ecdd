package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates a submitted form failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the operation collides with existing state.
	ErrConflict = errors.New("conflict")
)

// UserSafeMessage maps internal errors to strings safe for page rendering.
// Anything unrecognized collapses to a generic message so internals never
// leak into templates.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Data tidak ditemukan"
	case errors.Is(err, ErrInvalidCredentials):
		return "Email atau password tidak valid"
	case errors.Is(err, ErrForbidden):
		return "Anda tidak memiliki akses untuk aksi ini"
	case errors.Is(err, ErrValidation):
		return "Periksa kembali isian formulir"
	case errors.Is(err, ErrConflict):
		return "Data sudah ada atau sedang diproses"
	case errors.Is(err, ErrIdempotencyConflict):
		return "Permintaan sudah pernah diproses"
	}
	return "Terjadi kesalahan, silakan coba lagi"
}
