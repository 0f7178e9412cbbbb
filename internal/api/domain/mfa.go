package domain

// MFAEnrollment is returned when TOTP enrollment starts. URL is the
// otpauth:// provisioning URI authenticator apps consume.
type MFAEnrollment struct {
	Secret  string
	URL     string
	Issuer  string
	Account string
}
