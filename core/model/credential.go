package model

// Origin tags where a credential came from.
type Origin int

const (
	// OriginPersonal is the user's own long-lived token read from identity state.
	OriginPersonal Origin = iota
	// OriginSpecific is a token supplied by the caller for one dispatch.
	OriginSpecific
)

func (o Origin) String() string {
	switch o {
	case OriginPersonal:
		return "personal"
	case OriginSpecific:
		return "specific"
	default:
		return "unknown"
	}
}

// Kind returns the human label used in status messages.
func (o Origin) Kind() string {
	switch o {
	case OriginPersonal:
		return "personal token"
	case OriginSpecific:
		return "specific token"
	default:
		return "token"
	}
}

// Credential is a bearer secret resolved for a single dispatch.
type Credential struct {
	Value  string
	Origin Origin
}

// Masked returns the credential reduced to its last four characters.
// Values of four characters or fewer are masked entirely.
func (c Credential) Masked() string {
	r := []rune(c.Value)
	if len(r) <= 4 {
		return "****"
	}
	return "..." + string(r[len(r)-4:])
}
