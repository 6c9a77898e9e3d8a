package model

// Credential is how an account proves who it is. It is a closed set:
//
//	PasswordCredential  registered with email + password
//	ExternalCredential  created through an external identity provider
//	LinkedCredential    both of the above
//
// A nil Credential means the account has neither and can never log in.
//
// WHY AN INTERFACE AND NOT TWO NULLABLE FIELDS?
// With PasswordHash and ExternalID as loose fields, every caller has to know
// which combinations are legal and remember that an empty hash must never be
// compared. The unexported method seals the set to this package, so a type
// switch over the three variants is exhaustive, and "no password" is a
// missing case rather than an empty string that reaches bcrypt.
//
// The columns stay nullable in the database. Only the repository converts
// between the two shapes (see NewCredential).
type Credential interface {
	credential()
}

type PasswordCredential struct {
	Hash string
}

type ExternalCredential struct {
	ExternalID string
}

type LinkedCredential struct {
	Hash       string
	ExternalID string
}

func (PasswordCredential) credential() {}
func (ExternalCredential) credential() {}
func (LinkedCredential) credential()   {}

// NewCredential builds the variant matching the non-empty inputs.
func NewCredential(hash, externalID string) Credential {
	switch {
	case hash != "" && externalID != "":
		return LinkedCredential{Hash: hash, ExternalID: externalID}
	case hash != "":
		return PasswordCredential{Hash: hash}
	case externalID != "":
		return ExternalCredential{ExternalID: externalID}
	default:
		return nil
	}
}

// PasswordHashOf returns the bcrypt hash if the credential carries one.
func PasswordHashOf(c Credential) (string, bool) {
	switch v := c.(type) {
	case PasswordCredential:
		return v.Hash, v.Hash != ""
	case LinkedCredential:
		return v.Hash, v.Hash != ""
	default:
		return "", false
	}
}

// ExternalIDOf returns the external identity reference if the credential carries one.
func ExternalIDOf(c Credential) (string, bool) {
	switch v := c.(type) {
	case ExternalCredential:
		return v.ExternalID, v.ExternalID != ""
	case LinkedCredential:
		return v.ExternalID, v.ExternalID != ""
	default:
		return "", false
	}
}

// WithExternalID returns c with the external identity reference attached.
func WithExternalID(c Credential, externalID string) Credential {
	hash, _ := PasswordHashOf(c)
	return NewCredential(hash, externalID)
}
