package domain

// Signer authorizes debits from the accounts it owns.
type Signer interface {
	Authorizes(owner Pubkey) bool
}

// UserSigner is the Signer of a user identity. It authorizes only debits from
// the identity itself, and only if this is a valid public key, so that it can
// never be used to impersonate a program derived address.
type UserSigner Pubkey

func (s UserSigner) Authorizes(owner Pubkey) bool {
	return Pubkey(s) == owner && owner.IsOnCurve()
}
