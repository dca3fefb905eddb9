package domain

const vaultSeedPrefix = "vault"

// Vault is the custody slot of an escrow deposit. Funds are held as the
// ledger balance of (Address, Asset) and can be debited only through the
// VaultAuthority of the owning escrow.
type Vault struct {
	// Address is the program address of the vault.
	Address Pubkey
	// Escrow is the address of the owning escrow.
	Escrow Pubkey
	// Asset is the type of the custodied asset.
	Asset Pubkey
	// Bump is the nonce that makes Address a valid program address.
	Bump uint8
}

// VaultSeeds returns the seeds to derive the address of an escrow vault.
func VaultSeeds(escrow Pubkey) [][]byte {
	return [][]byte{[]byte(vaultSeedPrefix), escrow[:]}
}

// FindVaultAddress returns the address of the vault bound to the given escrow.
func FindVaultAddress(programID, escrow Pubkey) (Pubkey, uint8, error) {
	return FindProgramAddress(VaultSeeds(escrow), programID)
}

// NewVault returns the vault bound to the given escrow.
func NewVault(programID, escrow, asset Pubkey) (*Vault, error) {
	addr, bump, err := FindVaultAddress(programID, escrow)
	if err != nil {
		return nil, err
	}
	return &Vault{
		Address: addr,
		Escrow:  escrow,
		Asset:   asset,
		Bump:    bump,
	}, nil
}

func (v *Vault) IsZero() bool {
	return *v == Vault{}
}

// VaultAuthority is the capability to debit an escrow vault and the escrow
// account itself. It can be issued only by the escrow protocol and stops
// authorizing anything once revoked, that happens when the vault is closed.
// The zero value authorizes nothing.
type VaultAuthority struct {
	escrow  Pubkey
	vault   Pubkey
	issued  bool
	revoked bool
}

func newVaultAuthority(vault *Vault) *VaultAuthority {
	return &VaultAuthority{
		escrow: vault.Escrow,
		vault:  vault.Address,
		issued: true,
	}
}

// Authorizes implements the Signer interface.
func (a *VaultAuthority) Authorizes(owner Pubkey) bool {
	if a == nil || !a.issued || a.revoked {
		return false
	}
	return owner == a.vault || owner == a.escrow
}

func (a *VaultAuthority) revoke() {
	a.revoked = true
}
