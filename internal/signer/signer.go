package signer

// Signer interface for signing repository databases and packages
type Signer interface {
	// SignDetached creates a binary detached signature (pacman .sig files)
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
