package provision

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// VirtualAccount is the provider-assigned NUBAN-style account that funds a
// wallet. Assigned once at registration and immutable afterwards.
type VirtualAccount struct {
	AccountNumber string
	BankName      string
}

// Request carries the customer details the provider needs to reserve an
// account.
type Request struct {
	Reference string
	Name      string
	Email     string
}

// Provisioner reserves a virtual account with the payment provider. Failure
// is fatal to the registration that triggered it.
type Provisioner interface {
	Provision(ctx context.Context, req Request) (VirtualAccount, error)
}

// StaticProvisioner derives a deterministic account number from the request
// reference. Used in dev mode and tests where no provider is reachable.
type StaticProvisioner struct {
	BankName string
}

// Provision returns a stable ten-digit account number for the reference.
func (p StaticProvisioner) Provision(_ context.Context, req Request) (VirtualAccount, error) {
	if req.Reference == "" {
		return VirtualAccount{}, fmt.Errorf("account reference is required")
	}
	sum := sha256.Sum256([]byte(req.Reference))
	n := binary.BigEndian.Uint64(sum[:8]) % 1_000_000_000
	bank := p.BankName
	if bank == "" {
		bank = "Moniepoint"
	}
	return VirtualAccount{
		AccountNumber: fmt.Sprintf("3%09d", n),
		BankName:      bank,
	}, nil
}
