package model

import (
	"fmt"
	"time"
)

// Network identifies where a contract is deployed.
type Network string

const (
	NetworkMainnet   Network = "mainnet"
	NetworkTestnet   Network = "testnet"
	NetworkFuturenet Network = "futurenet"
)

// Valid reports whether the network is one of the known networks.
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkFuturenet:
		return true
	default:
		return false
	}
}

// Contract is a deployed smart contract registered in the registry. Security
// audits reference contracts by ID; the publishing workflow itself lives
// outside this service.
type Contract struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Network     Network   `json:"network"`
}

// Validate ensures the contract has the fields storage requires.
func (c *Contract) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contract missing ID")
	}
	if c.Address == "" {
		return fmt.Errorf("contract missing address")
	}
	if c.Name == "" {
		return fmt.Errorf("contract missing name")
	}
	if !c.Network.Valid() {
		return fmt.Errorf("contract has invalid network %q", c.Network)
	}
	return nil
}

// PaginatedContracts is one page of a contract listing.
type PaginatedContracts struct {
	Items      []Contract `json:"items"`
	Total      int64      `json:"total"`
	Page       int64      `json:"page"`
	PageSize   int64      `json:"page_size"`
	TotalPages int64      `json:"total_pages"`
}

// NewPaginatedContracts computes the page arithmetic for a listing response.
func NewPaginatedContracts(items []Contract, total, page, pageSize int64) PaginatedContracts {
	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginatedContracts{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
