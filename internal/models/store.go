package models

import (
	"time"

	"gorm.io/gorm"
)

// StoreStatus is the approval state of a store.
type StoreStatus string

const (
	StorePending   StoreStatus = "PENDING"
	StoreApproved  StoreStatus = "APPROVED"
	StoreRejected  StoreStatus = "REJECTED"
	StoreSuspended StoreStatus = "SUSPENDED"
)

// validStoreTransitions is the single source of truth for the store approval
// workflow. There is deliberately no PENDING -> SUSPENDED edge.
var validStoreTransitions = map[StoreStatus]map[StoreStatus]bool{
	StorePending:   {StoreApproved: true, StoreRejected: true},
	StoreApproved:  {StoreSuspended: true},
	StoreRejected:  {StoreApproved: true},
	StoreSuspended: {StoreApproved: true},
}

// CanTransitionStore reports whether a store may move from one status to another.
func CanTransitionStore(from, to StoreStatus) bool {
	return validStoreTransitions[from][to]
}

// IsValidStoreStatus reports whether s is a known store status.
func IsValidStoreStatus(s StoreStatus) bool {
	switch s {
	case StorePending, StoreApproved, StoreRejected, StoreSuspended:
		return true
	}
	return false
}

// Store represents an independent seller's store. Its products may be
// purchased, and edited by the owner, only while Status is APPROVED.
type Store struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	OwnerID         string      `json:"owner_id" gorm:"index;type:varchar(36)" validate:"required"`
	Name            string      `json:"name" validate:"required,min=3,max=100"`
	Description     string      `json:"description" validate:"omitempty,max=500"`
	Status          StoreStatus `json:"status" gorm:"type:varchar(20);index"`
	ApprovedAt      *time.Time  `json:"approved_at,omitempty"`
	RejectionReason string      `json:"rejection_reason,omitempty" gorm:"type:varchar(255)"`
	gorm.Model      `json:"-"`
}

// Sellable reports whether the store's products may be purchased.
func (s *Store) Sellable() bool { return s.Status == StoreApproved }

// Editable reports whether the owner may edit the store's products.
func (s *Store) Editable() bool { return s.Status == StoreApproved }
