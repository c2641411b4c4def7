package model

import (
	"time"

	"github.com/google/uuid"
)

// BlockedSlot is a range on one dentist's calendar during which no
// appointment may be placed. Blocks never transition state; they are
// created and deleted explicitly.
type BlockedSlot struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	DentistID uuid.UUID `db:"dentist_id" json:"dentist_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
}

type CreateBlockedSlotRequest struct {
	ClinicID  uuid.UUID `json:"clinic_id" binding:"required"`
	DentistID uuid.UUID `json:"dentist_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Reason    *string   `json:"reason" binding:"omitempty,max=500"`
}
