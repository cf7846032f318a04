package domain

import "time"

// HarvestState is the durable key-value row backing checkpoint persistence.
// Namespace distinguishes the harvester's own checkpoint from the downstream
// transform's checkpoint; Payload holds the JSON-encoded checkpoint.
type HarvestState struct {
	Namespace string    `gorm:"type:text;primaryKey" json:"namespace"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for HarvestState.
func (HarvestState) TableName() string {
	return "harvest_states"
}
