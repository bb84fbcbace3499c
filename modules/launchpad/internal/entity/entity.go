package entity

import (
	"encoding/json"
	"time"

	"github.com/gaze-network/launchpad/modules/launchpad/sale"
)

type Sale struct {
	ID        string
	Admin     string
	State     sale.State
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event journals a single sale call. Rejected calls are journaled too, with
// Valid false and the rejection in Reason.
type Event struct {
	ID        int64
	SaleID    string
	Action    string
	Caller    string
	Valid     bool
	Reason    string
	Payload   json.RawMessage
	CreatedAt time.Time
}

type Export struct {
	ID        int64
	SaleID    string
	ObjectKey string
	SHA256    string
	Signature string
	PublicKey string
	Rows      int64
	CreatedAt time.Time
}
