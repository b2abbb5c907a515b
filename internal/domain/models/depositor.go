package models

import (
	"math/big"
	"time"
)

// Depositor holds the tokens an address has locked for voting
type Depositor struct {
	Balance    *big.Int  `json:"balance"`
	UnlockTime time.Time `json:"unlockTime"`
}

// IsLocked reports whether withdrawal is still blocked at now
func (d *Depositor) IsLocked(now time.Time) bool {
	return now.Before(d.UnlockTime)
}
