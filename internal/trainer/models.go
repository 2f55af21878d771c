package trainer

import (
	"time"
)

const (
	roleOwner  = "owner"
	roleMember = "member"

	// take counts are clamped to this range at every input boundary
	minTakeCount     = 3
	maxTakeCount     = 10
	defaultTakeCount = 5

	defaultSessionTitle = "Blind listening session"
	maxSessionTitleLen  = 200
)

// Session is one shared blind-listening round: a fixed work and a fixed,
// anonymized take draw, owned by the user who created it.
type Session struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	WorkID            string    `json:"workId"`
	TakeIDs           []string  `json:"takeIds"`
	OwnerID           string    `json:"ownerId"`
	ShuffleGeneration uint64    `json:"shuffleGeneration"`
	CreatedAt         time.Time `json:"createdAt"`
}

// WorkView is the catalog shape exposed to pickers. Take ids are withheld so
// a participant cannot de-anonymize takes from the catalog endpoint.
type WorkView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Composer  string `json:"composer"`
	Label     string `json:"label"`
	TakeCount int    `json:"takeCount"`
}

// clampTakeCount forces a requested take count into the allowed range; zero
// means "not specified" and falls back to the default.
func clampTakeCount(n int) int {
	if n == 0 {
		return defaultTakeCount
	}
	if n < minTakeCount {
		return minTakeCount
	}
	if n > maxTakeCount {
		return maxTakeCount
	}
	return n
}
