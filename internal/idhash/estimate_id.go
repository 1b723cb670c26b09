package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"auction-advisor/internal/domain"
)

// EstimateIDLength is the number of hash bytes encoded into an estimate id.
const EstimateIDLength = 16

// ComputeEstimateID computes a deterministic estimate id.
// Formula: base58(SHA256(year|mileage|submodel|title|zip|month|dow)[:16])
// The same form input with the same timing advice always yields the same id.
func ComputeEstimateID(req domain.EstimateRequest, timing domain.AuctionTiming) string {
	data := fmt.Sprintf("%d|%d|%s|%s|%s|%d|%d",
		req.Year,
		req.Mileage,
		string(req.Submodel),
		req.Title,
		req.ZIP,
		timing.Month,
		timing.DayOfWeek,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:EstimateIDLength])
}
