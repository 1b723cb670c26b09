package idhash

import (
	"testing"

	"github.com/mr-tron/base58"

	"auction-advisor/internal/domain"
)

func TestComputeEstimateID(t *testing.T) {
	tests := []struct {
		name string
		req  domain.EstimateRequest
	}{
		{
			name: "form defaults",
			req:  domain.DefaultEstimateRequest(),
		},
		{
			name: "air-cooled turbo",
			req: domain.EstimateRequest{
				Year:     1989,
				Mileage:  82000,
				Submodel: domain.SubmodelTurbo,
				Title:    "1989 Porsche 911 Turbo Coupe G50",
				ZIP:      "90210",
			},
		},
		{
			name: "empty descriptive fields",
			req:  domain.EstimateRequest{Year: 2001, Mileage: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEstimateID(tt.req, domain.DefaultAuctionTiming)

			decoded, err := base58.Decode(got)
			if err != nil {
				t.Fatalf("id %q is not base58: %v", got, err)
			}
			if len(decoded) != EstimateIDLength {
				t.Errorf("decoded length = %d, want %d", len(decoded), EstimateIDLength)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeEstimateID(tt.req, domain.DefaultAuctionTiming)
			if got != got2 {
				t.Errorf("ComputeEstimateID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeEstimateID_DifferentInputs(t *testing.T) {
	req := domain.DefaultEstimateRequest()
	timing := domain.DefaultAuctionTiming
	base := ComputeEstimateID(req, timing)

	// Different mileage should produce different id
	diffMileage := req
	diffMileage.Mileage++
	if base == ComputeEstimateID(diffMileage, timing) {
		t.Error("Different mileage should produce different id")
	}

	// Different submodel should produce different id
	diffSubmodel := req
	diffSubmodel.Submodel = domain.SubmodelGT2RS
	if base == ComputeEstimateID(diffSubmodel, timing) {
		t.Error("Different submodel should produce different id")
	}

	// Different ZIP should produce different id
	diffZIP := req
	diffZIP.ZIP = "10001"
	if base == ComputeEstimateID(diffZIP, timing) {
		t.Error("Different ZIP should produce different id")
	}

	// Different timing should produce different id
	diffTiming := timing
	diffTiming.Month = 6
	if base == ComputeEstimateID(req, diffTiming) {
		t.Error("Different timing should produce different id")
	}
}
