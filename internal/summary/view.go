package summary

import "github.com/hemen47/coolgards-front-sub000/internal/domain"

// State of the displayed summary.
//
//	idle -> loading -> displayed
//	loading -> stale (request failed, previous summary kept)
//	any -> loading on every cart or shipment change
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateDisplayed State = "displayed"
	StateStale     State = "stale"
)

func (s State) String() string {
	return string(s)
}

// View is what the cart page renders.
type View struct {
	State        State                `json:"state"`
	Summary      *domain.OrderSummary `json:"summary,omitempty"` // last successfully applied
	Cart         []domain.LineItem    `json:"cart,omitempty"`    // server rendition of the priced cart
	ShipmentPlan string               `json:"shipment_plan"`
	Seq          uint64               `json:"seq"`
	Err          string               `json:"error,omitempty"`
}

// Ready reports whether the summary matches the current cart and shipment
// plan, i.e. whether checkout may proceed.
func (v View) Ready() bool {
	return v.State == StateDisplayed && v.Summary != nil
}

// Stale reports whether a summary is shown that may not match the cart.
func (v View) Stale() bool {
	return v.Summary != nil && v.State != StateDisplayed
}

func (v View) clone() View {
	if v.Summary != nil {
		s := *v.Summary
		v.Summary = &s
	}
	v.Cart = domain.CloneItems(v.Cart)
	return v
}
