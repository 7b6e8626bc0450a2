package status

import (
	"github.com/atikulmunna/edlog/internal/model"
)

// HyperjumpCharging reports whether s shows the frame shift drive charging
// for a hyperspace jump to a targeted system.
func HyperjumpCharging(s *model.Status) bool {
	if s == nil {
		return false
	}
	_, hasTarget := s.DestinationSystem()
	return s.Flags&FlagFSDCharging != 0 &&
		s.Flags2&Flag2FSDHyperdriveCharging != 0 &&
		hasTarget
}

// EdgeDetector fires once each time HyperjumpCharging goes from false to
// true. The zero value is ready to use.
type EdgeDetector struct {
	charging bool
}

// Observe feeds one frame. It returns the synthesized event on a rising edge.
func (d *EdgeDetector) Observe(s *model.Status) (*model.HyperjumpCharging, bool) {
	now := HyperjumpCharging(s)
	rising := now && !d.charging
	d.charging = now
	if !rising {
		return nil, false
	}

	sys, _ := s.DestinationSystem()
	ev := &model.HyperjumpCharging{
		Base: model.Base{
			Timestamp: s.Timestamp,
			Type:      model.KindHyperjumpCharging,
			Raw:       s.Raw,
		},
		Status:            s,
		DestinationSystem: sys,
	}
	if s.Destination != nil {
		ev.DestinationName = s.Destination.Name
	}
	return ev, true
}

// Reset forgets the previous state.
func (d *EdgeDetector) Reset() { d.charging = false }
