package grid

import "math"

type Rect struct {
	X, Y, W, H float64
}

type Size struct {
	W, H float64
}

type Side string

const (
	SideRight  Side = "right"
	SideLeft   Side = "left"
	SideBottom Side = "bottom"
	SideTop    Side = "top"
)

type Placement struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Side Side    `json:"side"`
}

// Place escolhe o lado do gatilho com espaço para o popover, na ordem
// direita, esquerda, abaixo, acima, e prende o resultado às bordas da tela.
func Place(trigger Rect, pop Size, viewport Size, margin float64) Placement {
	var p Placement

	switch {
	case trigger.X+trigger.W+margin+pop.W <= viewport.W:
		p = Placement{X: trigger.X + trigger.W + margin, Y: trigger.Y, Side: SideRight}
	case trigger.X-margin-pop.W >= 0:
		p = Placement{X: trigger.X - margin - pop.W, Y: trigger.Y, Side: SideLeft}
	case trigger.Y+trigger.H+margin+pop.H <= viewport.H:
		p = Placement{X: trigger.X, Y: trigger.Y + trigger.H + margin, Side: SideBottom}
	case trigger.Y-margin-pop.H >= 0:
		p = Placement{X: trigger.X, Y: trigger.Y - margin - pop.H, Side: SideTop}
	default:
		p = Placement{X: trigger.X + trigger.W + margin, Y: trigger.Y, Side: SideRight}
	}

	p.X = clamp(p.X, margin, viewport.W-pop.W-margin)
	p.Y = clamp(p.Y, margin, viewport.H-pop.H-margin)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
