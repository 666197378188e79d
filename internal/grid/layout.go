package grid

import (
	"sort"
	"time"
)

// Box é um item posicionado dentro de uma coluna. Left e Width são frações
// da largura da coluna, para que itens sobrepostos fiquem lado a lado.
type Box struct {
	Item   Item    `json:"item"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Lane   int     `json:"lane"`
	Lanes  int     `json:"lanes"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// Layout posiciona os itens de uma coluna. Itens totalmente fora da janela
// não são desenhados; os parcialmente fora são recortados.
func (g Geometry) Layout(items []Item) []Box {
	visible := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.End.After(it.Start) {
			continue
		}
		winStart, winEnd := g.DayBounds(it.Start)
		if !it.End.After(winStart) || !it.Start.Before(winEnd) {
			continue
		}
		visible = append(visible, it)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Start.Equal(visible[j].Start) {
			return visible[i].End.After(visible[j].End)
		}
		return visible[i].Start.Before(visible[j].Start)
	})

	boxes := make([]Box, 0, len(visible))

	var (
		cluster    []int
		laneEnds   []time.Time
		clusterEnd time.Time
	)

	flush := func() {
		lanes := len(laneEnds)
		for _, idx := range cluster {
			boxes[idx].Lanes = lanes
			boxes[idx].Width = 1 / float64(lanes)
			boxes[idx].Left = float64(boxes[idx].Lane) / float64(lanes)
		}
		cluster = cluster[:0]
		laneEnds = laneEnds[:0]
	}

	for _, it := range visible {
		if len(cluster) > 0 && !it.Start.Before(clusterEnd) {
			flush()
		}

		lane := -1
		for l, end := range laneEnds {
			if !it.Start.Before(end) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, it.End)
		} else {
			laneEnds[lane] = it.End
		}

		if len(cluster) == 0 || it.End.After(clusterEnd) {
			clusterEnd = it.End
		}

		start, end := g.Clamp(it.Start), g.Clamp(it.End)
		if !sameDay(it.End, it.Start) {
			_, end = g.DayBounds(it.Start)
		}

		boxes = append(boxes, Box{
			Item:   it,
			Top:    g.PixelTop(start),
			Height: g.BoxHeight(start, end),
			Lane:   lane,
		})
		cluster = append(cluster, len(boxes)-1)
	}
	if len(cluster) > 0 {
		flush()
	}

	return boxes
}
