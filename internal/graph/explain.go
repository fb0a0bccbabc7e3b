package graph

import (
	"fmt"

	"github.com/raphaelgruber/simnet/internal/models"
)

// CommonPoint identifies one heuristic reason two occurrences look alike.
type CommonPoint int

const (
	PointTime   CommonPoint = iota // hours at most maxHourGap apart
	PointWeapon                    // same weapon
	PointDay                       // same weekday
)

// maxHourGap is the largest hour difference still considered "close".
const maxHourGap = 2

// CommonPoints returns which heuristics fire for the pair, in display order.
// The result does not depend on argument order.
func CommonPoints(a, b models.CrimeNode) []CommonPoint {
	var points []CommonPoint

	if a.Hora != nil && b.Hora != nil && abs(*a.Hora-*b.Hora) <= maxHourGap {
		points = append(points, PointTime)
	}
	if a.ArmaUtilizada != "" && a.ArmaUtilizada == b.ArmaUtilizada {
		points = append(points, PointWeapon)
	}
	if a.DiaSemana != nil && b.DiaSemana != nil && *a.DiaSemana == *b.DiaSemana {
		if _, ok := models.WeekdayName(*a.DiaSemana); ok {
			points = append(points, PointDay)
		}
	}

	return points
}

// Explain renders the common points of a and b as display tags, e.g.
// "Hora próxima (20h e 21h)", "Arma: Arma de Fogo", "Dia: Sexta".
func Explain(a, b models.CrimeNode) []string {
	points := CommonPoints(a, b)
	tags := make([]string, 0, len(points))
	for _, p := range points {
		switch p {
		case PointTime:
			tags = append(tags, fmt.Sprintf("Hora próxima (%dh e %dh)", *a.Hora, *b.Hora))
		case PointWeapon:
			tags = append(tags, "Arma: "+a.ArmaUtilizada)
		case PointDay:
			day, _ := models.WeekdayName(*a.DiaSemana)
			tags = append(tags, "Dia: "+day)
		}
	}
	return tags
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
