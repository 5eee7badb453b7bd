package inventory

import "github.com/shopspring/decimal"

// AverageCost costo promedio ponderado de lo recibido en una línea de compra.
// Nuevo = ((CantPrevia * CostoPrevio) + (CantRecibida * CostoRecibido)) / (CantPrevia + CantRecibida)
func AverageCost(cantPrevia, costoPrevio, cantRecibida, costoRecibido decimal.Decimal) decimal.Decimal {
	sum := cantPrevia.Add(cantRecibida)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := cantPrevia.Mul(costoPrevio).Add(cantRecibida.Mul(costoRecibido))
	return num.Div(sum).Round(4)
}
