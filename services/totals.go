package services

import (
	"math"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/shopspring/decimal"
)

// TotalItemCount sums line quantities.
func TotalItemCount(lines []models.CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums effective price times quantity. Lines without a product
// snapshot, or with a non-finite price, contribute nothing.
func TotalPrice(lines []models.CartLine) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(lineAmount(l.Product, l.Quantity))
	}
	f, _ := total.Float64()
	return f
}

func lineAmount(p *models.Product, quantity int) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	price := p.EffectivePrice()
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}
