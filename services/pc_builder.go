package services

import (
	"context"
	"fmt"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/shopspring/decimal"
)

// BuildStep is one slot of the PC build wizard.
type BuildStep struct {
	Type        models.PCPartType `json:"type"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Required    bool              `json:"required"`
}

// BuildSteps is the wizard order.
var BuildSteps = []BuildStep{
	{Type: models.PartCPU, Label: "Processor (CPU)", Description: "The brain of your PC", Required: true},
	{Type: models.PartMotherboard, Label: "Motherboard", Description: "Connects all components", Required: true},
	{Type: models.PartRAM, Label: "Memory (RAM)", Description: "For multitasking", Required: true},
	{Type: models.PartGPU, Label: "Graphics Card", Description: "For gaming & visuals"},
	{Type: models.PartStorage, Label: "Storage", Description: "SSD or HDD", Required: true},
	{Type: models.PartPSU, Label: "Power Supply", Description: "Powers your system", Required: true},
	{Type: models.PartCase, Label: "Case", Description: "Houses everything", Required: true},
	{Type: models.PartCooling, Label: "Cooling", Description: "Keeps temps low"},
}

func stepFor(t models.PCPartType) (BuildStep, bool) {
	for _, s := range BuildSteps {
		if s.Type == t {
			return s, true
		}
	}
	return BuildStep{}, false
}

// PartsForStep returns the in-stock pc_parts of the step's part type.
func PartsForStep(products []models.Product, step models.PCPartType) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range products {
		if p.Category == models.CategoryPCParts && p.PCPartType == step && p.StockQuantity > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Build is a set of selected parts, at most one per step.
type Build struct {
	parts map[models.PCPartType]models.Product
}

func NewBuild() *Build {
	return &Build{parts: make(map[models.PCPartType]models.Product)}
}

// Select puts part into its step, replacing any earlier choice.
func (b *Build) Select(part models.Product) error {
	if _, ok := stepFor(part.PCPartType); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuildStep, part.PCPartType)
	}
	b.parts[part.PCPartType] = part
	return nil
}

func (b *Build) Remove(step models.PCPartType) {
	delete(b.parts, step)
}

func (b *Build) Reset() {
	b.parts = make(map[models.PCPartType]models.Product)
}

// Selected returns the chosen parts in wizard order.
func (b *Build) Selected() []models.Product {
	out := make([]models.Product, 0, len(b.parts))
	for _, s := range BuildSteps {
		if p, ok := b.parts[s.Type]; ok {
			out = append(out, p)
		}
	}
	return out
}

// TotalPrice sums the effective price of one unit of every selected part.
func (b *Build) TotalPrice() float64 {
	total := decimal.Zero
	for _, p := range b.parts {
		total = total.Add(lineAmount(&p, 1))
	}
	return total.InexactFloat64()
}

func (b *Build) CompletedSteps() int {
	return len(b.parts)
}

// RequiredComplete reports whether every required step has a part.
func (b *Build) RequiredComplete() bool {
	for _, s := range BuildSteps {
		if _, ok := b.parts[s.Type]; s.Required && !ok {
			return false
		}
	}
	return true
}

// BuildQuote summarises a build for the wizard.
type BuildQuote struct {
	Parts            []models.Product `json:"parts"`
	TotalPrice       float64          `json:"total_price"`
	CompletedSteps   int              `json:"completed_steps"`
	TotalSteps       int              `json:"total_steps"`
	RequiredComplete bool             `json:"required_complete"`
}

func (b *Build) Quote() BuildQuote {
	return BuildQuote{
		Parts:            b.Selected(),
		TotalPrice:       b.TotalPrice(),
		CompletedSteps:   b.CompletedSteps(),
		TotalSteps:       len(BuildSteps),
		RequiredComplete: b.RequiredComplete(),
	}
}

// AddBuildToCart adds one unit of every selected part. It stops at the first
// failure and returns how many parts were added.
func AddBuildToCart(ctx context.Context, cart *CartService, b *Build) (int, error) {
	parts := b.Selected()
	if len(parts) == 0 {
		return 0, ErrEmptyBuild
	}
	for i := range parts {
		if err := cart.AddItem(ctx, &parts[i], 1); err != nil {
			return i, err
		}
	}
	return len(parts), nil
}
