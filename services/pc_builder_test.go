package services_test

import (
	"context"
	"testing"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func part(id string, t models.PCPartType, p float64) models.Product {
	return models.Product{
		ID:            id,
		Name:          string(t) + "-" + id,
		Price:         p,
		Category:      models.CategoryPCParts,
		PCPartType:    t,
		StockQuantity: 5,
		IsActive:      true,
	}
}

func TestPartsForStep(t *testing.T) {
	outOfStock := part("gpu-2", models.PartGPU, 500)
	outOfStock.StockQuantity = 0
	phone := part("phone", models.PartGPU, 300)
	phone.Category = models.CategoryMobile

	products := []models.Product{part("gpu-1", models.PartGPU, 400), outOfStock, phone, part("cpu-1", models.PartCPU, 300)}

	got := services.PartsForStep(products, models.PartGPU)
	require.Len(t, got, 1)
	assert.Equal(t, "gpu-1", got[0].ID)
	assert.Empty(t, services.PartsForStep(products, models.PartCase))
}

func TestBuild(t *testing.T) {
	t.Run("Select replaces the part of the same step", func(t *testing.T) {
		b := services.NewBuild()
		require.NoError(t, b.Select(part("cpu-1", models.PartCPU, 300)))
		require.NoError(t, b.Select(part("cpu-2", models.PartCPU, 350)))

		assert.Equal(t, 1, b.CompletedSteps())
		assert.Equal(t, "cpu-2", b.Selected()[0].ID)
		assert.InDelta(t, 350.0, b.TotalPrice(), 1e-9)
	})

	t.Run("Unknown part type is rejected", func(t *testing.T) {
		b := services.NewBuild()
		err := b.Select(models.Product{ID: "x", PCPartType: "fan-hub"})
		assert.ErrorIs(t, err, services.ErrUnknownBuildStep)
	})

	t.Run("Required steps and wizard order", func(t *testing.T) {
		b := services.NewBuild()
		for _, p := range []models.Product{
			part("case", models.PartCase, 90),
			part("psu", models.PartPSU, 110),
			part("ssd", models.PartStorage, 80),
			part("ram", models.PartRAM, 120),
			part("mb", models.PartMotherboard, 200),
		} {
			require.NoError(t, b.Select(p))
		}
		assert.False(t, b.RequiredComplete())

		require.NoError(t, b.Select(part("cpu", models.PartCPU, 300)))
		assert.True(t, b.RequiredComplete())

		q := b.Quote()
		assert.Equal(t, 6, q.CompletedSteps)
		assert.Equal(t, len(services.BuildSteps), q.TotalSteps)
		assert.True(t, q.RequiredComplete)
		assert.InDelta(t, 900.0, q.TotalPrice, 1e-9)
		assert.Equal(t, []string{"cpu", "mb", "ram", "ssd", "psu", "case"}, ids(q.Parts))

		b.Remove(models.PartCPU)
		assert.False(t, b.RequiredComplete())
		b.Reset()
		assert.Equal(t, 0, b.CompletedSteps())
	})
}

func TestAddBuildToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds one of every part", func(t *testing.T) {
		h := newHarness("")
		require.NoError(t, h.svc.Initialize(ctx))
		b := services.NewBuild()
		require.NoError(t, b.Select(part("cpu", models.PartCPU, 300)))
		require.NoError(t, b.Select(part("gpu", models.PartGPU, 500)))

		added, err := services.AddBuildToCart(ctx, h.svc, b)

		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, map[string]int{"cpu": 1, "gpu": 1}, quantities(h.svc.Items()))
		assert.InDelta(t, 800.0, h.svc.TotalPrice(), 1e-9)
	})

	t.Run("Empty build", func(t *testing.T) {
		h := newHarness("")
		require.NoError(t, h.svc.Initialize(ctx))
		_, err := services.AddBuildToCart(ctx, h.svc, services.NewBuild())
		assert.ErrorIs(t, err, services.ErrEmptyBuild)
	})

	t.Run("Stops at the first failure", func(t *testing.T) {
		h := newHarness("")
		require.NoError(t, h.svc.Initialize(ctx))
		h.device.setErr = errStoreDown
		b := services.NewBuild()
		require.NoError(t, b.Select(part("cpu", models.PartCPU, 300)))

		added, err := services.AddBuildToCart(ctx, h.svc, b)
		assert.Equal(t, 0, added)
		assert.True(t, services.IsStoreError(err))
	})
}
