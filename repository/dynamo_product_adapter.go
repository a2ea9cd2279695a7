package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
)

// maxBatchWrite is DynamoDB's BatchWriteItem limit.
const maxBatchWrite = 25

// DynamoAPI is the part of the DynamoDB client the adapter uses.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoProductAdapter serves the catalog from a DynamoDB table keyed by
// product_id (string).
type DynamoProductAdapter struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductAdapter(client DynamoAPI, table string) *DynamoProductAdapter {
	return &DynamoProductAdapter{client: client, table: table}
}

type ddbProduct struct {
	ProductID          string            `dynamodbav:"product_id"`
	Name               string            `dynamodbav:"name"`
	Description        string            `dynamodbav:"description,omitempty"`
	Price              float64           `dynamodbav:"price"`
	SalePrice          *float64          `dynamodbav:"sale_price,omitempty"`
	Category           string            `dynamodbav:"category"`
	PCPartType         string            `dynamodbav:"pc_part_type,omitempty"`
	Brand              string            `dynamodbav:"brand,omitempty"`
	Model              string            `dynamodbav:"model,omitempty"`
	ImageURL           string            `dynamodbav:"image_url,omitempty"`
	Images             []string          `dynamodbav:"images,omitempty"`
	StockQuantity      int               `dynamodbav:"stock_quantity"`
	LowStockThreshold  *int              `dynamodbav:"low_stock_threshold,omitempty"`
	Specs              map[string]string `dynamodbav:"specs,omitempty"`
	CompatibilityNotes string            `dynamodbav:"compatibility_notes,omitempty"`
	IsFeatured         bool              `dynamodbav:"is_featured"`
	IsActive           bool              `dynamodbav:"is_active"`
	CreatedAt          string            `dynamodbav:"created_at"`
	UpdatedAt          string            `dynamodbav:"updated_at"`
}

func toDDB(p *models.Product) ddbProduct {
	return ddbProduct{
		ProductID:          p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		SalePrice:          p.SalePrice,
		Category:           string(p.Category),
		PCPartType:         string(p.PCPartType),
		Brand:              p.Brand,
		Model:              p.Model,
		ImageURL:           p.ImageURL,
		Images:             p.Images,
		StockQuantity:      p.StockQuantity,
		LowStockThreshold:  p.LowStockThreshold,
		Specs:              p.Specs,
		CompatibilityNotes: p.CompatibilityNotes,
		IsFeatured:         p.IsFeatured,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (dp ddbProduct) toModel() models.Product {
	p := models.Product{
		ID:                 dp.ProductID,
		Name:               dp.Name,
		Description:        dp.Description,
		Price:              dp.Price,
		SalePrice:          dp.SalePrice,
		Category:           models.ProductCategory(dp.Category),
		PCPartType:         models.PCPartType(dp.PCPartType),
		Brand:              dp.Brand,
		Model:              dp.Model,
		ImageURL:           dp.ImageURL,
		Images:             dp.Images,
		StockQuantity:      dp.StockQuantity,
		LowStockThreshold:  dp.LowStockThreshold,
		Specs:              dp.Specs,
		CompatibilityNotes: dp.CompatibilityNotes,
		IsFeatured:         dp.IsFeatured,
		IsActive:           dp.IsActive,
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

// GetByID returns (nil, nil) when the item does not exist.
func (d *DynamoProductAdapter) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"product_id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(out.Item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	p := dp.toModel()
	return &p, nil
}

// List scans the table and applies the filter in memory.
func (d *DynamoProductAdapter) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var products []models.Product
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: &d.table})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		var items []ddbProduct
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal page: %w", err)
		}
		for _, it := range items {
			p := it.toModel()
			if matchesFilter(&p, filter) {
				products = append(products, p)
			}
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	if filter.Limit > 0 && len(products) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

func matchesFilter(p *models.Product, f models.ProductFilter) bool {
	if !f.IncludeInactive && !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.PCPartType != "" && p.PCPartType != f.PCPartType {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	return true
}

func (d *DynamoProductAdapter) Put(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(toDDB(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// PutBatch writes products in chunks of 25. Unprocessed items are retried
// once; anything still unprocessed is reported as an error.
func (d *DynamoProductAdapter) PutBatch(ctx context.Context, products []models.Product) error {
	for start := 0; start < len(products); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(products))

		requests := make([]types.WriteRequest, 0, end-start)
		for i := start; i < end; i++ {
			item, err := attributevalue.MarshalMap(toDDB(&products[i]))
			if err != nil {
				return fmt.Errorf("marshal product %s: %w", products[i].ID, err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		pending := map[string][]types.WriteRequest{d.table: requests}
		for attempt := 0; attempt < 2 && len(pending[d.table]) > 0; attempt++ {
			out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("dynamodb BatchWriteItem failed: %w", err)
			}
			pending = out.UnprocessedItems
		}
		if n := len(pending[d.table]); n > 0 {
			return fmt.Errorf("dynamodb BatchWriteItem left %d items unprocessed", n)
		}
	}
	return nil
}
