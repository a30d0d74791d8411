package store

import (
	"context"
	"regexp"
	"strings"

	"eshop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindProduct retrieves a single product by ID
func (m *Mongo) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindProductsByIDs loads the given products in one query. Missing ids are
// simply absent from the result.
func (m *Mongo) FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	found := make(map[int64]*models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := m.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		found[product.ID] = &product
	}
	return found, cursor.Err()
}

// ListProducts returns products matching filter, newest first
func (m *Mongo) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.CategoryID > 0 {
		query["category_id"] = filter.CategoryID
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := m.products.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// InsertProduct assigns p.ID and stores the product
func (m *Mongo) InsertProduct(ctx context.Context, p *models.Product) error {
	id, err := m.nextID(ctx, "products")
	if err != nil {
		return err
	}
	p.ID = id
	_, err = m.products.InsertOne(ctx, p)
	return translate(err)
}

// UpdateProduct overwrites the editable fields of an existing product
func (m *Mongo) UpdateProduct(ctx context.Context, p *models.Product) error {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{
		"$set": bson.M{
			"name":           p.Name,
			"description":    p.Description,
			"price":          p.Price,
			"image_url":      p.ImageURL,
			"stock_quantity": p.StockQuantity,
			"category_id":    p.CategoryID,
		},
	})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product. Cart lines pointing at it are left alone.
func (m *Mongo) DeleteProduct(ctx context.Context, id int64) error {
	result, err := m.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountProductsInCategory is used to refuse deleting a category still in use
func (m *Mongo) CountProductsInCategory(ctx context.Context, categoryID int64) (int64, error) {
	return m.products.CountDocuments(ctx, bson.M{"category_id": categoryID})
}

// FindCategory retrieves a single category by ID
func (m *Mongo) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := m.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// ListCategories returns all categories ordered by name
func (m *Mongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := m.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// InsertCategory assigns c.ID. Names are unique.
func (m *Mongo) InsertCategory(ctx context.Context, c *models.Category) error {
	id, err := m.nextID(ctx, "categories")
	if err != nil {
		return err
	}
	c.ID = id
	_, err = m.categories.InsertOne(ctx, c)
	return translate(err)
}

// DeleteCategory removes a category
func (m *Mongo) DeleteCategory(ctx context.Context, id int64) error {
	result, err := m.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
