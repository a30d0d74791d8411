package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Products, Categories, CartLines and Users on one database.
type Mongo struct {
	products   *mongo.Collection
	categories *mongo.Collection
	cartLines  *mongo.Collection
	users      *mongo.Collection
	counters   *mongo.Collection
}

var (
	_ Products   = (*Mongo)(nil)
	_ Categories = (*Mongo)(nil)
	_ CartLines  = (*Mongo)(nil)
	_ Users      = (*Mongo)(nil)
)

// NewMongo binds the store to the named database
func NewMongo(client *mongo.Client, database string) *Mongo {
	db := client.Database(database)
	return &Mongo{
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
		cartLines:  db.Collection("cart_items"),
		users:      db.Collection("users"),
		counters:   db.Collection("counters"),
	}
}

// EnsureIndexes creates the indexes the store relies on. The unique
// (user_id, product_id) index is what keeps concurrent adds from producing
// two lines for the same pair.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.cartLines, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_product_unique"),
		}},
		{m.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		}},
		{m.categories, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("name_unique"),
		}},
		{m.products, mongo.IndexModel{
			Keys:    bson.D{{Key: "category_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("category_created"),
		}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// nextID hands out sequential integer ids per collection
func (m *Mongo) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
