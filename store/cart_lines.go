package store

import (
	"context"
	"time"

	"eshop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindLine retrieves a line by id, only if userID owns it
func (m *Mongo) FindLine(ctx context.Context, userID string, lineID int64) (*models.CartLine, error) {
	var line models.CartLine
	err := m.cartLines.FindOne(ctx, bson.M{"_id": lineID, "user_id": userID}).Decode(&line)
	if err != nil {
		return nil, translate(err)
	}
	return &line, nil
}

// FindLineByProduct retrieves the user's line for a product
func (m *Mongo) FindLineByProduct(ctx context.Context, userID string, productID int64) (*models.CartLine, error) {
	var line models.CartLine
	err := m.cartLines.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&line)
	if err != nil {
		return nil, translate(err)
	}
	return &line, nil
}

// ListLines returns the user's lines in the order they were added
func (m *Mongo) ListLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.cartLines.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	lines := []models.CartLine{}
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SumQuantities adds up the quantities of every line the user owns
func (m *Mongo) SumQuantities(ctx context.Context, userID string) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: userID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
	}
	cursor, err := m.cartLines.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var rows []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// InsertLine assigns line.ID and stores it. The unique index turns a racing
// insert for the same pair into ErrDuplicate.
func (m *Mongo) InsertLine(ctx context.Context, line *models.CartLine) error {
	id, err := m.nextID(ctx, "cart_items")
	if err != nil {
		return err
	}
	line.ID = id
	_, err = m.cartLines.InsertOne(ctx, line)
	return translate(err)
}

// SetLineQuantity is a compare-and-set on the stored quantity
func (m *Mongo) SetLineQuantity(ctx context.Context, userID string, lineID int64, from, to int, at time.Time) error {
	result, err := m.cartLines.UpdateOne(ctx,
		bson.M{"_id": lineID, "user_id": userID, "quantity": from},
		bson.M{"$set": bson.M{"quantity": to, "updated_at": at}},
	)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteLine removes a line the user owns
func (m *Mongo) DeleteLine(ctx context.Context, userID string, lineID int64) error {
	result, err := m.cartLines.DeleteOne(ctx, bson.M{"_id": lineID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
