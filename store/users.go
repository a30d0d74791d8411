package store

import (
	"context"

	"eshop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindUserByID retrieves an account by its id
func (m *Mongo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByEmail retrieves an account by its (lower-cased) email
func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// InsertUser assigns u.ID and stores the account
func (m *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID().Hex()
	_, err := m.users.InsertOne(ctx, u)
	return translate(err)
}

// UpdateUserProfile changes the name and phone number of an account
func (m *Mongo) UpdateUserProfile(ctx context.Context, id string, profile Profile) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
			"phone":      profile.Phone,
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
