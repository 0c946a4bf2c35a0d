package bearer

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoLookup finds {token: <token>} in the configured collection and
// extracts its role field.
type mongoLookup struct {
	db         *mongo.Database
	collection string
}

func (l *mongoLookup) Lookup(ctx context.Context, token string) (string, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	err := l.db.Collection(l.collection).FindOne(ctx, bson.M{"token": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.Role, nil
}
