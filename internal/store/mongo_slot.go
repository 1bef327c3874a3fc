package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type slotDocument struct {
	Name      string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoSlot keeps the snapshot in one document whose _id is the slot name.
type MongoSlot struct {
	coll *mongo.Collection
	name string
	now  func() time.Time
}

func NewMongoSlot(coll *mongo.Collection, name string) *MongoSlot {
	return &MongoSlot{coll: coll, name: name, now: time.Now}
}

func (m *MongoSlot) Load(ctx context.Context) ([]byte, error) {
	var doc slotDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": m.name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", m.name, err)
	}
	return doc.Payload, nil
}

func (m *MongoSlot) Save(ctx context.Context, data []byte) error {
	doc := slotDocument{Name: m.name, Payload: data, UpdatedAt: m.now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": m.name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save slot %q: %w", m.name, err)
	}
	return nil
}
