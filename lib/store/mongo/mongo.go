// Package mongo implements the interface for MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Kodjaoglanian/blockvent/lib/store"
)

// Database and collection names.
const (
	walletDB      = "wallet"
	identitiesCol = "identities"
	checkpointDB  = "listener"
)

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c *mgo.Client
}

// MongoIdentity implements a store identity to MongoDB.
type MongoIdentity struct {
	Label    string         `bson:"_id"`
	Identity store.Identity `bson:",inline"`
}

// New returns a Mongo client connection to the specified MongoDB database uri.
func New(uri string) (*Mongo, error) {
	// get a client
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}
	// connect client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	err = c.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

// GetIdentity returns the identity saved under label.
func (m *Mongo) GetIdentity(label string) (store.Identity, error) {
	var mi MongoIdentity

	col := m.c.Database(walletDB).Collection(identitiesCol)

	err := col.FindOne(context.Background(), bson.M{"_id": label}).Decode(&mi)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return store.Identity{}, store.ErrIdentityNotFound
	}

	if err != nil {
		return store.Identity{}, fmt.Errorf("could not get identity %s from db: %w", label, err)
	}

	return mi.Identity, nil
}

// PutIdentity saves the identity under label, replacing any previous one.
func (m *Mongo) PutIdentity(label string, id store.Identity) error {
	if !id.Valid() {
		return store.ErrBadIdentity
	}

	col := m.c.Database(walletDB).Collection(identitiesCol)

	_, err := col.ReplaceOne(context.Background(),
		bson.M{"_id": label},
		MongoIdentity{Label: label, Identity: id},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("could not save identity %s in db: %w", label, err)
	}

	return nil
}

// LoadCheckpoint loads from db the checkpoint for the indicated channel.
func (m *Mongo) LoadCheckpoint(channel string) (cp store.Checkpoint, err error) {
	mongoSingleResult := m.c.Database(checkpointDB).Collection(channel).FindOne(context.TODO(), bson.D{})
	if err = mongoSingleResult.Decode(&cp); errors.Is(err, mgo.ErrNoDocuments) {
		err = store.ErrDataNotFound
	}

	return
}

// SaveCheckpoint saves to db the checkpoint for the indicated channel.
func (m *Mongo) SaveCheckpoint(channel string, cp store.Checkpoint) (err error) {
	_, err = m.c.Database(checkpointDB).Collection(channel).UpdateOne(context.Background(),
		bson.D{}, // filter
		bson.D{ // update
			{
				Key: "$set", Value: bson.D{
					{Key: "block", Value: cp.Block},
					{Key: "txId", Value: cp.TxID},
				},
			},
		},
		options.Update().SetUpsert(true))

	return
}

// DeleteCheckpoint deletes from db the checkpoint for the indicated channel.
func (m *Mongo) DeleteCheckpoint(channel string) (err error) {
	_, err = m.c.Database(checkpointDB).Collection(channel).DeleteOne(context.Background(), bson.D{}, options.Delete())

	return
}
