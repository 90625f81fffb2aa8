package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ijake-16/homebar-menu/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrUnavailable means the store was constructed without a usable
	// collection handle. Callers surface it as a server error, never as an
	// empty result set.
	ErrUnavailable = errors.New("drink store unavailable")
	// ErrInvalidID means a client-supplied id is not a 24-hex ObjectID.
	ErrInvalidID = errors.New("invalid drink id")
	// ErrNotFound means a well-formed id matched no document.
	ErrNotFound = errors.New("drink not found")
)

// ListCap bounds how many drinks a single list call returns.
const ListCap = 100

// DrinkStore translates drink operations into MongoDB calls. The internal
// ObjectID never leaves this package; every id crossing the boundary is its
// hex string form.
type DrinkStore struct {
	col *mongo.Collection
}

// NewDrinkStore wraps an already-established collection handle. A nil handle
// is tolerated; every operation then fails with ErrUnavailable.
func NewDrinkStore(col *mongo.Collection) *DrinkStore {
	return &DrinkStore{col: col}
}

// drinkDoc is the persisted shape: the entity fields plus the store-assigned
// identifier.
type drinkDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Drink models.Drink       `bson:",inline"`
}

// ParseID validates the identifier format up front so a malformed id never
// reaches the driver as a query.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// ListAll returns up to ListCap drinks in store-native order.
func (s *DrinkStore) ListAll(ctx context.Context) ([]models.Drink, error) {
	if s.col == nil {
		return nil, ErrUnavailable
	}

	cursor, err := s.col.Find(ctx, bson.M{}, options.Find().SetLimit(ListCap))
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []drinkDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode drinks: %w", err)
	}

	drinks := make([]models.Drink, 0, len(docs))
	for _, doc := range docs {
		d := doc.Drink
		d.ID = doc.ID.Hex()
		drinks = append(drinks, d)
	}
	return drinks, nil
}

// GetByID fetches one drink. Returns ErrInvalidID for a malformed id and
// ErrNotFound when nothing matches.
func (s *DrinkStore) GetByID(ctx context.Context, id string) (*models.Drink, error) {
	if s.col == nil {
		return nil, ErrUnavailable
	}
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var doc drinkDoc
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get drink %s: %w", id, err)
	}

	d := doc.Drink
	d.ID = doc.ID.Hex()
	return &d, nil
}

// Insert stores a new drink and returns the store-assigned id as a hex
// string. The drink's own ID field is ignored; ids are never client-supplied.
func (s *DrinkStore) Insert(ctx context.Context, drink models.Drink) (string, error) {
	if s.col == nil {
		return "", ErrUnavailable
	}

	res, err := s.col.InsertOne(ctx, drinkDoc{Drink: drink})
	if err != nil {
		return "", fmt.Errorf("insert drink: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert drink: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Replace swaps the entire document body for the given id. No upsert: a
// missing id is ErrNotFound rather than a create.
func (s *DrinkStore) Replace(ctx context.Context, id string, drink models.Drink) error {
	if s.col == nil {
		return ErrUnavailable
	}
	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": oid}, drink)
	if err != nil {
		return fmt.Errorf("replace drink %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a drink and reports how many documents matched, letting the
// caller distinguish "deleted" from "not found".
func (s *DrinkStore) Delete(ctx context.Context, id string) (int64, error) {
	if s.col == nil {
		return 0, ErrUnavailable
	}
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete drink %s: %w", id, err)
	}
	return res.DeletedCount, nil
}

// SetImageURL updates only the image_url field after a picture upload.
func (s *DrinkStore) SetImageURL(ctx context.Context, id, url string) error {
	if s.col == nil {
		return ErrUnavailable
	}
	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"image_url": url}})
	if err != nil {
		return fmt.Errorf("set image url for drink %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
