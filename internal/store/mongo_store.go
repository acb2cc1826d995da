package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"plumeai/pkg/domain"
)

// MongoStore implements Store on MongoDB. Drafts live in the "ebook"
// collection with the document id exposed as a hex string.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// draftDoc is the stored shape of a draft.
type draftDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Style     string             `bson:"style"`
	Progress  int                `bson:"progress"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB. The handshake uses a short timeout but
// the server is not required to be up: reachability surfaces per operation
// and via Ping, so a cold database only degrades the service.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	database = strings.TrimSpace(database)
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) drafts() *mongo.Collection {
	return s.db.Collection(DraftCollection)
}

// FindDraftByTitle returns the draft with an exact title match.
func (s *MongoStore) FindDraftByTitle(ctx context.Context, title string) (domain.EbookDraft, bool, error) {
	var doc draftDoc
	err := s.drafts().FindOne(ctx, bson.M{"title": title}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.EbookDraft{}, false, nil
		}
		return domain.EbookDraft{}, false, fmt.Errorf("find draft: %w", err)
	}
	return draftFromDoc(doc), true, nil
}

// InsertDraft stores a new draft and returns the assigned ObjectID hex.
func (s *MongoStore) InsertDraft(ctx context.Context, draft domain.EbookDraft) (string, error) {
	res, err := s.drafts().InsertOne(ctx, draftToDoc(draft))
	if err != nil {
		return "", fmt.Errorf("insert draft: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// UpdateDraft overwrites the stored fields of the draft with the given id.
func (s *MongoStore) UpdateDraft(ctx context.Context, id string, draft domain.EbookDraft) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("parse draft id %q: %w", id, err)
	}
	doc := draftToDoc(draft)
	_, err = s.drafts().UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":      doc.Title,
		"content":    doc.Content,
		"style":      doc.Style,
		"progress":   doc.Progress,
		"updated_at": doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	return nil
}

// ListDrafts returns up to limit drafts ordered by updated_at descending.
func (s *MongoStore) ListDrafts(ctx context.Context, limit int) ([]domain.EbookDraft, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.drafts().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer cur.Close(ctx)

	res := make([]domain.EbookDraft, 0, limit)
	for cur.Next(ctx) {
		var doc draftDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode draft: %w", err)
		}
		res = append(res, draftFromDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return res, nil
}

// CollectionNames lists up to max collection names in the database.
func (s *MongoStore) CollectionNames(ctx context.Context, max int) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if max > 0 && len(names) > max {
		names = names[:max]
	}
	return names, nil
}

// Ping reports whether the MongoDB deployment is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Ping(pingCtx, readpref.Primary())
}

// Close releases the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func draftToDoc(d domain.EbookDraft) draftDoc {
	return draftDoc{
		Title:     d.Title,
		Content:   d.Content,
		Style:     d.Style,
		Progress:  d.Progress,
		UpdatedAt: d.UpdatedAt,
	}
}

func draftFromDoc(doc draftDoc) domain.EbookDraft {
	return domain.EbookDraft{
		ID:        doc.ID.Hex(),
		Title:     doc.Title,
		Content:   doc.Content,
		Style:     doc.Style,
		Progress:  doc.Progress,
		UpdatedAt: doc.UpdatedAt,
	}
}
