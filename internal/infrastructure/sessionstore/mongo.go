package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoCollection = "client_session"
	mongoSessionID  = "session"
	defaultMongoDB  = "bankclient"
)

type mongoDocument struct {
	ID    string `bson:"_id"`
	Token string `bson:"token"`
	User  string `bson:"user"`
}

// MongoStore keeps the session in one document so each write is atomic.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to uri. The database comes from the URI path,
// defaulting to "bankclient".
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mongo URI: %w", err)
	}
	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		dbName = defaultMongoDB
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(mongoCollection),
	}, nil
}

func (m *MongoStore) Save(ctx context.Context, s Session) (err error) {
	if !s.complete() {
		return ErrIncomplete
	}

	ctx, span := startSpan(ctx, "mongo", "Save")
	defer func() { endSpan(span, err) }()

	doc := mongoDocument{ID: mongoSessionID, Token: s.Token, User: string(s.User)}
	_, err = m.collection.ReplaceOne(ctx, bson.M{"_id": mongoSessionID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (m *MongoStore) Load(ctx context.Context) (sess *Session, err error) {
	ctx, span := startSpan(ctx, "mongo", "Load")
	defer func() {
		if errors.Is(err, ErrNoSession) {
			endSpan(span, nil)
			return
		}
		endSpan(span, err)
	}()

	var doc mongoDocument
	err = m.collection.FindOne(ctx, bson.M{"_id": mongoSessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := Session{Token: doc.Token, User: []byte(doc.User)}
	if !s.complete() {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (m *MongoStore) Clear(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "mongo", "Clear")
	defer func() { endSpan(span, err) }()

	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": mongoSessionID}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
