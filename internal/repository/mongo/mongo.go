package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection       = "users"
	CommunitiesCollection = "communities"
	PostsCollection       = "posts"
	CommentsCollection    = "comments"
	FollowsCollection     = "follows"
	OutboxCollection      = "outbox"
)

// Connect dials the deployment and pings it, retrying a few times while
// the server comes up.
func Connect(ctx context.Context, uri string, attempts int) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			return client, nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			client.Disconnect(context.Background())
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	client.Disconnect(context.Background())
	return nil, fmt.Errorf("ping mongo: %w", err)
}

// EnsureIndexes creates the indexes the repositories rely on. Unique
// indexes back the email, google id, community name and follow edge
// constraints.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		CommunitiesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		FollowsCollection: {
			{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followeeId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "followeeId", Value: 1}}},
		},
		OutboxCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Store bundles the repositories of one database.
type Store struct {
	Users       *UserRepository
	Communities *CommunityRepository
	Posts       *PostRepository
	Comments    *CommentRepository
	Follows     *FollowRepository
	Outbox      *OutboxRepository
}

func NewStore(db *mongo.Database, log *slog.Logger) *Store {
	events := &eventWriter{coll: db.Collection(OutboxCollection), log: log}
	return &Store{
		Users:       &UserRepository{coll: db.Collection(UsersCollection)},
		Communities: &CommunityRepository{coll: db.Collection(CommunitiesCollection), events: events},
		Posts: &PostRepository{
			coll:     db.Collection(PostsCollection),
			comments: db.Collection(CommentsCollection),
			events:   events,
		},
		Comments: &CommentRepository{
			coll:   db.Collection(CommentsCollection),
			posts:  db.Collection(PostsCollection),
			events: events,
		},
		Follows: &FollowRepository{coll: db.Collection(FollowsCollection), events: events},
		Outbox:  &OutboxRepository{coll: db.Collection(OutboxCollection)},
	}
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errs.NotFound(what + " not found")
	case mongo.IsDuplicateKeyError(err):
		return errs.Conflict(what + " already exists")
	}
	return fmt.Errorf("%s: %w", what, err)
}

// parseID converts an id from the API. A malformed id cannot match any
// document, so it is reported as missing.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.NotFound(what + " not found")
	}
	return oid, nil
}

// parseIDs drops malformed ids.
func parseIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func hexes(oids []primitive.ObjectID) []string {
	out := make([]string, len(oids))
	for i, oid := range oids {
		out[i] = oid.Hex()
	}
	return out
}

func containsRegex(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

// now is truncated to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// eventWriter appends outbox events after a write has been applied. The
// write already happened, so a failed append is logged and not returned.
type eventWriter struct {
	coll *mongo.Collection
	log  *slog.Logger
}

func (w *eventWriter) append(ctx context.Context, eventType, key string, fields map[string]any) {
	ev := model.NewOutboxEvent(eventType, key, now(), fields)
	if _, err := w.coll.InsertOne(ctx, toOutboxDoc(ev)); err != nil && w.log != nil {
		w.log.WarnContext(ctx, "outbox append failed", "event", eventType, "key", key, "err", err)
	}
}
