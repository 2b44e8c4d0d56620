package mongo

import (
	"context"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OutboxRepository struct {
	coll *mongo.Collection
}

func (r *OutboxRepository) Pending(ctx context.Context, batch, maxRetry int) ([]model.OutboxEvent, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"status": model.OutboxPending},
		bson.M{"status": model.OutboxFailed, "retry": bson.M{"$lt": maxRetry}},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(batch))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "outbox")
	}
	var docs []outboxDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "outbox")
	}
	out := make([]model.OutboxEvent, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"status": model.OutboxSent, "updatedAt": now()}})
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{"status": model.OutboxFailed, "updatedAt": now()},
		"$inc": bson.M{"retry": 1},
	})
}

func (r *OutboxRepository) update(ctx context.Context, id string, update bson.M) error {
	oid, err := parseID(id, "outbox event")
	if err != nil {
		return err
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return translate(err, "outbox")
	}
	return nil
}
