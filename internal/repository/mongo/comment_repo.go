package mongo

import (
	"context"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository stores comments in their own collection; a post's
// comments are found by postId.
type CommentRepository struct {
	coll   *mongo.Collection
	posts  *mongo.Collection
	events *eventWriter
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	pid, err := parseID(c.PostID, "post")
	if err != nil {
		return err
	}
	uid, err := parseID(c.UserID, "user")
	if err != nil {
		return err
	}
	n, err := r.posts.CountDocuments(ctx, bson.M{"_id": pid}, options.Count().SetLimit(1))
	if err != nil {
		return translate(err, "post")
	}
	if n == 0 {
		return translate(mongo.ErrNoDocuments, "post")
	}

	at := now()
	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		PostID:    pid,
		UserID:    uid,
		Content:   c.Content,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "comment")
	}
	*c = doc.model()
	r.events.append(ctx, model.EventCommentCreate, c.PostID, map[string]any{
		"comment_id": c.ID,
		"post_id":    c.PostID,
		"user_id":    c.UserID,
	})
	return nil
}

func (r *CommentRepository) ListByPosts(ctx context.Context, postIDs []string) ([]model.Comment, error) {
	oids := parseIDs(postIDs)
	if len(oids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"postId": bson.M{"$in": oids}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(err, "comments")
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "comments")
	}
	out := make([]model.Comment, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}
