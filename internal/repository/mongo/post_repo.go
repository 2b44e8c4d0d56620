package mongo

import (
	"context"
	"errors"
	"fmt"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostRepository struct {
	coll     *mongo.Collection
	comments *mongo.Collection
	events   *eventWriter
}

func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	author, err := parseID(p.UserID, "user")
	if err != nil {
		return err
	}
	at := p.CreatedAt
	if at.IsZero() {
		at = now()
	}
	doc := postDoc{
		ID:          primitive.NewObjectID(),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		UserID:      author,
		Tags:        p.Tags,
		Likes:       []primitive.ObjectID{},
		Dislikes:    []primitive.ObjectID{},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if p.CommunityID != nil {
		cid, err := parseID(*p.CommunityID, "community")
		if err != nil {
			return err
		}
		doc.CommunityID = &cid
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "post")
	}
	*p = doc.model()

	fields := map[string]any{"post_id": p.ID, "user_id": p.UserID}
	if p.CommunityID != nil {
		fields["community_id"] = *p.CommunityID
	}
	r.events.append(ctx, model.EventPostCreate, p.ID, fields)
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	oid, err := parseID(id, "post")
	if err != nil {
		return nil, err
	}
	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "post")
	}
	p := doc.model()
	return &p, nil
}

// List pages with a (createdAt, _id) keyset, newest first.
func (r *PostRepository) List(ctx context.Context, f model.PostFilter) ([]model.Post, error) {
	filter := bson.M{}
	if f.CommunityID != "" {
		cid, err := primitive.ObjectIDFromHex(f.CommunityID)
		if err != nil {
			return []model.Post{}, nil
		}
		filter["communityId"] = cid
	}
	if f.UserID != "" {
		uid, err := primitive.ObjectIDFromHex(f.UserID)
		if err != nil {
			return []model.Post{}, nil
		}
		filter["userId"] = uid
	}
	if f.Before != nil {
		before, _ := primitive.ObjectIDFromHex(f.Before.ID)
		filter["$or"] = bson.A{
			bson.M{"createdAt": bson.M{"$lt": f.Before.CreatedAt}},
			bson.M{"createdAt": f.Before.CreatedAt, "_id": bson.M{"$lt": before}},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "posts")
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "posts")
	}
	out := make([]model.Post, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}

// ToggleReaction applies the toggle with guarded single-document updates.
// The un-react update matches only when the user is in the target set; the
// react update matches only when they are not, and moves them out of the
// opposite set in the same write.
func (r *PostRepository) ToggleReaction(ctx context.Context, postID, userID string, kind model.ReactionKind) ([]string, []string, error) {
	pid, err := parseID(postID, "post")
	if err != nil {
		return nil, nil, err
	}
	uid, err := parseID(userID, "user")
	if err != nil {
		return nil, nil, err
	}
	target, opposite := reactionField(kind), reactionField(kind.Opposite())
	after := options.FindOneAndUpdate().SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1, "dislikes": 1})

	for i := 0; i < toggleAttempts; i++ {
		var doc postDoc
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": pid, target: uid},
			bson.M{"$pull": bson.M{target: uid}},
			after).Decode(&doc)
		if err == nil {
			return r.reacted(ctx, postID, userID, model.EventPostUnreact, &doc)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, translate(err, "post")
		}

		err = r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": pid, target: bson.M{"$ne": uid}},
			bson.M{"$push": bson.M{target: uid}, "$pull": bson.M{opposite: uid}},
			after).Decode(&doc)
		if err == nil {
			return r.reacted(ctx, postID, userID, kindEvent(kind), &doc)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, translate(err, "post")
		}

		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": pid})
		if err != nil {
			return nil, nil, translate(err, "post")
		}
		if n == 0 {
			return nil, nil, translate(mongo.ErrNoDocuments, "post")
		}
	}
	return nil, nil, fmt.Errorf("toggle reaction on %s: too much contention", postID)
}

func (r *PostRepository) reacted(ctx context.Context, postID, userID, event string, doc *postDoc) ([]string, []string, error) {
	likes, dislikes := hexes(doc.Likes), hexes(doc.Dislikes)
	r.events.append(ctx, event, postID, map[string]any{
		"post_id":  postID,
		"user_id":  userID,
		"likes":    len(likes),
		"dislikes": len(dislikes),
	})
	return likes, dislikes, nil
}

func reactionField(kind model.ReactionKind) string {
	if kind == model.ReactionLike {
		return "likes"
	}
	return "dislikes"
}

func kindEvent(kind model.ReactionKind) string {
	if kind == model.ReactionLike {
		return model.EventPostLike
	}
	return model.EventPostDislike
}

// Delete removes the post; reactions live in the document and go with it.
// Comments are removed afterwards.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "post")
	if err != nil {
		return err
	}
	var doc postDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return translate(err, "post")
	}
	if _, err := r.comments.DeleteMany(ctx, bson.M{"postId": oid}); err != nil {
		return translate(err, "comments")
	}
	r.events.append(ctx, model.EventPostDelete, id, map[string]any{"post_id": id, "user_id": doc.UserID.Hex()})
	return nil
}
